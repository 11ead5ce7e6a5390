// Package resolver は動画ページURLをダウンロード可能なメディアURLへ変換する
// 外部解決サービスのクライアントを提供する。
package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/tokvault/internal/model"
)

const (
	// redirectHost はエクスポートに現れる既知のリダイレクトホスト。
	redirectHost = "tiktokv.com"
	// canonicalHost は解決サービスへ送る前に書き換える正規ホスト。
	canonicalHost = "tiktok.com"
)

// Resolution は解決サービスの応答を表す。
type Resolution struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Client は解決サービスのHTTPクライアント。
// 1件の動画参照URLに対して同期的にPOSTを1回行う。リトライは行わない。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, endpoint string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
	}
}

// Resolve は動画参照URLを解決し、ダウンロードURLとファイル名を返す。
// 既知のリダイレクトホストは送信前に正規ホストへ書き換える。
// 非2xx応答、またはダウンロードURL欄を欠く応答はErrVideoUnavailableを返す。
// 削除済み・非公開の動画で正常に発生するため、呼び出し元はスキップとして扱う。
func (c *Client) Resolve(ctx context.Context, link string) (*Resolution, error) {
	canonical := strings.Replace(link, redirectHost, canonicalHost, 1)

	reqBody, err := json.Marshal(map[string]string{"url": canonical})
	if err != nil {
		return nil, fmt.Errorf("解決リクエストの構築に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("解決サービスの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("解決サービスが動画を解決できませんでした",
			slog.String("link", link),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: HTTPステータス %d", model.ErrVideoUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("解決サービス応答の読み取りに失敗しました: %w", err)
	}

	var res Resolution
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("解決サービス応答のパースに失敗しました: %w", err)
	}

	if res.URL == "" {
		c.logger.Warn("解決サービス応答にダウンロードURLがありません",
			slog.String("link", link),
		)
		return nil, fmt.Errorf("%w: 応答にダウンロードURLがありません", model.ErrVideoUnavailable)
	}

	return &res, nil
}

// IsUnavailable はエラーが「解決サービスの辞退」（スキップ対象）かを判定する。
func IsUnavailable(err error) bool {
	return errors.Is(err, model.ErrVideoUnavailable)
}
