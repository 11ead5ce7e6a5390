// Package comments はアーカイブ済み動画の人気コメントを収集する。
package comments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// browserUserAgent はコメントAPIへ送るUser-Agent。
// コメントAPIは公開エンドポイントだがブラウザ以外のUAを拒否することがある。
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// User はコメント投稿者の情報。
type User struct {
	Nickname string `json:"nickname"`
	UID      string `json:"uid"`
}

// Comment はコメントAPIの応答に含まれるコメント1件。
type Comment struct {
	CID        string `json:"cid"`
	Text       string `json:"text"`
	AwemeID    string `json:"aweme_id"`
	CreateTime int64  `json:"create_time"`
	DiggCount  int    `json:"digg_count"`
	User       User   `json:"user"`
}

// Page はコメントAPIの応答1ページ。
// Cursorがnilまたは0の場合、後続ページは存在しない。
type Page struct {
	Comments []Comment `json:"comments"`
	Cursor   *int      `json:"cursor"`
	Total    *int      `json:"total"`
}

// Client はコメントAPIのHTTPクライアント。
// ページ取得ごとにレートリミッタを通し、連続アクセスを抑制する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter
	endpoint   string
	pageSize   int
}

// NewClient はClientの新しいインスタンスを生成する。
// intervalが0以下の場合はレート制限を行わない。
func NewClient(httpClient *http.Client, logger *slog.Logger, endpoint string, pageSize int, interval time.Duration) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		limiter:    limiter,
		endpoint:   endpoint,
		pageSize:   pageSize,
	}
}

// FetchPage は指定動画のコメントを1ページ取得する。
func (c *Client) FetchPage(ctx context.Context, videoID string, cursor int) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("レート制限の待機が中断されました: %w", err)
	}

	query := url.Values{}
	query.Set("aweme_id", videoID)
	query.Set("cursor", strconv.Itoa(cursor))
	query.Set("count", strconv.Itoa(c.pageSize))
	query.Set("aid", "1988")
	query.Set("app_name", "tiktok_web")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("コメントAPIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("コメントAPIがHTTPステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("コメントAPI応答の読み取りに失敗しました: %w", err)
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("コメントAPI応答のパースに失敗しました: %w", err)
	}

	c.logger.Debug("コメントページを取得しました",
		slog.String("video_id", videoID),
		slog.Int("cursor", cursor),
		slog.Int("count", len(page.Comments)),
	)

	return &page, nil
}
