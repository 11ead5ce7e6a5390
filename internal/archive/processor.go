// Package archive はエクスポートデータから動画を取得・保存するパイプラインを提供する。
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/hitoshi/tokvault/internal/export"
	"github.com/hitoshi/tokvault/internal/model"
	"github.com/hitoshi/tokvault/internal/repository"
	"github.com/hitoshi/tokvault/internal/resolver"
	"github.com/hitoshi/tokvault/internal/storage"
)

// Resolver は動画リンクをダウンロード可能なURLへ解決するインターフェース。
type Resolver interface {
	Resolve(ctx context.Context, link string) (*resolver.Resolution, error)
}

// URLValidator はダウンロード前のURL検証インターフェース。
// 解決サービスの応答は外部入力であり、内部ネットワークへの到達を防ぐ。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// Processor はエクスポート項目1件を終端状態まで処理する。
type Processor struct {
	videos      repository.VideoRepository
	resolver    Resolver
	store       storage.ObjectStore
	validator   URLValidator
	httpClient  *http.Client
	logger      *slog.Logger
	maxBodySize int64
}

// NewProcessor はProcessorの新しいインスタンスを生成する。
func NewProcessor(
	videos repository.VideoRepository,
	res Resolver,
	store storage.ObjectStore,
	validator URLValidator,
	httpClient *http.Client,
	logger *slog.Logger,
	maxBodySize int64,
) *Processor {
	return &Processor{
		videos:      videos,
		resolver:    res,
		store:       store,
		validator:   validator,
		httpClient:  httpClient,
		logger:      logger,
		maxBodySize: maxBodySize,
	}
}

// Process はエクスポート項目1件を処理し、終端状態を返す。
// 抽出 → 重複ガード → 解決 → 取得・保存 → レコード挿入の順で進み、
// どの段階の失敗もこの項目の結果に閉じる。
func (p *Processor) Process(ctx context.Context, ref export.Reference) model.Outcome {
	id, ok := export.ExtractVideoID(ref.Link)
	if !ok {
		return model.Failed(fmt.Errorf("%w: %s", model.ErrMalformedReference, ref.Link))
	}

	date, err := export.ParseTime(ref.Date)
	if err != nil {
		return model.Failed(fmt.Errorf("動画 %s の日時解析に失敗しました: %w", id, err))
	}

	// 外部サービス呼び出しの前に重複ガードを通す
	exists, err := p.videos.ExistsByID(ctx, id)
	if err != nil {
		return model.Failed(fmt.Errorf("動画 %s の存在確認に失敗しました: %w", id, err))
	}
	if exists {
		return model.Skipped("アーカイブ済み: " + id)
	}

	resolution, err := p.resolver.Resolve(ctx, ref.Link)
	if err != nil {
		if resolver.IsUnavailable(err) {
			return model.Skipped("解決サービスが辞退: " + id)
		}
		return model.Failed(fmt.Errorf("動画 %s の解決に失敗しました: %w", id, err))
	}

	payload, err := p.download(ctx, resolution.URL)
	if err != nil {
		return model.Failed(fmt.Errorf("動画 %s の取得に失敗しました: %w", id, err))
	}

	contentType := mime.TypeByExtension(filepath.Ext(resolution.Filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := p.store.Put(ctx, resolution.Filename, payload, contentType); err != nil {
		return model.Failed(fmt.Errorf("動画 %s の保存に失敗しました: %w", id, err))
	}

	video := &model.Video{
		ID:       id,
		Date:     date,
		FileName: resolution.Filename,
		Liked:    false,
		Saved:    true,
	}
	if err := p.videos.Insert(ctx, video); err != nil {
		return model.Failed(fmt.Errorf("動画 %s のレコード挿入に失敗しました: %w", id, err))
	}

	return model.Stored(resolution.Filename)
}

// download は解決済みURLから動画本体を取得する。
func (p *Processor) download(ctx context.Context, rawURL string) ([]byte, error) {
	if err := p.validator.ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("ダウンロードURLの検証に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ダウンロードに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ダウンロードがHTTPステータス %d で失敗しました", resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("応答の読み込みに失敗しました: %w", err)
	}
	if int64(len(payload)) > p.maxBodySize {
		return nil, fmt.Errorf("応答サイズが上限 %d バイトを超過しました", p.maxBodySize)
	}

	return payload, nil
}
