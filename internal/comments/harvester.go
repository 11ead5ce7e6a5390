package comments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/tokvault/internal/model"
	"github.com/hitoshi/tokvault/internal/repository"
	"github.com/hitoshi/tokvault/internal/worker"
)

const (
	// DefaultMinLikes は保存対象とするコメントのいいね数の下限。
	DefaultMinLikes = 10
	// maxPages は1動画あたりのページ取得回数の上限。
	// 早期打ち切りが効かない動画でも取得が際限なく続かないようにする。
	maxPages = 40
	// unboundedListLimit は上限未指定時に使う実質無制限のLIMIT値。
	unboundedListLimit = 999999
)

// PageFetcher はコメントAPIのページ取得インターフェース。
type PageFetcher interface {
	FetchPage(ctx context.Context, videoID string, cursor int) (*Page, error)
}

// Sanitizer はコメント本文のサニタイズインターフェース。
type Sanitizer interface {
	Sanitize(text string) string
}

// Recorder は収集処理のメトリクス記録インターフェース。
type Recorder interface {
	RecordVideoOutcome(status model.Status)
	RecordPages(n int)
	RecordCommentsInserted(n int)
}

// Options は収集実行時のパラメータ。
type Options struct {
	// Filter は対象動画の絞り込み条件。
	Filter repository.ListFilter
	// Limit は対象動画数の上限。0以下は無制限。
	Limit int
	// Cursor は対象一覧の先頭から読み飛ばす件数。
	Cursor int
	// Concurrency は最大並列数。0以下は既定値を使用する。
	Concurrency int
}

// Summary は収集実行の集計結果。
type Summary struct {
	Harvested int
	Skipped   int
	Failed    int
}

// Harvester はコメント未収集の動画を列挙し、人気コメントを収集・保存する。
type Harvester struct {
	videos    repository.VideoRepository
	comments  repository.CommentRepository
	fetcher   PageFetcher
	sanitizer Sanitizer
	metrics   Recorder
	logger    *slog.Logger
	minLikes  int
}

// NewHarvester はHarvesterの新しいインスタンスを生成する。
// minLikesが0以下の場合はDefaultMinLikesを使用する。
func NewHarvester(
	videos repository.VideoRepository,
	comments repository.CommentRepository,
	fetcher PageFetcher,
	sanitizer Sanitizer,
	metrics Recorder,
	logger *slog.Logger,
	minLikes int,
) *Harvester {
	if minLikes <= 0 {
		minLikes = DefaultMinLikes
	}
	return &Harvester{
		videos:    videos,
		comments:  comments,
		fetcher:   fetcher,
		sanitizer: sanitizer,
		metrics:   metrics,
		logger:    logger,
		minLikes:  minLikes,
	}
}

// Run はコメント未収集の動画を対象範囲分処理し、集計結果を返す。
func (h *Harvester) Run(ctx context.Context, opts Options) (Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = unboundedListLimit
	}

	videos, err := h.videos.ListWithoutComments(ctx, opts.Filter, opts.Cursor, limit)
	if err != nil {
		return Summary{}, fmt.Errorf("対象動画の一覧取得に失敗しました: %w", err)
	}
	if len(videos) == 0 {
		h.logger.Info("コメント未収集の動画がありません",
			slog.String("filter", string(opts.Filter)),
		)
		return Summary{}, nil
	}

	pool := worker.NewPool(opts.Concurrency, h.logger)

	h.logger.Info("コメント収集を開始します",
		slog.Int("videos", len(videos)),
		slog.String("filter", string(opts.Filter)),
		slog.Int("concurrency", pool.Concurrency()),
	)

	var summary Summary
	pool.Run(ctx, 0, len(videos), func(ctx context.Context, index int) model.Outcome {
		return h.processVideo(ctx, videos[index])
	}, func(index int, outcome model.Outcome) {
		h.metrics.RecordVideoOutcome(outcome.Status)

		switch outcome.Status {
		case model.StatusStored:
			summary.Harvested++
			h.logger.Info("コメントを保存しました", slog.String("detail", outcome.Detail))
		case model.StatusSkipped:
			summary.Skipped++
			h.logger.Info("動画をスキップしました", slog.String("reason", outcome.Detail))
		case model.StatusFailed:
			summary.Failed++
			h.logger.Error("コメント収集に失敗しました", slog.String("error", outcome.Err.Error()))
		}
	})

	h.logger.Info("コメント収集が完了しました",
		slog.Int("harvested", summary.Harvested),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
	)

	return summary, nil
}

// processVideo は動画1件のコメントを収集し、終端状態を返す。
func (h *Harvester) processVideo(ctx context.Context, video *model.Video) model.Outcome {
	exists, err := h.comments.ExistsForVideo(ctx, video.ID)
	if err != nil {
		return model.Failed(fmt.Errorf("動画 %s の収集済み確認に失敗しました: %w", video.ID, err))
	}
	if exists {
		return model.Skipped("収集済み: " + video.ID)
	}

	collected, pages, err := h.collect(ctx, video.ID)
	h.metrics.RecordPages(pages)
	if err != nil {
		return model.Failed(fmt.Errorf("動画 %s のページ取得に失敗しました: %w", video.ID, err))
	}

	records := h.transform(video.ID, collected)
	if len(records) == 0 {
		return model.Skipped("対象コメントなし: " + video.ID)
	}

	inserted, err := h.comments.BulkInsert(ctx, records)
	if err != nil {
		return model.Failed(fmt.Errorf("動画 %s のコメント挿入に失敗しました: %w", video.ID, err))
	}
	h.metrics.RecordCommentsInserted(inserted)

	return model.Stored(fmt.Sprintf("%s: %d件", video.ID, inserted))
}

// collect はコメントAPIをページ送りし、人気下限を満たす可能性のある
// コメントを集める。APIはいいね数の降順で返すため、ページ内の最大値が
// 下限を割ったらそのページは集計せず打ち切る。
func (h *Harvester) collect(ctx context.Context, videoID string) ([]Comment, int, error) {
	var collected []Comment
	cursor := 0

	for page := 0; page < maxPages; page++ {
		pg, err := h.fetcher.FetchPage(ctx, videoID, cursor)
		if err != nil {
			return nil, page, err
		}

		if len(pg.Comments) == 0 {
			return collected, page + 1, nil
		}

		maxLikes := 0
		for _, c := range pg.Comments {
			if c.DiggCount > maxLikes {
				maxLikes = c.DiggCount
			}
		}
		if maxLikes < h.minLikes {
			return collected, page + 1, nil
		}

		collected = append(collected, pg.Comments...)

		if pg.Cursor == nil || *pg.Cursor == 0 {
			return collected, page + 1, nil
		}
		cursor = *pg.Cursor
	}

	return collected, maxPages, nil
}

// transform は人気下限を満たすコメントだけを保存用レコードへ変換する。
// 打ち切り判定はページ単位のため、採用済みページにも下限未満の
// コメントが混ざる。ここで個別に振るい落とす。
func (h *Harvester) transform(videoID string, collected []Comment) []*model.Comment {
	records := make([]*model.Comment, 0, len(collected))
	for _, c := range collected {
		if c.DiggCount < h.minLikes {
			continue
		}
		records = append(records, &model.Comment{
			ID:       c.CID,
			Text:     h.sanitizer.Sanitize(c.Text),
			Username: c.User.Nickname,
			Likes:    c.DiggCount,
			Date:     time.Unix(c.CreateTime, 0),
			VideoID:  videoID,
		})
	}
	return records
}
