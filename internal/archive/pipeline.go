package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/tokvault/internal/export"
	"github.com/hitoshi/tokvault/internal/model"
	"github.com/hitoshi/tokvault/internal/worker"
)

// DefaultCheckpointInterval はカーソル保存の既定間隔（処理件数）。
const DefaultCheckpointInterval = 20

// ItemProcessor はバックログ1件の処理インターフェース。
type ItemProcessor interface {
	Process(ctx context.Context, ref export.Reference) model.Outcome
}

// Recorder はパイプラインのメトリクス記録インターフェース。
type Recorder interface {
	RecordOutcome(status model.Status)
	RecordItemDuration(d time.Duration)
}

// Options はパイプライン実行時のパラメータ。
type Options struct {
	// Limit は処理対象の上限件数。0以下は無制限。
	Limit int
	// Cursor は処理を開始するバックログ上の位置。
	Cursor int
	// Concurrency は最大並列数。0以下は既定値を使用する。
	Concurrency int
}

// Summary はパイプライン実行の集計結果。
type Summary struct {
	Stored  int
	Skipped int
	Failed  int
}

// Pipeline はエクスポートのバックログ全体を有界並列で処理する。
type Pipeline struct {
	processor          ItemProcessor
	cursor             *CursorFile
	metrics            Recorder
	logger             *slog.Logger
	checkpointInterval int
}

// NewPipeline はPipelineの新しいインスタンスを生成する。
// checkpointIntervalが0以下の場合はDefaultCheckpointIntervalを使用する。
func NewPipeline(processor ItemProcessor, cursor *CursorFile, metrics Recorder, logger *slog.Logger, checkpointInterval int) *Pipeline {
	if checkpointInterval <= 0 {
		checkpointInterval = DefaultCheckpointInterval
	}
	return &Pipeline{
		processor:          processor,
		cursor:             cursor,
		metrics:            metrics,
		logger:             logger,
		checkpointInterval: checkpointInterval,
	}
}

// Run はバックログをOptionsの範囲で処理し、集計結果を返す。
// checkpointInterval件ごとに到達済みインデックスをカーソルファイルへ保存する。
// カーソル保存の失敗は警告ログに留め、実行を中断しない。
func (pl *Pipeline) Run(ctx context.Context, refs []export.Reference, opts Options) Summary {
	if opts.Limit > 0 && opts.Limit < len(refs) {
		refs = refs[:opts.Limit]
	}

	start := opts.Cursor
	if start < 0 {
		start = 0
	}
	if start >= len(refs) {
		pl.logger.Info("処理対象がありません",
			slog.Int("cursor", start),
			slog.Int("backlog", len(refs)),
		)
		return Summary{}
	}

	count := len(refs) - start
	pool := worker.NewPool(opts.Concurrency, pl.logger)

	pl.logger.Info("アーカイブ処理を開始します",
		slog.Int("backlog", len(refs)),
		slog.Int("cursor", start),
		slog.Int("count", count),
		slog.Int("concurrency", pool.Concurrency()),
	)

	var summary Summary
	pool.Run(ctx, start, count, func(ctx context.Context, index int) model.Outcome {
		began := time.Now()
		outcome := pl.processor.Process(ctx, refs[index])
		pl.metrics.RecordItemDuration(time.Since(began))
		return outcome
	}, func(index int, outcome model.Outcome) {
		pl.metrics.RecordOutcome(outcome.Status)
		pl.logOutcome(index, outcome)

		switch outcome.Status {
		case model.StatusStored:
			summary.Stored++
		case model.StatusSkipped:
			summary.Skipped++
		case model.StatusFailed:
			summary.Failed++
		}

		if index%pl.checkpointInterval == 0 {
			if err := pl.cursor.Write(index); err != nil {
				pl.logger.Warn("カーソルの保存に失敗しました",
					slog.Int("index", index),
					slog.String("error", err.Error()),
				)
			}
		}
	})

	pl.logger.Info("アーカイブ処理が完了しました",
		slog.Int("stored", summary.Stored),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
	)

	return summary
}

// logOutcome は項目1件の結果をログに記録する。
// インデックスは桁揃えして出力し、後から目視で追いやすくする。
func (pl *Pipeline) logOutcome(index int, outcome model.Outcome) {
	position := fmt.Sprintf("%05d", index)

	switch outcome.Status {
	case model.StatusStored:
		pl.logger.Info("動画を保存しました",
			slog.String("index", position),
			slog.String("file", outcome.Detail),
		)
	case model.StatusSkipped:
		pl.logger.Info("動画をスキップしました",
			slog.String("index", position),
			slog.String("reason", outcome.Detail),
		)
	case model.StatusFailed:
		pl.logger.Error("動画の処理に失敗しました",
			slog.String("index", position),
			slog.String("error", outcome.Err.Error()),
		)
	}
}
