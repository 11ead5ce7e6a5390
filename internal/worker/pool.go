// Package worker は有界並列処理のワーカープールを提供する。
// アーカイブパイプラインとコメント収集の両方が同じ投入・背圧制御を共有する。
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hitoshi/tokvault/internal/model"
)

// DefaultConcurrency は並列数が未指定の場合の既定値。
const DefaultConcurrency = 5

// Task はバックログ1件分の処理を表す。
// indexはバックログ上の元の位置で、ログとカーソル保存に使用される。
// エラーは返さず、必ず終端状態のOutcomeへ変換して返す。
type Task func(ctx context.Context, index int) model.Outcome

// CompletionHook は1件の完了ごとに呼び出されるフック。
// ワーカーはOSスレッド上で並列実行されるため、フックはプール側で直列化される。
// 完了順は投入順と一致しない。
type CompletionHook func(index int, outcome model.Outcome)

// Pool は完了駆動の有界並列ワーカープール。
// 実行中の件数が上限未満の間はバックログから順に投入し、上限に達したら
// いずれか1件の完了を待って空いた枠をすぐ再利用する（固定サイズの
// バッチ処理ではないため、項目ごとの所要時間がばらついても枠が遊ばない）。
// 項目内の失敗とpanicは結果に変換され、他の項目や実行全体を中断しない。
type Pool struct {
	concurrency int
	logger      *slog.Logger
}

// NewPool はPoolの新しいインスタンスを生成する。
// concurrencyが0以下の場合はDefaultConcurrencyを使用する。
func NewPool(concurrency int, logger *slog.Logger) *Pool {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Pool{
		concurrency: concurrency,
		logger:      logger,
	}
}

// Concurrency は設定された最大並列数を返す。
func (p *Pool) Concurrency() int {
	return p.concurrency
}

// Run はインデックスstartからcount件をタスクに適用し、全件の終端を待つ。
// コンテキストがキャンセルされた場合は新規投入のみを停止し、
// 実行中の項目は終端まで走らせる（途中キャンセルは行わない）。
func (p *Pool) Run(ctx context.Context, start, count int, task Task, onDone CompletionHook) {
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	var hookMu sync.Mutex

	for i := start; i < start+count; i++ {
		if ctx.Err() != nil {
			p.logger.Info("キャンセルにより新規投入を停止します",
				slog.Int("next_index", i),
			)
			break
		}

		wg.Add(1)
		sem <- struct{}{} // semaphore取得（空き枠ができるまでブロック）

		go func(index int) {
			defer wg.Done()
			defer func() { <-sem }() // semaphore解放

			outcome := p.runTask(ctx, index, task)

			if onDone != nil {
				hookMu.Lock()
				onDone(index, outcome)
				hookMu.Unlock()
			}
		}(i)
	}

	wg.Wait()
}

// runTask はタスクを実行し、panicを失敗結果に変換する。
func (p *Pool) runTask(ctx context.Context, index int, task Task) (outcome model.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("タスクがpanicしました",
				slog.Int("index", index),
				slog.Any("panic", r),
			)
			outcome = model.Failed(fmt.Errorf("panic: %v", r))
		}
	}()

	return task(ctx, index)
}
