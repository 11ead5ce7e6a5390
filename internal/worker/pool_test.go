package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hitoshi/tokvault/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestNewPool_DefaultConcurrency(t *testing.T) {
	var buf bytes.Buffer
	p := NewPool(0, newTestLogger(&buf))
	if p.Concurrency() != DefaultConcurrency {
		t.Errorf("Concurrency() = %d, want %d", p.Concurrency(), DefaultConcurrency)
	}
}

func TestPool_Run_ProcessesAllItems(t *testing.T) {
	var buf bytes.Buffer
	p := NewPool(3, newTestLogger(&buf))

	var processed int64
	p.Run(context.Background(), 0, 10, func(ctx context.Context, index int) model.Outcome {
		atomic.AddInt64(&processed, 1)
		return model.Stored("")
	}, nil)

	if processed != 10 {
		t.Errorf("処理件数 = %d, want 10", processed)
	}
}

func TestPool_Run_BoundedConcurrency(t *testing.T) {
	var buf bytes.Buffer
	p := NewPool(3, newTestLogger(&buf))

	var inFlight, highWater int64
	p.Run(context.Background(), 0, 10, func(ctx context.Context, index int) model.Outcome {
		n := atomic.AddInt64(&inFlight, 1)
		// 最大同時実行数を記録する
		for {
			hw := atomic.LoadInt64(&highWater)
			if n <= hw || atomic.CompareAndSwapInt64(&highWater, hw, n) {
				break
			}
		}
		// 項目ごとに所要時間をばらつかせる
		time.Sleep(time.Duration(index%4) * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return model.Stored("")
	}, nil)

	if highWater > 3 {
		t.Errorf("同時実行数の最大値 = %d, 上限3を超えてはならない", highWater)
	}
}

func TestPool_Run_FailureDoesNotAbortSiblings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPool(2, newTestLogger(&buf))

	var outcomes []model.Outcome
	p.Run(context.Background(), 0, 5, func(ctx context.Context, index int) model.Outcome {
		if index == 2 {
			return model.Failed(errors.New("network error"))
		}
		return model.Stored("")
	}, func(index int, outcome model.Outcome) {
		outcomes = append(outcomes, outcome)
	})

	if len(outcomes) != 5 {
		t.Fatalf("完了通知の件数 = %d, want 5（1件の失敗が他を中断してはならない）", len(outcomes))
	}

	var failed int
	for _, o := range outcomes {
		if o.Status == model.StatusFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("失敗件数 = %d, want 1", failed)
	}
}

func TestPool_Run_PanicConvertedToFailure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPool(2, newTestLogger(&buf))

	var mu sync.Mutex
	statuses := make(map[int]model.Status)
	p.Run(context.Background(), 0, 3, func(ctx context.Context, index int) model.Outcome {
		if index == 1 {
			panic("boom")
		}
		return model.Stored("")
	}, func(index int, outcome model.Outcome) {
		mu.Lock()
		statuses[index] = outcome.Status
		mu.Unlock()
	})

	if statuses[1] != model.StatusFailed {
		t.Errorf("panicした項目の状態 = %s, want failed", statuses[1])
	}
	if statuses[0] != model.StatusStored || statuses[2] != model.StatusStored {
		t.Error("panicしていない項目は正常に完了しなければならない")
	}
}

func TestPool_Run_HookReceivesOriginalIndex(t *testing.T) {
	var buf bytes.Buffer
	p := NewPool(4, newTestLogger(&buf))

	seen := make(map[int]bool)
	p.Run(context.Background(), 100, 7, func(ctx context.Context, index int) model.Outcome {
		return model.Stored("")
	}, func(index int, outcome model.Outcome) {
		seen[index] = true
	})

	for i := 100; i < 107; i++ {
		if !seen[i] {
			t.Errorf("インデックス %d の完了通知がない", i)
		}
	}
	if len(seen) != 7 {
		t.Errorf("完了通知の件数 = %d, want 7", len(seen))
	}
}

func TestPool_Run_CancelStopsAdmission(t *testing.T) {
	var buf bytes.Buffer
	p := NewPool(1, newTestLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())

	var processed int64
	p.Run(ctx, 0, 100, func(ctx context.Context, index int) model.Outcome {
		atomic.AddInt64(&processed, 1)
		if index == 2 {
			cancel()
		}
		return model.Stored("")
	}, nil)

	// キャンセル後は新規投入されないため、全件は処理されない
	if processed >= 100 {
		t.Errorf("処理件数 = %d, キャンセル後は投入が停止しなければならない", processed)
	}
	// 投入済みの項目は終端まで実行される
	if processed < 3 {
		t.Errorf("処理件数 = %d, 投入済みの項目は完了しなければならない", processed)
	}
}
