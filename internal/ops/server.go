// Package ops は運用監視用のHTTPエンドポイントを提供する。
// バッチ実行中のみ起動し、ヘルスチェックとメトリクスのスクレイプに応答する。
package ops

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tokvault/internal/metrics"
	"github.com/hitoshi/tokvault/internal/middleware"
)

// Pinger はヘルスチェックの依存先確認インターフェース。
type Pinger interface {
	Ping() error
}

// NewRouter は/healthと/metricsのルーティングを構成したchi.Routerを返す。
func NewRouter(pinger Pinger, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := pinger.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("unhealthy: " + err.Error()))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler(gatherer))

	return r
}

// Start は運用監視サーバーをバックグラウンドで起動する。
// バッチ処理の妨げにならないよう、起動失敗はログに留める。
// 返された*http.ServerはShutdownのために使用できる。
func Start(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("運用監視サーバーを起動します", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("運用監視サーバーが停止しました", slog.String("error", err.Error()))
		}
	}()

	return server
}
