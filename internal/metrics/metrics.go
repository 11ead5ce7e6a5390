// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/tokvault/internal/model"
)

// MetricsCollector はメトリクス収集のインターフェース。
// アーカイブパイプラインとコメント収集の両方から利用する。
type MetricsCollector interface {
	RecordOutcome(status model.Status)
	RecordItemDuration(duration time.Duration)
	RecordVideoOutcome(status model.Status)
	RecordPages(count int)
	RecordCommentsInserted(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	archiveOutcome   *prometheus.CounterVec
	archiveDuration  prometheus.Histogram
	harvestOutcome   *prometheus.CounterVec
	harvestPages     prometheus.Counter
	commentsInserted prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		archiveOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tokvault_archive_items_total",
			Help: "終端状態別のアーカイブ処理件数",
		}, []string{"status"}),
		archiveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tokvault_archive_item_duration_seconds",
			Help:    "動画1件の処理所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		harvestOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tokvault_harvest_videos_total",
			Help: "終端状態別のコメント収集対象動画数",
		}, []string{"status"}),
		harvestPages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tokvault_harvest_pages_total",
			Help: "取得したコメントページの合計数",
		}),
		commentsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tokvault_comments_inserted_total",
			Help: "保存されたコメントの合計数",
		}),
	}

	reg.MustRegister(
		c.archiveOutcome,
		c.archiveDuration,
		c.harvestOutcome,
		c.harvestPages,
		c.commentsInserted,
	)

	return c
}

// RecordOutcome はアーカイブ項目1件の終端状態を記録する。
func (c *Collector) RecordOutcome(status model.Status) {
	c.archiveOutcome.WithLabelValues(string(status)).Inc()
}

// RecordItemDuration はアーカイブ項目1件の所要時間を記録する。
func (c *Collector) RecordItemDuration(duration time.Duration) {
	c.archiveDuration.Observe(duration.Seconds())
}

// RecordVideoOutcome はコメント収集対象動画1件の終端状態を記録する。
func (c *Collector) RecordVideoOutcome(status model.Status) {
	c.harvestOutcome.WithLabelValues(string(status)).Inc()
}

// RecordPages は取得したコメントページ数を記録する。
func (c *Collector) RecordPages(count int) {
	c.harvestPages.Add(float64(count))
}

// RecordCommentsInserted は保存されたコメント数を記録する。
func (c *Collector) RecordCommentsInserted(count int) {
	c.commentsInserted.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
