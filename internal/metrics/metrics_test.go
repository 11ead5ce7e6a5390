package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tokvault/internal/model"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordOutcome_IncrementsCounterWithLabel は終端状態カウンタがラベル付きで増加することを検証する。
func TestRecordOutcome_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOutcome(model.StatusStored)
	c.RecordOutcome(model.StatusStored)
	c.RecordOutcome(model.StatusFailed)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "tokvault_archive_items_total" {
			found = true
			if len(mf.GetMetric()) != 2 {
				t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
			for _, m := range mf.GetMetric() {
				label := m.GetLabel()[0].GetValue()
				val := m.GetCounter().GetValue()
				switch label {
				case "stored":
					if val != 2 {
						t.Errorf("archive_items_total{status=stored} = %v, want 2", val)
					}
				case "failed":
					if val != 1 {
						t.Errorf("archive_items_total{status=failed} = %v, want 1", val)
					}
				default:
					t.Errorf("unexpected label value: %s", label)
				}
			}
		}
	}
	if !found {
		t.Error("tokvault_archive_items_total metric not found")
	}
}

// TestRecordItemDuration_ObservesHistogram は所要時間のヒストグラムに値が記録されることを検証する。
func TestRecordItemDuration_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordItemDuration(100 * time.Millisecond)
	c.RecordItemDuration(2 * time.Second)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "tokvault_archive_item_duration_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 2 {
				t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
			}
			// 合計は0.1 + 2.0 = 2.1秒
			if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
				t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
			}
		}
	}
	if !found {
		t.Error("tokvault_archive_item_duration_seconds metric not found")
	}
}

// TestRecordCommentsInserted_IncrementsCounter はコメント保存カウンタが増加することを検証する。
func TestRecordCommentsInserted_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCommentsInserted(10)
	c.RecordCommentsInserted(5)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "tokvault_comments_inserted_total" {
			found = true
			val := mf.GetMetric()[0].GetCounter().GetValue()
			if val != 15 {
				t.Errorf("comments_inserted_total = %v, want 15", val)
			}
		}
	}
	if !found {
		t.Error("tokvault_comments_inserted_total metric not found")
	}
}

// TestRecordPages_IncrementsCounter はページ取得カウンタが増加することを検証する。
func TestRecordPages_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPages(4)
	c.RecordPages(1)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "tokvault_harvest_pages_total" {
			found = true
			val := mf.GetMetric()[0].GetCounter().GetValue()
			if val != 5 {
				t.Errorf("harvest_pages_total = %v, want 5", val)
			}
		}
	}
	if !found {
		t.Error("tokvault_harvest_pages_total metric not found")
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	// いくつかのメトリクスを記録
	c.RecordOutcome(model.StatusStored)
	c.RecordItemDuration(500 * time.Millisecond)
	c.RecordVideoOutcome(model.StatusSkipped)
	c.RecordPages(3)
	c.RecordCommentsInserted(7)

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	// Prometheus形式のメトリクスが含まれていることを確認
	expectedMetrics := []string{
		"tokvault_archive_items_total",
		"tokvault_archive_item_duration_seconds",
		"tokvault_harvest_videos_total",
		"tokvault_harvest_pages_total",
		"tokvault_comments_inserted_total",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestCollector_ImplementsMetricsCollectorInterface はCollectorがMetricsCollectorインターフェースを実装することを検証する。
func TestCollector_ImplementsMetricsCollectorInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ MetricsCollector = NewCollector(reg)
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.RecordCommentsInserted(1)
	c2.RecordCommentsInserted(2)

	metrics1, _ := reg1.Gather()
	metrics2, _ := reg2.Gather()

	var val1, val2 float64
	for _, mf := range metrics1 {
		if mf.GetName() == "tokvault_comments_inserted_total" {
			val1 = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	for _, mf := range metrics2 {
		if mf.GetName() == "tokvault_comments_inserted_total" {
			val2 = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}

	if val1 != 1 {
		t.Errorf("reg1 comments_inserted = %v, want 1", val1)
	}
	if val2 != 2 {
		t.Errorf("reg2 comments_inserted = %v, want 2", val2)
	}
}
