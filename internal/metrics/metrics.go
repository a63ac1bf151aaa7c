// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordStoreWrite(key string)
	RecordStoreFailure(op string)
	RecordRecordCreated(kind string)
	RecordTimerCompleted()
	RecordCapture(outcome string)
	RecordHTTPStatus(statusCode int)
	RecordAPILatency(endpoint string, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	storeWrites    *prometheus.CounterVec
	storeFailures  *prometheus.CounterVec
	recordsCreated *prometheus.CounterVec
	timerCompleted prometheus.Counter
	captures       *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	apiLatency     *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		storeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focusez_store_writes_total",
			Help: "ストアキー別の書き込み数",
		}, []string{"key"}),
		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focusez_store_failures_total",
			Help: "操作別のストア呼び出し失敗数",
		}, []string{"op"}),
		recordsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focusez_records_created_total",
			Help: "種別ごとの作成レコード数",
		}, []string{"kind"}),
		timerCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focusez_timer_completed_total",
			Help: "完了したフォーカスセッションの合計数",
		}),
		captures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focusez_captures_total",
			Help: "ブックマーク取り込みの結果別の合計数",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focusez_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "focusez_api_latency_seconds",
			Help:    "外部REST API呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	reg.MustRegister(
		c.storeWrites,
		c.storeFailures,
		c.recordsCreated,
		c.timerCompleted,
		c.captures,
		c.httpStatus,
		c.apiLatency,
	)

	return c
}

// RecordStoreWrite はストアへの書き込みを記録する。
func (c *Collector) RecordStoreWrite(key string) {
	c.storeWrites.WithLabelValues(key).Inc()
}

// RecordStoreFailure はストア呼び出しの失敗を記録する。
func (c *Collector) RecordStoreFailure(op string) {
	c.storeFailures.WithLabelValues(op).Inc()
}

// RecordRecordCreated はタスクやブックマークの作成を記録する。
func (c *Collector) RecordRecordCreated(kind string) {
	c.recordsCreated.WithLabelValues(kind).Inc()
}

// RecordTimerCompleted はフォーカスセッションの完了を記録する。
func (c *Collector) RecordTimerCompleted() {
	c.timerCompleted.Inc()
}

// RecordCapture はブックマーク取り込みの結果を記録する。
func (c *Collector) RecordCapture(outcome string) {
	c.captures.WithLabelValues(outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordAPILatency は外部API呼び出しのレイテンシを記録する。
func (c *Collector) RecordAPILatency(endpoint string, duration time.Duration) {
	c.apiLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordStoreWrite(string)                {}
func (Nop) RecordStoreFailure(string)              {}
func (Nop) RecordRecordCreated(string)             {}
func (Nop) RecordTimerCompleted()                  {}
func (Nop) RecordCapture(string)                   {}
func (Nop) RecordHTTPStatus(int)                   {}
func (Nop) RecordAPILatency(string, time.Duration) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
