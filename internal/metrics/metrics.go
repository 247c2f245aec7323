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
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordPurchaseSuccess()
	RecordPurchaseConflict()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordSessionIssued()
	RecordSessionRevoked()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	purchaseSuccess  prometheus.Counter
	purchaseConflict prometheus.Counter
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
	sessionIssued    prometheus.Counter
	sessionRevoked   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		purchaseSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleamart_purchase_success_total",
			Help: "購入成立の合計数",
		}),
		purchaseConflict: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleamart_purchase_conflict_total",
			Help: "購入競争に敗れたリクエストの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleamart_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleamart_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleamart_session_issued_total",
			Help: "発行されたログインセッションの合計数",
		}),
		sessionRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleamart_session_revoked_total",
			Help: "失効されたログインセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.purchaseSuccess,
		c.purchaseConflict,
		c.httpStatus,
		c.requestLatency,
		c.sessionIssued,
		c.sessionRevoked,
	)

	return c
}

// RecordPurchaseSuccess は購入成立を記録する。
func (c *Collector) RecordPurchaseSuccess() {
	c.purchaseSuccess.Inc()
}

// RecordPurchaseConflict は購入競争の敗北を記録する。
func (c *Collector) RecordPurchaseConflict() {
	c.purchaseConflict.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordSessionIssued はセッション発行を記録する。
func (c *Collector) RecordSessionIssued() {
	c.sessionIssued.Inc()
}

// RecordSessionRevoked はセッション失効を記録する。
func (c *Collector) RecordSessionRevoked() {
	c.sessionRevoked.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
