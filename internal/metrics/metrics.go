// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
	invoiceMutations *prometheus.CounterVec
	loginFailures    prometheus.Counter
	pageCacheHits    prometheus.Counter
	pageCacheMisses  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "billman_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		invoiceMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billman_invoice_mutations_total",
			Help: "請求書の変更操作数（操作種別・結果別）",
		}, []string{"operation", "outcome"}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billman_login_failures_total",
			Help: "ログイン失敗の合計数",
		}),
		pageCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billman_page_cache_hits_total",
			Help: "ページキャッシュヒットの合計数",
		}),
		pageCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billman_page_cache_misses_total",
			Help: "ページキャッシュミスの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.invoiceMutations,
		c.loginFailures,
		c.pageCacheHits,
		c.pageCacheMisses,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordMutation は請求書の変更操作を記録する。
// operationは"create"/"update"/"delete"、outcomeは"success"/"error"。
func (c *Collector) RecordMutation(operation string, outcome string) {
	c.invoiceMutations.WithLabelValues(operation, outcome).Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFailures.Inc()
}

// RecordPageCacheHit はページキャッシュヒットを記録する。
func (c *Collector) RecordPageCacheHit() {
	c.pageCacheHits.Inc()
}

// RecordPageCacheMiss はページキャッシュミスを記録する。
func (c *Collector) RecordPageCacheMiss() {
	c.pageCacheMisses.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
