package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"shiftswap/internal/swap"
)

var swapRequestsDesc = prometheus.NewDesc(
	"shiftswap_swap_requests",
	"Current swap requests held in memory by status",
	[]string{"status"},
	nil,
)

// StoreCollector 每次抓取时从内存集合统计各状态申请数
type StoreCollector struct {
	store *swap.Store
}

// Describe 发送指标描述
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- swapRequestsDesc
}

// Collect 读取集合快照并输出 gauge
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	counts := map[swap.Status]int{
		swap.StatusPending:  0,
		swap.StatusApproved: 0,
		swap.StatusDeclined: 0,
	}
	for _, r := range c.store.Snapshot() {
		counts[r.Status]++
	}
	for status, n := range counts {
		ch <- prometheus.MustNewConstMetric(swapRequestsDesc, prometheus.GaugeValue, float64(n), string(status))
	}
}

// Metrics 应用指标集合，实现 swap.Recorder
type Metrics struct {
	registry  *prometheus.Registry
	decisions *prometheus.CounterVec
	requests  *prometheus.HistogramVec
}

var _ swap.Recorder = (*Metrics)(nil)

// New 创建独立 Registry 并注册全部指标
func New(store *swap.Store) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftswap_swap_decisions_total",
			Help: "Approve/decline attempts by action and outcome",
		}, []string{"action", "outcome"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shiftswap_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
	m.registry.MustRegister(
		m.decisions,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if store != nil {
		m.registry.MustRegister(&StoreCollector{store: store})
	}
	return m
}

// Registry 供 /metrics 暴露
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveDecision 记录一次 approve/decline 结果
func (m *Metrics) ObserveDecision(action swap.Action, err error) {
	m.decisions.WithLabelValues(string(action), swap.ErrorKind(err)).Inc()
}

// Middleware 记录 HTTP 请求耗时（按路由模板聚合）
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
