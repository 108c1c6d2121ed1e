package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics HTTP 与业务指标，注册在独立 Registry 上，由 /metrics 暴露
// 所有方法对 nil 接收者安全，测试与 CLI 可直接传 nil
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	WeeksGenerated   prometheus.Counter
	PaymentMutations *prometheus.CounterVec
	Reconciliations  prometheus.Counter
	Archives         *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
}

// New 在 reg 上注册全部指标
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "obra_http_requests_total",
			Help: "HTTP 请求总数",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "obra_http_request_duration_seconds",
			Help:    "HTTP 请求耗时",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		WeeksGenerated: f.NewCounter(prometheus.CounterOpts{
			Name: "obra_payroll_weeks_generated_total",
			Help: "生成的工资周总数",
		}),
		PaymentMutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "obra_payroll_payment_mutations_total",
			Help: "工资发放变更次数",
		}, []string{"op"}),
		Reconciliations: f.NewCounter(prometheus.CounterOpts{
			Name: "obra_payroll_reconciliations_total",
			Help: "工资周对账次数",
		}),
		Archives: f.NewCounterVec(prometheus.CounterOpts{
			Name: "obra_historial_archives_total",
			Help: "归档记录数",
		}, []string{"entity", "reason"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "obra_cache_lookups_total",
			Help: "缓存查询结果",
		}, []string{"key", "result"}),
	}
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

func (m *Metrics) AddWeeksGenerated(n int) {
	if m == nil {
		return
	}
	m.WeeksGenerated.Add(float64(n))
}

func (m *Metrics) IncPaymentMutation(op string) {
	if m == nil {
		return
	}
	m.PaymentMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) IncReconciliation() {
	if m == nil {
		return
	}
	m.Reconciliations.Inc()
}

func (m *Metrics) IncArchive(entity, reason string) {
	if m == nil {
		return
	}
	m.Archives.WithLabelValues(entity, reason).Inc()
}

// IncCacheLookup result 取 hit / miss / error
func (m *Metrics) IncCacheLookup(key, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(key, result).Inc()
}
