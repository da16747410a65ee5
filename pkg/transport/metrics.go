package transport

import "github.com/prometheus/client_golang/prometheus"

// 降级原因标签值
const (
	reasonOversize  = "oversize"
	reasonTimeout   = "timeout"
	reasonAbandoned = "abandoned"
	reasonException = "exception"
)

// Metrics 适配器的运行指标
// 可选；为 nil 时所有方法都是空操作。
type Metrics struct {
	requests     *prometheus.CounterVec
	degradations *prometheus.CounterVec
	abandoned    prometheus.Gauge
}

// NewMetrics 创建并注册适配器指标
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "requests_total",
			Help:      "Requests issued, by channel (compact/fallback).",
		}, []string{"channel"}),
		degradations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "degradations_total",
			Help:      "Requests degraded to the fallback channel, by reason.",
		}, []string{"reason"}),
		abandoned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "channel_abandoned",
			Help:      "1 once the compact channel has been permanently abandoned.",
		}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.degradations, m.abandoned} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observeRequest 记录一次请求
func (m *Metrics) observeRequest(channel string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(channel).Inc()
}

// observeDegradation 记录一次降级
func (m *Metrics) observeDegradation(reason string) {
	if m == nil {
		return
	}
	m.degradations.WithLabelValues(reason).Inc()
}

// markAbandoned 标记信道已被放弃
func (m *Metrics) markAbandoned() {
	if m == nil {
		return
	}
	m.abandoned.Set(1)
}
