package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	requestDuration *prometheus.HistogramVec
	loginAttempts   *prometheus.CounterVec
	adminsCreated   prometheus.Counter
	sessionsDenied  prometheus.Counter
	keysGenerated   *prometheus.CounterVec
	usersCreated    prometheus.Counter
	usersDeleted    prometheus.Counter
}

// NewPrometheus registers the application collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "keydesk_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		loginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keydesk_login_attempts_total",
			Help: "Admin login attempts by result",
		}, []string{"result"}),
		adminsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "keydesk_admins_registered_total",
			Help: "Admin accounts registered",
		}),
		sessionsDenied: factory.NewCounter(prometheus.CounterOpts{
			Name: "keydesk_sessions_denied_total",
			Help: "Requests redirected to login by the session gate",
		}),
		keysGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keydesk_api_keys_generated_total",
			Help: "API keys generated by kind (preview or issued)",
		}, []string{"kind"}),
		usersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "keydesk_users_created_total",
			Help: "End users created with a key",
		}),
		usersDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "keydesk_users_deleted_total",
			Help: "End users deleted",
		}),
	}
}

// RegisterPoolStats exposes connection pool gauges computed on scrape.
func RegisterPoolStats(reg prometheus.Registerer, acquired, idle, max func() int32) {
	factory := promauto.With(reg)
	gauge := func(name, help string, fn func() int32) {
		factory.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, func() float64 {
			return float64(fn())
		})
	}

	gauge("keydesk_db_connections_acquired", "Connections currently checked out of the pool", acquired)
	gauge("keydesk_db_connections_idle", "Idle connections in the pool", idle)
	gauge("keydesk_db_connections_max", "Configured pool size", max)
}

func (p *PrometheusRecorder) ObserveRequest(route string, status int, duration time.Duration) {
	p.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) IncLoginAttempt(result string) {
	p.loginAttempts.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) IncAdminRegistered() { p.adminsCreated.Inc() }
func (p *PrometheusRecorder) IncSessionDenied()   { p.sessionsDenied.Inc() }

func (p *PrometheusRecorder) IncKeyGenerated(kind string) {
	p.keysGenerated.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncUserCreated() { p.usersCreated.Inc() }
func (p *PrometheusRecorder) IncUserDeleted() { p.usersDeleted.Inc() }
