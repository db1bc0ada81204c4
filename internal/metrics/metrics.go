package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Lookups        *prometheus.CounterVec
	APIErrors      prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
	ToolCalls      *prometheus.CounterVec
	AgentTurns     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Lookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pharmacy_lookups_total",
			Help: "Total number of nearby pharmacy lookups by outcome.",
		}, []string{"outcome"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "maps_provider_api_errors_total",
			Help: "Total number of errors received from the Google Maps API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "maps_provider_request_duration_seconds",
			Help:    "Duration of requests to the Google Maps API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		ToolCalls: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "agent_tool_calls_total",
			Help: "Total number of tool calls requested by the model.",
		}, []string{"tool"}),
		AgentTurns: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "agent_turns_total",
			Help: "Total number of agent turns by status.",
		}, []string{"status"}),
	}
}
