package metrics

import (
	"net/http"

	"loanappl-backend/internal/domain/loanappl"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "loanappl"

// Collector counts rule activity and failed lookups.
//
// Metrics:
//   - loanappl_rule_evaluations_total: rules run, by phase and rule
//   - loanappl_validation_failures_total: failures raised, by field and kind
//   - loanappl_lookup_failures_total: party / loan type lookups that failed, by kind
type Collector struct {
	registry *prometheus.Registry

	ruleEvaluations    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	lookupFailures     *prometheus.CounterVec
}

// New registers the collector on its own registry together with the Go
// runtime and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ruleEvaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rule_evaluations_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"phase", "rule"},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Total number of validation failures raised",
			},
			[]string{"field", "kind"},
		),
		lookupFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookup_failures_total",
				Help:      "Total number of failed reference lookups",
			},
			[]string{"kind"},
		),
	}
	c.registry.MustRegister(
		c.ruleEvaluations,
		c.validationFailures,
		c.lookupFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) RuleEvaluated(phase loanappl.Phase, rule string) {
	c.ruleEvaluations.WithLabelValues(string(phase), rule).Inc()
}

func (c *Collector) FailureRaised(f loanappl.Failure) {
	c.validationFailures.WithLabelValues(f.Field, string(f.Kind)).Inc()
}

func (c *Collector) LookupFailed(kind loanappl.EffectKind) {
	c.lookupFailures.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
