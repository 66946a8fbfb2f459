package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/cellfate/pkg/domain"
)

// Metrics holds the simulation collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	processFired    *prometheus.CounterVec
	processErrors   *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	evaluations     prometheus.Counter
	geneFlips       prometheus.Counter
	population      prometheus.Gauge
	phenotypes      *prometheus.GaugeVec
	clock           prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		processFired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cellfate_process_fired_total",
				Help: "Total number of scheduled operation executions",
			},
			[]string{"operation"},
		),
		processErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cellfate_process_errors_total",
				Help: "Total number of failed operation executions",
			},
			[]string{"operation"},
		),
		processDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cellfate_process_duration_seconds",
				Help:    "Duration of scheduled operation executions",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"operation"},
		),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cellfate_cell_evaluations_total",
			Help: "Total number of per-cell intracellular evaluations",
		}),
		geneFlips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cellfate_gene_flips_total",
			Help: "Total number of node state changes committed by single-gene updates",
		}),
		population: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cellfate_population_cells",
			Help: "Number of cells evaluated in the last intracellular step",
		}),
		phenotypes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cellfate_phenotype_cells",
				Help: "Number of cells per phenotype after the last intracellular step",
			},
			[]string{"phenotype"},
		),
		clock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cellfate_global_step",
			Help: "Global step of the last executed operation",
		}),
	}
	m.registry.MustRegister(
		m.processFired, m.processErrors, m.processDuration,
		m.evaluations, m.geneFlips, m.population, m.phenotypes, m.clock,
	)
	return m
}

// Registry exposes the private registry, e.g. for tests or a custom exporter.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the collected metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnProcessFired: func(_ context.Context, e *domain.ProcessEvent) {
			op := string(e.Operation)
			m.processFired.WithLabelValues(op).Inc()
			m.processDuration.WithLabelValues(op).Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.processErrors.WithLabelValues(op).Inc()
			}
			m.clock.Set(float64(e.Step))
		},
		OnCellEvaluated: func(_ context.Context, e *domain.CellEvent) {
			m.evaluations.Inc()
			m.geneFlips.Add(float64(e.Flips))
		},
		OnStepComplete: func(_ context.Context, e *domain.StepEvent) {
			m.population.Set(float64(e.Summary.Cells))
			m.phenotypes.Reset()
			for p, n := range e.Summary.Phenotypes {
				m.phenotypes.WithLabelValues(string(p)).Set(float64(n))
			}
		},
	}
}
