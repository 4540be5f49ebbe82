// Package telemetry holds the Prometheus metrics and OpenTelemetry tracer
// shared by every engine in the process.
package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const namespace = "asyncga"

var tracer = otel.Tracer("asyncga.engine")

var (
	// Generations counts completed generations.
	Generations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_total",
		Help:      "Generations completed across all engines",
	})

	// Chromosomes counts chromosomes created, by origin (seed, child, mutant).
	Chromosomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chromosomes_created_total",
		Help:      "Chromosomes created, by origin",
	}, []string{"origin"})

	// Samples counts fitness samples incorporated into estimates.
	Samples = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fitness_samples_total",
		Help:      "Fitness samples incorporated into chromosome estimates",
	})

	// TasksCancelled counts fitness tasks that stopped because their
	// chromosome was deactivated before the sample source ended.
	TasksCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fitness_tasks_cancelled_total",
		Help:      "Fitness tasks stopped by deactivation",
	})

	// TasksRunning tracks fitness tasks that have not finished.
	TasksRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fitness_tasks_running",
		Help:      "Fitness tasks currently outstanding",
	})

	// Runs counts finished evolve runs by result (ok, error).
	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Evolve runs finished, by result",
	}, []string{"result"})
)

// StartRun opens the span covering one evolve run.
func StartRun(ctx context.Context, populationLength, chromosomeLength int, mode string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "asyncga.Evolve",
		trace.WithAttributes(
			attribute.Int("asyncga.population_length", populationLength),
			attribute.Int("asyncga.chromosome_length", chromosomeLength),
			attribute.String("asyncga.fitness_mode", mode),
		),
	)
}

// GenerationEvent records a generation on the run span.
func GenerationEvent(span trace.Span, iteration, size int, best float64) {
	span.AddEvent("generation", trace.WithAttributes(
		attribute.Int("asyncga.iteration", iteration),
		attribute.Int("asyncga.population", size),
		attribute.Float64("asyncga.best_mean", best),
	))
}

// RunResult returns the label for Runs.
func RunResult(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
