package asyncga

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"asyncga/internal/model"
	"asyncga/internal/report"
	"asyncga/internal/storage"
)

// RunInfo identifies one evolve run.
type RunInfo struct {
	ID               string
	FitnessMode      FitnessMode
	PopulationLength int
	ChromosomeLength int
	Seed             int64
	Started          time.Time
}

// Observer is notified on the engine's logical thread after seeding, after
// every generation and once the run has drained. A Setup or Generation error
// aborts the run. Population arguments are snapshots owned by the observer.
type Observer[T any] interface {
	Setup(ctx context.Context, info RunInfo, pop Population[T]) error
	Generation(ctx context.Context, rt Runtime, pop Population[T]) error
	Finish(ctx context.Context, rt Runtime, pop Population[T], err error)
}

type (
	// History persists run and generation records.
	History = storage.Store
	// RunRecord is the persisted form of a run.
	RunRecord = model.RunRecord
	// GenerationRecord is the persisted form of one generation.
	GenerationRecord = model.GenerationRecord
)

// OpenHistory creates and initializes a history store. kind is "memory",
// "leveldb" or "sqlite" (the latter only in builds tagged sqlite).
func OpenHistory(ctx context.Context, kind, path string) (History, error) {
	store, err := storage.NewStore(kind, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init %s history: %w", kind, err)
	}
	return store, nil
}

// CloseHistory releases the resources held by store, if any.
func CloseHistory(store History) error {
	return storage.CloseIfSupported(store)
}

// HistoryObserver records every snapshot of a run to a History and, when
// Report is set, prints a one-row summary table per generation.
type HistoryObserver[T any] struct {
	Store  History
	Report io.Writer
	Logger *slog.Logger

	run model.RunRecord
}

func NewHistoryObserver[T any](store History) *HistoryObserver[T] {
	return &HistoryObserver[T]{Store: store}
}

// RunID is the identifier of the run being recorded.
func (o *HistoryObserver[T]) RunID() string {
	return o.run.ID
}

func (o *HistoryObserver[T]) Setup(ctx context.Context, info RunInfo, pop Population[T]) error {
	o.run = model.RunRecord{
		VersionedRecord:  storage.Versioned(),
		ID:               info.ID,
		FitnessMode:      string(info.FitnessMode),
		PopulationLength: info.PopulationLength,
		ChromosomeLength: info.ChromosomeLength,
		Seed:             info.Seed,
		StartedAt:        info.Started,
	}
	if err := o.Store.SaveRun(ctx, o.run); err != nil {
		return fmt.Errorf("save run %s: %w", o.run.ID, err)
	}
	return o.record(ctx, 0, pop)
}

func (o *HistoryObserver[T]) Generation(ctx context.Context, rt Runtime, pop Population[T]) error {
	return o.record(ctx, rt.Iteration(), pop)
}

func (o *HistoryObserver[T]) Finish(ctx context.Context, rt Runtime, pop Population[T], err error) {
	o.run.FinishedAt = time.Now()
	o.run.Generations = rt.Iteration()
	if best, ok := pop.Best(); ok && best.HasFitness() {
		o.run.FinalBest = best.fitness.Mean
	}
	if err != nil {
		o.run.Error = err.Error()
	}
	if saveErr := o.Store.SaveRun(ctx, o.run); saveErr != nil {
		o.logger().Warn("save finished run", "run", o.run.ID, "error", saveErr)
	}
}

func (o *HistoryObserver[T]) record(ctx context.Context, generation int, pop Population[T]) error {
	record := model.GenerationRecord{
		VersionedRecord: storage.Versioned(),
		RunID:           o.run.ID,
		Diagnostics:     Summarize(generation, pop),
		RecordedAt:      time.Now(),
	}
	if best, ok := pop.Best(); ok {
		genes, err := json.Marshal(best.Genes)
		if err != nil {
			return fmt.Errorf("encode best genes: %w", err)
		}
		record.BestID = best.ID()
		record.BestGenes = genes
	}
	if err := o.Store.AppendGeneration(ctx, record); err != nil {
		return fmt.Errorf("append generation %d of run %s: %w", generation, o.run.ID, err)
	}
	if o.Report != nil {
		report.WriteGeneration(o.Report, record.Diagnostics)
	}
	return nil
}

func (o *HistoryObserver[T]) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// WriteRunHistory renders the recorded generations of one run.
func WriteRunHistory(ctx context.Context, w io.Writer, store History, runID string) error {
	run, ok, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}
	records, _, err := store.GetGenerations(ctx, runID)
	if err != nil {
		return err
	}
	report.WriteHistory(w, run, records)
	return nil
}

// WriteRuns renders every recorded run.
func WriteRuns(ctx context.Context, w io.Writer, store History) error {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	report.WriteRuns(w, runs)
	return nil
}
