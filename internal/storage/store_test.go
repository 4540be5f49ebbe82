package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"asyncga/internal/model"
)

func sampleRun(id string, started time.Time) model.RunRecord {
	return model.RunRecord{
		VersionedRecord:  Versioned(),
		ID:               id,
		FitnessMode:      "square",
		PopulationLength: 10,
		ChromosomeLength: 5,
		Seed:             7,
		StartedAt:        started,
	}
}

func sampleGeneration(runID string, generation int, best float64) model.GenerationRecord {
	return model.GenerationRecord{
		VersionedRecord: Versioned(),
		RunID:           runID,
		Diagnostics: model.GenerationDiagnostics{
			Generation:  generation,
			Population:  10,
			BestFitness: best,
		},
		BestGenes:  json.RawMessage(`[1,2,3]`),
		RecordedAt: time.Unix(1700000000, 0).UTC(),
	}
}

// exerciseStore runs the behaviour every backend shares against an
// initialized store.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	base := time.Unix(1700000000, 0).UTC()
	if err := store.SaveRun(ctx, sampleRun("run-b", base.Add(time.Minute))); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.SaveRun(ctx, sampleRun("run-a", base)); err != nil {
		t.Fatalf("save run: %v", err)
	}

	run, ok, err := store.GetRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if run.FitnessMode != "square" || run.PopulationLength != 10 || !run.StartedAt.Equal(base) {
		t.Fatalf("unexpected run: %+v", run)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing run, got ok=%t err=%v", ok, err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-a" || runs[1].ID != "run-b" {
		t.Fatalf("expected runs ordered by start time, got %+v", runs)
	}

	for gen, best := range []float64{9, 4, 1} {
		if err := store.AppendGeneration(ctx, sampleGeneration("run-a", gen, best)); err != nil {
			t.Fatalf("append generation %d: %v", gen, err)
		}
	}
	if err := store.AppendGeneration(ctx, sampleGeneration("run-b", 0, 3)); err != nil {
		t.Fatalf("append generation: %v", err)
	}

	records, ok, err := store.GetGenerations(ctx, "run-a")
	if err != nil {
		t.Fatalf("get generations: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted generations")
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 generations, got %d", len(records))
	}
	for i, record := range records {
		if record.Diagnostics.Generation != i {
			t.Fatalf("generation %d out of order: %+v", i, record.Diagnostics)
		}
	}
	if records[2].Diagnostics.BestFitness != 1 || string(records[2].BestGenes) != "[1,2,3]" {
		t.Fatalf("unexpected generation payload: %+v", records[2])
	}

	if _, ok, err := store.GetGenerations(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected no generations, got ok=%t err=%v", ok, err)
	}
}
