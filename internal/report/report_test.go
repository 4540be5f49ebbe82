package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"asyncga/internal/model"
)

func TestWriteHistory(t *testing.T) {
	run := model.RunRecord{
		ID:               "run-1",
		FitnessMode:      "square",
		PopulationLength: 10,
		ChromosomeLength: 5,
		FinalBest:        0.5,
	}
	records := []model.GenerationRecord{
		{Diagnostics: model.GenerationDiagnostics{Generation: 0, Population: 10, BestFitness: 12}},
		{Diagnostics: model.GenerationDiagnostics{Generation: 1, Population: 10, BestFitness: 0.5}},
	}

	var buf bytes.Buffer
	WriteHistory(&buf, run, records)
	out := buf.String()

	for _, want := range []string{"Run run-1 (square, population 10, chromosome 5)", "MEAN AGE", "12", "0.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ERROR") {
		t.Fatalf("unexpected error footer:\n%s", out)
	}
}

func TestWriteRunsShowsErrors(t *testing.T) {
	var buf bytes.Buffer
	WriteRuns(&buf, []model.RunRecord{{
		ID:        "run-2",
		StartedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Error:     "fitness policy failed",
	}})
	out := buf.String()
	if !strings.Contains(out, "2024-01-02T03:04:05") || !strings.Contains(out, "fitness policy failed") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestWriteGeneration(t *testing.T) {
	var buf bytes.Buffer
	WriteGeneration(&buf, model.GenerationDiagnostics{Generation: 3, Population: 8, Active: 8, MeanAge: 4.5})
	if !strings.Contains(buf.String(), "4.5") {
		t.Fatalf("expected mean age in output:\n%s", buf.String())
	}
}
