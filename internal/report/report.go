// Package report renders run history as plain-text tables.
package report

import (
	"fmt"
	"io"

	"asyncga/internal/model"

	"github.com/jedib0t/go-pretty/v6/table"
)

var header = table.Row{"GEN", "SIZE", "ACTIVE", "BEST", "MEAN", "MEDIAN", "WORST", "STDDEV", "MEAN AGE"}

func row(d model.GenerationDiagnostics) table.Row {
	return table.Row{
		d.Generation,
		d.Population,
		d.Active,
		fmt.Sprintf("%.6g", d.BestFitness),
		fmt.Sprintf("%.6g", d.MeanFitness),
		fmt.Sprintf("%.6g", d.MedianFitness),
		fmt.Sprintf("%.6g", d.WorstFitness),
		fmt.Sprintf("%.4g", d.StdDevFitness),
		fmt.Sprintf("%.1f", d.MeanAge),
	}
}

// WriteGeneration renders a single generation summary.
func WriteGeneration(w io.Writer, d model.GenerationDiagnostics) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	t.AppendRow(row(d))
	t.Render()
}

// WriteHistory renders every recorded generation of a run, with the run
// parameters as the title and the final best fitness in the footer.
func WriteHistory(w io.Writer, run model.RunRecord, records []model.GenerationRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Run %s (%s, population %d, chromosome %d)",
		run.ID, run.FitnessMode, run.PopulationLength, run.ChromosomeLength))
	t.AppendHeader(header)
	for _, record := range records {
		t.AppendRow(row(record.Diagnostics))
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"BEST", "", "", fmt.Sprintf("%.6g", run.FinalBest)})
	if run.Error != "" {
		t.AppendFooter(table.Row{"ERROR", run.Error})
	}
	t.Render()
}

// WriteRuns lists recorded runs, one per row.
func WriteRuns(w io.Writer, runs []model.RunRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Runs")
	t.AppendHeader(table.Row{"ID", "MODE", "STARTED", "GENERATIONS", "BEST", "ERROR"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			run.FitnessMode,
			run.StartedAt.Format("2006-01-02T15:04:05"),
			run.Generations,
			fmt.Sprintf("%.6g", run.FinalBest),
			run.Error,
		})
	}
	t.Render()
}
