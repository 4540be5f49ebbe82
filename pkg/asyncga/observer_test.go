package asyncga

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistoryObserverRecordsEveryGeneration(t *testing.T) {
	ctx := context.Background()
	store, err := OpenHistory(ctx, "memory", "")
	require.NoError(t, err)

	var out bytes.Buffer
	obs := NewHistoryObserver[float64](store)
	obs.Report = &out

	cfg := sphereConfig(4)
	cfg.Observer = obs
	eng, err := New(cfg)
	require.NoError(t, err)

	final, err := eng.Run(ctx)
	require.NoError(t, err)

	run, ok, err := store.GetRun(ctx, obs.RunID())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, run.Generations)
	require.Equal(t, "square", run.FitnessMode)
	require.False(t, run.FinishedAt.IsZero())
	require.Empty(t, run.Error)
	require.InDelta(t, final[0].Fitness().Mean, run.FinalBest, 1e-12)

	records, ok, err := store.GetGenerations(ctx, obs.RunID())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, records, 5)
	for i, record := range records {
		require.Equal(t, i, record.Diagnostics.Generation)
		require.Equal(t, 10, record.Diagnostics.Population)
		require.NotEmpty(t, record.BestGenes)
	}
	require.Contains(t, out.String(), "MEAN AGE")

	var rendered bytes.Buffer
	require.NoError(t, WriteRunHistory(ctx, &rendered, store, obs.RunID()))
	require.Contains(t, rendered.String(), obs.RunID())
	require.Error(t, WriteRunHistory(ctx, &rendered, store, "missing"))

	var runs bytes.Buffer
	require.NoError(t, WriteRuns(ctx, &runs, store))
	require.Contains(t, runs.String(), obs.RunID())
}

func TestHistoryObserverRecordsFailure(t *testing.T) {
	ctx := context.Background()
	store, err := OpenHistory(ctx, "leveldb", filepath.Join(t.TempDir(), "history"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = CloseHistory(store)
	})

	obs := NewHistoryObserver[float64](store)
	cfg := sphereConfig(5)
	cfg.Crosser = panickingCrosser{}
	cfg.Observer = obs
	eng, err := New(cfg)
	require.NoError(t, err)

	_, err = eng.Run(ctx)
	require.Error(t, err)

	run, ok, err := store.GetRun(ctx, obs.RunID())
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, run.Error, "crosser")
}

type failingObserver struct {
	HistoryObserver[float64]
	finished error
}

func (o *failingObserver) Generation(context.Context, Runtime, Population[float64]) error {
	return errors.New("disk full")
}

func (o *failingObserver) Finish(_ context.Context, _ Runtime, _ Population[float64], err error) {
	o.finished = err
}

func TestObserverErrorAbortsRun(t *testing.T) {
	store, err := OpenHistory(context.Background(), "", "")
	require.NoError(t, err)

	obs := &failingObserver{HistoryObserver: HistoryObserver[float64]{Store: store}}
	cfg := sphereConfig(5)
	cfg.Observer = obs
	eng, err := New(cfg)
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	var pe *PolicyError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "observer", pe.Policy)
	require.ErrorContains(t, obs.finished, "disk full")
}

func TestOpenHistoryUnknownKind(t *testing.T) {
	_, err := OpenHistory(context.Background(), "cassandra", "")
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestSummarize(t *testing.T) {
	pop := Population[float64]{
		scored([]float64{0}, 1),
		scored([]float64{0}, 2),
		scored([]float64{0}, 3),
		scored([]float64{0}, 6),
		NewChromosome([]float64{0}),
	}
	pop[3].Deactivate()

	d := Summarize(7, pop)
	require.Equal(t, 7, d.Generation)
	require.Equal(t, 5, d.Population)
	require.Equal(t, 4, d.Active)
	require.Equal(t, 1.0, d.BestFitness)
	require.Equal(t, 6.0, d.WorstFitness)
	require.Equal(t, 3.0, d.MeanFitness)
	require.Equal(t, 2.0, d.MedianFitness)
	require.Equal(t, 1.0, d.MeanAge)
	require.InDelta(t, 2.160247, d.StdDevFitness, 1e-6)

	empty := Summarize(0, Population[float64]{NewChromosome([]float64{1})})
	require.Zero(t, empty.BestFitness)
	require.Equal(t, 1, empty.Active)
}
