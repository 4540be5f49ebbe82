package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRunResult(t *testing.T) {
	require.Equal(t, "ok", RunResult(nil))
	require.Equal(t, "error", RunResult(errors.New("boom")))
}

func TestRunsCounterByResult(t *testing.T) {
	before := testutil.ToFloat64(Runs.WithLabelValues("error"))
	Runs.WithLabelValues(RunResult(errors.New("boom"))).Inc()
	require.Equal(t, before+1, testutil.ToFloat64(Runs.WithLabelValues("error")))
}

func TestStartRunWithoutProvider(t *testing.T) {
	ctx, span := StartRun(context.Background(), 10, 4, "moving")
	defer span.End()

	require.NotNil(t, ctx)
	GenerationEvent(span, 1, 10, 0.5)
}
