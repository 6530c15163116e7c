package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/formwizard"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain() *domain.Definition {
	return &domain.Definition{Steps: []domain.StepDefinition{
		{Key: "1", Title: "A", Next: domain.Direct("2")},
		{Key: "2", Title: "B", Next: domain.Direct("3")},
		{Key: "3", Title: "C"},
	}}
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg, "chain")
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	hooks := m.Hooks().Merge(observability.LoggingHooks(logger))

	eng, err := formwizard.NewFromDefinition(chain(), formwizard.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	ctx := context.Background()
	state, err := eng.Start(ctx, "s1")
	require.NoError(t, err)
	state, err = eng.Next(ctx, state, nil, nil)
	require.NoError(t, err)
	state, err = eng.Next(ctx, state, nil, nil)
	require.NoError(t, err)
	state, err = eng.JumpTo(ctx, state, 0, false)
	require.NoError(t, err)
	_, err = eng.Submit(ctx, state, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StepVisits.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepVisits.WithLabelValues("3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Jumps.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions))
	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, count, "3 visited steps, 1 jump, 1 submission, 1 histogram")

	assert.Contains(t, buf.String(), "msg=submit")
	assert.Contains(t, buf.String(), "from=3")
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg, "")
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg, "")
	assert.Error(t, err)
}
