package extensions

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scoped "github.com/scoped-fn/scoped-go"
)

func TestMetricsExtensionCountsAcquires(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetricsExtension(reg)
	require.NoError(t, err)

	p := scoped.NewProducer("db", func(ctx context.Context, args scoped.Args) (scoped.Result, error) {
		return scoped.Final("db"), nil
	})
	fn := scoped.NewFunc("fn", func(ctx context.Context, args scoped.Args) (any, error) {
		return nil, nil
	},
		scoped.WithDep("a", scoped.Scoped(p)),
		scoped.WithDep("b", scoped.Scoped(p)),
	)

	res, err := scoped.Resolve(context.Background(), fn, nil, scoped.WithExtensions(m))
	require.NoError(t, err)
	require.NoError(t, res.Close(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.acquires.WithLabelValues("db", "acquire")),
		"cache hits must not count as invocations")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.failures.WithLabelValues("db", "acquire")))
}

func TestMetricsExtensionCountsFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetricsExtension(reg)
	require.NoError(t, err)

	p := scoped.NewProducer("broken", func(ctx context.Context, args scoped.Args) (scoped.Result, error) {
		return nil, errors.New("kaboom")
	})
	fn := scoped.NewFunc("fn", func(ctx context.Context, args scoped.Args) (any, error) {
		return nil, nil
	}, scoped.WithDep("v", scoped.Scoped(p)))

	res, err := scoped.Resolve(context.Background(), fn, nil, scoped.WithExtensions(m))
	require.NoError(t, err)
	defer res.Close(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("broken", "acquire")))
}

func TestMetricsExtensionCountsReleaseErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetricsExtension(reg)
	require.NoError(t, err)

	p := scoped.NewProducer("leaky", func(ctx context.Context, args scoped.Args) (scoped.Result, error) {
		return scoped.Resource("leaky", func(ctx context.Context) error {
			return errors.New("release boom")
		}), nil
	})
	fn := scoped.NewFunc("fn", func(ctx context.Context, args scoped.Args) (any, error) {
		return nil, nil
	}, scoped.WithDep("r", scoped.Scoped(p)))

	res, err := scoped.Resolve(context.Background(), fn, nil, scoped.WithExtensions(m))
	require.NoError(t, err)

	require.Error(t, res.Close(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.releaseErrors))
}

func TestMetricsExtensionDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetricsExtension(reg)
	require.NoError(t, err)

	_, err = NewMetricsExtension(reg)
	require.Error(t, err)
}
