package scoped

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeNoDependenciesReturnsOriginal(t *testing.T) {
	fn := NewFunc("plain",
		func(ctx context.Context, args Args) (any, error) {
			return fmt.Sprintf("%v-%v", args["x"], args["y"]), nil
		},
		WithParam("x"),
		WithParam("y"),
	)

	bridged := Bridge(fn)
	assert.Same(t, Target(fn), bridged)

	out, err := bridged.Invoke(context.Background(), Args{"x": 1, "y": "a"})
	require.NoError(t, err)
	assert.Equal(t, "1-a", out)
}

func TestBridgeElidesDependencyParameters(t *testing.T) {
	fn := NewFunc("handler", discard,
		WithParam("name"),
		WithDep("db", Scoped(stringProducer("db", "db"))),
	)

	bridged := Bridge(fn)
	assert.NotSame(t, Target(fn), bridged)
	assert.Equal(t, []string{"name"}, bridged.Signature())
	assert.Empty(t, bridged.Dependencies())
	assert.Empty(t, bridged.Tagged())
}

func TestBridgeResolvesPerInvocation(t *testing.T) {
	calls := 0
	p := NewProducer("db", func(ctx context.Context, args Args) (Result, error) {
		calls++
		return Final("db"), nil
	})
	fn := NewFunc("handler",
		func(ctx context.Context, args Args) (any, error) {
			return fmt.Sprintf("%v:%v", args["name"], args["db"]), nil
		},
		WithParam("name"),
		WithDep("db", Scoped(p)),
	)

	bridged := Bridge(fn)

	out, err := bridged.Invoke(context.Background(), Args{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x:db", out)
	assert.Equal(t, 1, calls)

	_, err = bridged.Invoke(context.Background(), Args{"name": "y"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "each invocation opens a fresh resolution scope")
}

func TestBridgeCallerOverrideWins(t *testing.T) {
	calls := 0
	p := NewProducer("db", func(ctx context.Context, args Args) (Result, error) {
		calls++
		return Final("real"), nil
	})
	fn := NewFunc("handler",
		func(ctx context.Context, args Args) (any, error) {
			return args["db"], nil
		},
		WithDep("db", Scoped(p)),
	)

	out, err := Bridge(fn).Invoke(context.Background(), Args{"db": "fake"})
	require.NoError(t, err)
	assert.Equal(t, "fake", out)
	assert.Zero(t, calls, "an override means the descriptor is never acquired")
}

func TestBridgeUnwindsScopePerInvocation(t *testing.T) {
	releases := 0
	p := NewProducer("conn", func(ctx context.Context, args Args) (Result, error) {
		return Resource("conn", func(ctx context.Context) error {
			releases++
			return nil
		}), nil
	})
	fn := NewFunc("handler", discard, WithDep("conn", Scoped(p)))

	bridged := Bridge(fn)
	for i := 0; i < 3; i++ {
		_, err := bridged.Invoke(context.Background(), nil)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, releases)
}

func TestBridgeMemoized(t *testing.T) {
	fn := NewFunc("handler", discard,
		WithDep("db", Scoped(stringProducer("db", "db"))),
	)

	first := Bridge(fn)
	second := Bridge(fn)
	assert.Same(t, first, second)
}

func TestBridgeIdempotent(t *testing.T) {
	fn := NewFunc("handler", discard,
		WithDep("db", Scoped(stringProducer("db", "db"))),
	)

	bridged := Bridge(fn)
	assert.Same(t, bridged, Bridge(bridged), "a bridged callable declares no dependencies")
}

func TestBridgeTaggedOnlyCallable(t *testing.T) {
	obs := &plainObserver{}
	fn := NewFunc("handler",
		func(ctx context.Context, args Args) (any, error) {
			return args["x"].(int) * 2, nil
		},
		WithTagged("x", obs),
	)

	bridged := Bridge(fn)
	assert.NotSame(t, Target(fn), bridged)

	out, err := bridged.Invoke(context.Background(), Args{"x": 5})
	require.NoError(t, err)
	assert.Equal(t, 10, out)
	assert.True(t, obs.entered)
}

func TestBridgeTaggedFailureAborts(t *testing.T) {
	fn := NewFunc("handler",
		func(ctx context.Context, args Args) (any, error) {
			t.Fatal("callable must not run when a tagged dependency fails")
			return nil, nil
		},
		WithTagged("x", &explodingDep{}),
	)

	_, err := Bridge(fn).Invoke(context.Background(), Args{"x": 1})
	require.ErrorContains(t, err, "guard rejected")
}

func TestBridgeFailedMarkerReachesCallable(t *testing.T) {
	p := NewProducer("broken", func(ctx context.Context, args Args) (Result, error) {
		return nil, fmt.Errorf("kaboom")
	})
	fn := NewFunc("handler",
		func(ctx context.Context, args Args) (any, error) {
			failed, ok := args["v"].(Failed)
			require.True(t, ok)
			return failed.Parameter, nil
		},
		WithDep("v", Scoped(p)),
	)

	out, err := Bridge(fn).Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "v", out)
}
