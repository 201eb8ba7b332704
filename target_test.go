package scoped

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncViews(t *testing.T) {
	db := Scoped(stringProducer("db", "db"))
	obs := &plainObserver{}

	fn := NewFunc("handler", discard,
		WithParam("name"),
		WithDep("db", db),
		WithTagged("customer", obs),
		WithParam("count"),
	)

	deps := ScopedParameters(fn)
	require.Len(t, deps, 1)
	assert.Equal(t, "db", deps[0].Name)
	assert.Equal(t, Dependency(db), deps[0].Dependency)

	tagged := TaggedDependencies(fn)
	require.Len(t, tagged, 1)
	assert.Equal(t, "customer", tagged[0].Name)

	// Dependency-bearing parameters are hidden; tagged-only ones are not.
	assert.Equal(t, []string{"name", "customer", "count"}, VisibleSignature(fn))
}

func TestFuncTaggedMergesWithDeclaredParameter(t *testing.T) {
	db := Scoped(stringProducer("db", "db"))
	obs := &plainObserver{}

	fn := NewFunc("handler", discard,
		WithDep("db", db),
		WithTagged("db", obs),
	)

	require.Len(t, ScopedParameters(fn), 1)
	tagged := TaggedDependencies(fn)
	require.Len(t, tagged, 1)
	assert.Equal(t, "db", tagged[0].Name)
	assert.NotContains(t, VisibleSignature(fn), "db")
}

func TestFuncDeclarationOrderPreserved(t *testing.T) {
	fn := NewFunc("handler", discard,
		WithDep("c", Scoped(stringProducer("c", "c"))),
		WithDep("a", Scoped(stringProducer("a", "a"))),
		WithDep("b", Scoped(stringProducer("b", "b"))),
	)

	var names []string
	for _, p := range ScopedParameters(fn) {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestFuncInvoke(t *testing.T) {
	fn := NewFunc("sum", func(ctx context.Context, args Args) (any, error) {
		return args["a"].(int) + args["b"].(int), nil
	})

	out, err := fn.Invoke(context.Background(), Args{"a": 2, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, 5, out)
}

func TestProducerInputs(t *testing.T) {
	base := stringProducer("base", "base")
	p := NewProducer("derived", func(ctx context.Context, args Args) (Result, error) {
		return Final(nil), nil
	}, WithInput("b", Scoped(base)))

	assert.Equal(t, "derived", p.Name())
	require.Len(t, p.Inputs(), 1)
	assert.Equal(t, "b", p.Inputs()[0].Name)
}
