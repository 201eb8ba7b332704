package scoped

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/multierr"
)

// bridgeCacheSize bounds the per-callable memoization of Bridge results.
const bridgeCacheSize = 5000

var bridgeCache = func() *lru.Cache {
	c, err := lru.New(bridgeCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}()

// Bridge produces a Target equivalent to fn with dependency-bearing
// parameters elided from its visible signature; each invocation opens a
// fresh resolution scope, resolves, calls fn, and unwinds the scope. A
// callable declaring no dependencies is returned unchanged.
//
// Results are memoized per callable identity with bounded LRU eviction,
// so bridging the same callable twice yields the same Target.
func Bridge(fn Target) Target {
	if len(ScopedParameters(fn)) == 0 && len(TaggedDependencies(fn)) == 0 {
		return fn
	}

	if cached, ok := bridgeCache.Get(fn); ok {
		return cached.(Target)
	}

	b := &Bridged{target: fn}
	bridgeCache.Add(fn, b)
	return b
}

// Bridged is a dependency-free view of a callable. It declares no
// dependencies of its own, so bridging it again returns it unchanged.
type Bridged struct {
	target Target
}

func (b *Bridged) Name() string {
	return b.target.Name()
}

func (b *Bridged) Dependencies() []ScopedParam {
	return nil
}

func (b *Bridged) Tagged() []TaggedParam {
	return nil
}

func (b *Bridged) Signature() []string {
	return b.target.Signature()
}

// Invoke resolves the original callable's dependencies, honoring kwargs as
// overrides (an override means the parameter's descriptor is never
// acquired), merges resolved values with kwargs (caller wins), and calls
// the original. The resolution scope unwinds before Invoke returns.
func (b *Bridged) Invoke(ctx context.Context, kwargs Args) (any, error) {
	res, err := Resolve(ctx, b.target, kwargs)
	if err != nil {
		return nil, err
	}

	merged := make(Args, len(res.Args())+len(kwargs))
	for k, v := range res.Args() {
		merged[k] = v
	}
	for k, v := range kwargs {
		merged[k] = v
	}

	out, err := b.target.Invoke(ctx, merged)
	err = multierr.Append(err, res.Close(ctx))
	return out, err
}
