package scoped

import (
	"context"
	"fmt"
)

// Result is the closed set of shapes a producer may yield: a plain value,
// an eventual value, or a scoped resource opened now or on adaptation.
// The set is sealed by an unexported method so the adapter handles every
// shape exhaustively.
type Result interface {
	isResult()
}

type finalResult struct {
	value any
}

type deferredResult struct {
	compute func(ctx context.Context) (any, error)
}

type resourceResult struct {
	value   any
	release func(ctx context.Context) error
}

type openResourceResult struct {
	open func(ctx context.Context) (any, func(context.Context) error, error)
}

func (finalResult) isResult()        {}
func (deferredResult) isResult()     {}
func (resourceResult) isResult()     {}
func (openResourceResult) isResult() {}

// Final yields a plain value.
func Final(v any) Result {
	return finalResult{value: v}
}

// Deferred yields an eventual value, computed when the result is adapted.
func Deferred(compute func(ctx context.Context) (any, error)) Result {
	return deferredResult{compute: compute}
}

// Resource yields an already-built value whose release runs when the
// owning scope ends.
func Resource(v any, release func(ctx context.Context) error) Result {
	return resourceResult{value: v, release: release}
}

// OpenResource yields a resource opened during adaptation. The returned
// release function runs when the owning scope ends.
func OpenResource(open func(ctx context.Context) (any, func(context.Context) error, error)) Result {
	return openResourceResult{open: open}
}

// adapt normalizes a producer result into a resolved value, registering
// any release on the owning scope's stack. Resource shapes are matched
// before the deferred shape: a resource must never be mistaken for a bare
// eventual value.
func adapt(ctx context.Context, res Result, stack *releaseStack, owner *Producer) (any, error) {
	switch r := res.(type) {
	case openResourceResult:
		val, release, err := r.open(ctx)
		if err != nil {
			return nil, err
		}
		if release != nil {
			stack.push(owner.name, release)
		}
		return val, nil
	case resourceResult:
		if r.release != nil {
			stack.push(owner.name, r.release)
		}
		return r.value, nil
	case deferredResult:
		return r.compute(ctx)
	case finalResult:
		return r.value, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("producer %s: unknown result shape %T", owner.name, res)
	}
}
