package scoped

import "context"

// ScopedDependency resolves its producer fresh once per resolution scope.
// Repeated descriptors over the same producer within one scope share the
// cached value; the producer is invoked at most once.
type ScopedDependency struct {
	producer *Producer
}

// Scoped declares a call-scoped dependency on producer.
func Scoped(p *Producer) *ScopedDependency {
	return &ScopedDependency{producer: p}
}

// Producer returns the producer this descriptor resolves
func (d *ScopedDependency) Producer() *Producer {
	return d.producer
}

// Acquire resolves the producer within rc's scope. A cache hit returns the
// stored value without re-invocation. On a miss the producer's own inputs
// resolve first, recursively; there is no cycle guard, so a
// self-referential graph recurses until the stack limit.
func (d *ScopedDependency) Acquire(ctx context.Context, rc *ResolveCtx) (any, error) {
	if val, ok := rc.cache[d.producer]; ok {
		return val, nil
	}

	args, err := d.producer.resolveInputs(ctx, rc, rc.stack)
	if err != nil {
		return nil, err
	}

	op := &Operation{
		Kind:     OpAcquire,
		Producer: d.producer,
		ScopeID:  rc.id,
	}

	val, err := wrapAcquire(ctx, rc.exts, op, func() (any, error) {
		res, err := d.producer.fn(ctx, args)
		if err != nil {
			return nil, err
		}
		return adapt(ctx, res, rc.stack, d.producer)
	})
	if err != nil {
		return nil, &AcquireError{Producer: d.producer, Cause: err}
	}

	rc.cache[d.producer] = val
	return val, nil
}
