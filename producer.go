package scoped

import "context"

// Args maps parameter names to values.
type Args map[string]any

// ProducerFunc computes a producer's result from its resolved inputs.
type ProducerFunc func(ctx context.Context, args Args) (Result, error)

// Producer is a reusable recipe for a dependency value. Identity is the
// *Producer pointer: scope caches key by pointer, never by value equality,
// so two producers with equal outputs stay distinct.
type Producer struct {
	name   string
	inputs []Input
	fn     ProducerFunc
}

// Input declares a named dependency of a producer. Inputs resolve through
// the same engine before the producer runs, so producers nest recursively.
type Input struct {
	Name       string
	Dependency Dependency
}

// ProducerOption is a modifier for producers
type ProducerOption func(*Producer)

// WithInput returns an option that declares a dependency the producer
// receives under name in its args
func WithInput(name string, dep Dependency) ProducerOption {
	return func(p *Producer) {
		p.inputs = append(p.inputs, Input{Name: name, Dependency: dep})
	}
}

// NewProducer creates a producer with optional declared inputs
func NewProducer(name string, fn ProducerFunc, opts ...ProducerOption) *Producer {
	p := &Producer{
		name: name,
		fn:   fn,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the producer's name
func (p *Producer) Name() string {
	return p.name
}

// Inputs returns the producer's declared dependencies in declaration order
func (p *Producer) Inputs() []Input {
	return p.inputs
}

// resolveInputs acquires the producer's own dependencies into args.
// Releases for input descriptors land on stack, which belongs to the scope
// that owns this invocation (the call scope for scoped acquisition, the
// shared scope for shared acquisition).
func (p *Producer) resolveInputs(ctx context.Context, rc *ResolveCtx, stack *releaseStack) (Args, error) {
	if len(p.inputs) == 0 {
		return nil, nil
	}

	args := make(Args, len(p.inputs))
	for _, in := range p.inputs {
		val, err := in.Dependency.Acquire(ctx, rc)
		if err != nil {
			return nil, &AcquireError{Producer: p, Input: in.Name, Cause: err}
		}
		if rel, ok := in.Dependency.(Releaser); ok {
			stack.push(p.name+"."+in.Name, rel.Release)
		}
		args[in.Name] = val
	}

	return args, nil
}
