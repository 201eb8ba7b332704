package scoped

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// ResolveCtx carries one resolution scope's state: the identity-keyed
// producer cache and the release stack. It is scope-local and propagated
// explicitly through every Acquire call; concurrent unrelated resolutions
// each hold their own ResolveCtx and never observe each other's state.
// One logical caller per scope is assumed.
type ResolveCtx struct {
	id    string
	cache map[*Producer]any
	stack *releaseStack
	exts  []Extension
}

func newResolveCtx(exts []Extension) *ResolveCtx {
	return &ResolveCtx{
		id:    uuid.NewString(),
		cache: make(map[*Producer]any),
		stack: &releaseStack{},
		exts:  exts,
	}
}

// ID returns the scope's unique id, stable for its lifetime
func (rc *ResolveCtx) ID() string {
	return rc.id
}

// OnRelease registers fn on the scope's release stack. It runs when the
// resolution closes, after everything acquired later has released.
func (rc *ResolveCtx) OnRelease(fn func(ctx context.Context) error) {
	rc.stack.push("callback", fn)
}

// enter acquires dep within the scope and schedules its own release,
// if it declares one.
func (rc *ResolveCtx) enter(ctx context.Context, dep Dependency) (any, error) {
	val, err := dep.Acquire(ctx, rc)
	if err != nil {
		return nil, err
	}
	if rel, ok := dep.(Releaser); ok {
		rc.stack.push(fmt.Sprintf("%T", dep), rel.Release)
	}
	return val, nil
}

// Failed marks a scoped dependency whose producer raised during
// acquisition. It is stored in the resolved-arguments map in place of a
// value, so one failing producer does not abort the whole resolution.
// Tag-bound failures propagate instead of being captured.
type Failed struct {
	Parameter string
	Err       error
}

func (f Failed) Error() string {
	return fmt.Sprintf("resolving parameter %q: %v", f.Parameter, f.Err)
}

func (f Failed) Unwrap() error {
	return f.Err
}

// Resolution is one resolved call scope. Args holds the resolved-arguments
// map; Close unwinds the scope's release stack and must always run.
type Resolution struct {
	rc     *ResolveCtx
	args   Args
	closed bool
}

// ID returns the resolution scope's unique id
func (r *Resolution) ID() string {
	return r.rc.id
}

// Args returns the resolved-arguments map: parameter name to resolved
// value, or to a Failed marker for scoped producers that raised
func (r *Resolution) Args() Args {
	return r.args
}

// Close unwinds the release stack in reverse acquisition order. Closing
// twice is a no-op.
func (r *Resolution) Close(ctx context.Context) error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.rc.stack.unwind(ctx, r.rc.exts)
}

type resolveConfig struct {
	exts []Extension
}

// ResolveOption is a modifier for a single resolution
type ResolveOption func(*resolveConfig)

// WithExtensions returns an option that registers extensions observing
// this resolution
func WithExtensions(exts ...Extension) ResolveOption {
	return func(cfg *resolveConfig) {
		cfg.exts = append(cfg.exts, exts...)
	}
}

// Resolve resolves every dependency fn declares into a Resolution. An
// override for a dependency-bearing parameter short-circuits resolution
// for that parameter entirely; its descriptor is never acquired. Scoped
// producer failures are captured as Failed markers in the arguments map.
//
// Tag-bound dependencies resolve strictly after all scoped dependencies,
// observing each parameter's final (post-override) value. Their failures
// abort the resolution; the release stack still unwinds before Resolve
// returns the error.
//
// The caller owns the returned Resolution and must Close it.
func Resolve(ctx context.Context, fn Target, overrides Args, opts ...ResolveOption) (*Resolution, error) {
	var cfg resolveConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	rc := newResolveCtx(cfg.exts)
	args := make(Args)

	for _, p := range ScopedParameters(fn) {
		if val, ok := overrides[p.Name]; ok {
			args[p.Name] = val
			continue
		}

		val, err := rc.enter(ctx, p.Dependency)
		if err != nil {
			args[p.Name] = Failed{Parameter: p.Name, Err: err}
			continue
		}
		args[p.Name] = val
	}

	for _, tp := range TaggedDependencies(fn) {
		value, ok := overrides[tp.Name]
		if !ok {
			value = args[tp.Name]
		}

		for _, dep := range tp.Dependencies {
			bound := dep
			if b, ok := dep.(Binder); ok {
				bound = b.BindParameter(tp.Name, value)
			}

			if _, err := rc.enter(ctx, bound); err != nil {
				err = fmt.Errorf("tagged dependency on %q: %w", tp.Name, err)
				return nil, multierr.Append(err, rc.stack.unwind(ctx, rc.exts))
			}
		}
	}

	return &Resolution{rc: rc, args: args}, nil
}
