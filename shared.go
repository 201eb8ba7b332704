package scoped

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// SharedState is the lifecycle state of a SharedScope. Transitions are
// one-way: unopened -> open -> closed.
type SharedState int32

const (
	SharedUnopened SharedState = iota
	SharedOpen
	SharedClosed
)

func (s SharedState) String() string {
	switch s {
	case SharedUnopened:
		return "unopened"
	case SharedOpen:
		return "open"
	case SharedClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var (
	sharedMu     sync.Mutex
	activeShared *SharedScope
)

func currentShared() *SharedScope {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	return activeShared
}

// SharedScope caches producer values across many resolution scopes and
// releases everything acquired within it, in reverse acquisition order,
// when closed. At most one scope is active at a time; opening a new one
// while another is active shadows it until Close restores it.
type SharedScope struct {
	id    string
	state atomic.Int32
	mu    sync.Mutex // guards first initialization per producer
	cache sync.Map   // *Producer -> any; lock-free cached path
	stack *releaseStack
	exts  []Extension
	prior *SharedScope
}

// SharedOption is a modifier for shared scopes
type SharedOption func(*SharedScope)

// WithSharedExtensions returns an option that registers extensions
// observing shared acquisitions and release failures
func WithSharedExtensions(exts ...Extension) SharedOption {
	return func(s *SharedScope) {
		s.exts = append(s.exts, exts...)
	}
}

// NewSharedScope creates a shared scope without opening it
func NewSharedScope(opts ...SharedOption) *SharedScope {
	s := &SharedScope{
		id:    uuid.NewString(),
		stack: &releaseStack{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// OpenShared creates and opens a shared scope:
//
//	shared := scoped.OpenShared()
//	defer shared.Close(ctx)
func OpenShared(opts ...SharedOption) *SharedScope {
	return NewSharedScope(opts...).Open()
}

// Open installs the scope as the active shared scope, saving any
// previously active scope for restoration on Close. Opening a scope that
// is not in its unopened state is a programmer error and panics.
func (s *SharedScope) Open() *SharedScope {
	if !s.state.CompareAndSwap(int32(SharedUnopened), int32(SharedOpen)) {
		panic(&ScopeStateError{State: s.State(), Op: "open"})
	}

	sharedMu.Lock()
	s.prior = activeShared
	activeShared = s
	sharedMu.Unlock()

	return s
}

// Close unwinds the scope's release stack in reverse acquisition order and
// restores the previously active scope. Every release runs even when some
// fail; unhandled failures are aggregated into the returned error.
func (s *SharedScope) Close(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(SharedOpen), int32(SharedClosed)) {
		return &ScopeStateError{State: s.State(), Op: "close"}
	}

	sharedMu.Lock()
	if activeShared == s {
		activeShared = s.prior
	}
	sharedMu.Unlock()

	return s.stack.unwind(ctx, s.exts)
}

// ID returns the scope's unique id
func (s *SharedScope) ID() string {
	return s.id
}

// State returns the scope's current lifecycle state
func (s *SharedScope) State() SharedState {
	return SharedState(s.state.Load())
}

// acquire resolves p within the shared scope, initializing it exactly once
// per scope under concurrent callers. Double-checked pattern: the cached
// path stays lock-free, the producer's own inputs resolve outside the
// lock, and the cache is re-checked under the lock before invoking.
func (s *SharedScope) acquire(ctx context.Context, rc *ResolveCtx, p *Producer) (any, error) {
	if s.State() != SharedOpen {
		return nil, &ScopeStateError{State: s.State(), Op: "acquire " + p.Name()}
	}

	if val, ok := s.cache.Load(p); ok {
		return val, nil
	}

	args, err := p.resolveInputs(ctx, rc, s.stack)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have initialized p while inputs resolved.
	if val, ok := s.cache.Load(p); ok {
		return val, nil
	}

	op := &Operation{
		Kind:     OpSharedAcquire,
		Producer: p,
		ScopeID:  s.id,
	}

	val, err := wrapAcquire(ctx, s.exts, op, func() (any, error) {
		res, err := p.fn(ctx, args)
		if err != nil {
			return nil, err
		}
		return adapt(ctx, res, s.stack, p)
	})
	if err != nil {
		return nil, &AcquireError{Producer: p, Cause: err}
	}

	s.cache.Store(p, val)
	return val, nil
}

// SharedDependency resolves its producer once per shared scope; the value
// is reused across every resolution scope within it.
type SharedDependency struct {
	producer *Producer
}

// Shared declares a shared-scoped dependency on producer.
func Shared(p *Producer) *SharedDependency {
	return &SharedDependency{producer: p}
}

// Producer returns the producer this descriptor resolves
func (d *SharedDependency) Producer() *Producer {
	return d.producer
}

// Acquire resolves the producer within the active shared scope. Acquiring
// with no open shared scope fails fast with ErrNoSharedScope.
func (d *SharedDependency) Acquire(ctx context.Context, rc *ResolveCtx) (any, error) {
	s := currentShared()
	if s == nil {
		return nil, fmt.Errorf("acquiring producer %s: %w", d.producer.Name(), ErrNoSharedScope)
	}
	return s.acquire(ctx, rc, d.producer)
}
