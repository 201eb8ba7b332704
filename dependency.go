package scoped

import "context"

// Dependency is implemented by every injectable descriptor. Acquire
// produces the value a parameter receives; the resolution scope carried by
// rc provides the producer cache and release stack for the current call.
type Dependency interface {
	Acquire(ctx context.Context, rc *ResolveCtx) (any, error)
}

// Releaser is implemented by dependencies that clean up after themselves.
// After a successful Acquire, the resolver pushes Release onto the owning
// scope's release stack, so releases run in reverse acquisition order when
// the scope ends.
type Releaser interface {
	Release(ctx context.Context) error
}

// Binder is implemented by tag-bound dependencies that capture the
// parameter they observe. BindParameter is called after all scoped
// dependencies for the call have resolved, with the parameter's final
// value (a caller override wins over a resolved value). It may return a
// fresh context-capturing instance or the receiver unchanged; the returned
// dependency is the one acquired into the scope.
//
// Dependencies that do not implement Binder are acquired as-is.
type Binder interface {
	Dependency
	BindParameter(name string, value any) Dependency
}

type exclusiveDependency interface {
	exclusiveDependency()
}

// Single marks a dependency type as exclusive: at most one instance of the
// type, or of any type that embeds it transitively, may appear across a
// callable's full dependency set. Embed it in a descriptor struct and run
// Validate against the callable to enforce the constraint:
//
//	type Retry struct {
//	    scoped.Single
//	    Attempts int
//	}
//
// Embedding chains form the hierarchy Validate reasons over: if Retry and
// Fallback both embed FailureHandler (which embeds Single), declaring one
// of each on the same callable is a conflict on FailureHandler.
type Single struct{}

func (Single) exclusiveDependency() {}
