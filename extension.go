package scoped

import "context"

// Extension provides hooks into the resolution lifecycle
type Extension interface {
	// Name returns the extension's name
	Name() string

	// WrapAcquire intercepts a producer invocation
	WrapAcquire(ctx context.Context, next func() (any, error), op *Operation) (any, error)

	// OnReleaseError handles release failures during scope unwind.
	// Returns true if the error was handled, false to surface it to the caller
	OnReleaseError(err *ReleaseError) bool
}

// BaseExtension provides default implementations for Extension methods
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a new base extension with the given name
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string {
	return e.name
}

func (e *BaseExtension) WrapAcquire(ctx context.Context, next func() (any, error), op *Operation) (any, error) {
	return next()
}

func (e *BaseExtension) OnReleaseError(err *ReleaseError) bool {
	return false
}

// Operation describes the producer invocation being observed
type Operation struct {
	Kind     OperationKind
	Producer *Producer
	ScopeID  string
}

// OperationKind represents the type of operation
type OperationKind string

const (
	// OpAcquire indicates a call-scoped producer invocation
	OpAcquire OperationKind = "acquire"
	// OpSharedAcquire indicates a first-time shared producer invocation
	OpSharedAcquire OperationKind = "shared-acquire"
)

// wrapAcquire chains extensions around invoke (middleware pattern, last
// registered wraps first)
func wrapAcquire(ctx context.Context, exts []Extension, op *Operation, invoke func() (any, error)) (any, error) {
	next := invoke
	for i := len(exts) - 1; i >= 0; i-- {
		ext := exts[i]
		currentNext := next
		next = func() (any, error) {
			return ext.WrapAcquire(ctx, currentNext, op)
		}
	}
	return next()
}
