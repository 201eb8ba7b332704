package scoped

import (
	"context"
	"sync"
)

// ScopedParam is a parameter whose value is produced by a dependency
// descriptor declared as its default.
type ScopedParam struct {
	Name       string
	Dependency Dependency
}

// TaggedParam is a parameter carrying tag-bound observer dependencies.
type TaggedParam struct {
	Name         string
	Dependencies []Dependency
}

// Target is the callable surface the engine consumes: a name, the
// declared dependency parameters, and an invocation entry point. Func is
// the standard implementation; anything able to describe its own
// signature can participate.
type Target interface {
	// Name returns the callable's name
	Name() string

	// Dependencies returns the parameters carrying scoped dependency
	// descriptors, in declaration order
	Dependencies() []ScopedParam

	// Tagged returns the parameters carrying tag-bound dependencies, in
	// declaration order
	Tagged() []TaggedParam

	// Signature returns the visible parameter names: those a caller
	// supplies rather than the engine
	Signature() []string

	// Invoke calls the underlying callable with resolved arguments
	Invoke(ctx context.Context, args Args) (any, error)
}

// ScopedParameters returns fn's parameters whose values are produced by
// scoped dependency descriptors, in declaration order.
func ScopedParameters(fn Target) []ScopedParam {
	return fn.Dependencies()
}

// TaggedDependencies returns fn's parameters carrying tag-bound
// dependencies, in declaration order.
func TaggedDependencies(fn Target) []TaggedParam {
	return fn.Tagged()
}

// VisibleSignature returns the parameter names a caller of fn supplies.
func VisibleSignature(fn Target) []string {
	return fn.Signature()
}

type param struct {
	name   string
	dep    Dependency
	tagged []Dependency
}

// Func is the standard Target: a callable with explicitly declared
// parameters. Declaration order is preserved; the filtered views consumed
// by the engine are computed once per Func.
type Func struct {
	name   string
	params []param
	invoke func(ctx context.Context, args Args) (any, error)

	once    sync.Once
	scoped  []ScopedParam
	tagged  []TaggedParam
	visible []string
}

// FuncOption is a modifier for funcs
type FuncOption func(*Func)

// WithParam returns an option that declares a plain parameter
func WithParam(name string) FuncOption {
	return func(f *Func) {
		f.param(name)
	}
}

// WithDep returns an option that declares a parameter produced by a
// dependency descriptor
func WithDep(name string, dep Dependency) FuncOption {
	return func(f *Func) {
		f.param(name).dep = dep
	}
}

// WithTagged returns an option that attaches tag-bound observer
// dependencies to a parameter
func WithTagged(name string, deps ...Dependency) FuncOption {
	return func(f *Func) {
		p := f.param(name)
		p.tagged = append(p.tagged, deps...)
	}
}

// NewFunc creates a callable with declared parameters
func NewFunc(name string, invoke func(ctx context.Context, args Args) (any, error), opts ...FuncOption) *Func {
	f := &Func{
		name:   name,
		invoke: invoke,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// param returns the named parameter, declaring it on first use.
func (f *Func) param(name string) *param {
	for i := range f.params {
		if f.params[i].name == name {
			return &f.params[i]
		}
	}
	f.params = append(f.params, param{name: name})
	return &f.params[len(f.params)-1]
}

func (f *Func) views() {
	f.once.Do(func() {
		for _, p := range f.params {
			if p.dep != nil {
				f.scoped = append(f.scoped, ScopedParam{Name: p.name, Dependency: p.dep})
			} else {
				f.visible = append(f.visible, p.name)
			}
			if len(p.tagged) > 0 {
				f.tagged = append(f.tagged, TaggedParam{Name: p.name, Dependencies: p.tagged})
			}
		}
	})
}

func (f *Func) Name() string {
	return f.name
}

func (f *Func) Dependencies() []ScopedParam {
	f.views()
	return f.scoped
}

func (f *Func) Tagged() []TaggedParam {
	f.views()
	return f.tagged
}

func (f *Func) Signature() []string {
	f.views()
	return f.visible
}

func (f *Func) Invoke(ctx context.Context, args Args) (any, error) {
	return f.invoke(ctx, args)
}
