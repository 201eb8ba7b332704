package scoped

import (
	"fmt"
	"reflect"
	"strings"
)

var (
	exclusiveIface = reflect.TypeOf((*exclusiveDependency)(nil)).Elem()
	singleMarker   = reflect.TypeOf(Single{})
)

// concreteType normalizes a descriptor's dynamic type to its element
// struct type, so value and pointer descriptors of one type group together.
func concreteType(dep Dependency) reflect.Type {
	t := reflect.TypeOf(dep)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isExclusiveType(t reflect.Type) bool {
	return t.Implements(exclusiveIface) || reflect.PointerTo(t).Implements(exclusiveIface)
}

func typeName(t reflect.Type) string {
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

// exclusiveAncestors walks t's embedded fields transitively and collects
// the exclusive types above t in the embedding hierarchy, nearest first.
// The Single marker itself is not an ancestor: it is the flag every
// exclusive type shares, not a family of its own.
func exclusiveAncestors(t reflect.Type) []reflect.Type {
	var out []reflect.Type
	seen := make(map[reflect.Type]bool)

	var walk func(reflect.Type)
	walk = func(st reflect.Type) {
		if st.Kind() != reflect.Struct {
			return
		}
		for i := 0; i < st.NumField(); i++ {
			field := st.Field(i)
			if !field.Anonymous {
				continue
			}
			ft := field.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft == singleMarker {
				continue
			}
			if isExclusiveType(ft) && !seen[ft] {
				seen[ft] = true
				out = append(out, ft)
			}
			walk(ft)
		}
	}

	walk(t)
	return out
}

func isA(t, ancestor reflect.Type) bool {
	if t == ancestor {
		return true
	}
	for _, a := range exclusiveAncestors(t) {
		if a == ancestor {
			return true
		}
	}
	return false
}

// Validate checks fn's dependency declarations: at most one instance of
// any exclusive type, or of any type embedding an exclusive type, may
// appear across the callable's scoped and tagged dependencies. Tagged
// dependencies are additionally checked per parameter.
//
// Conflicts on a concrete type are reported before conflicts on a shared
// ancestor, so the message names the exact type (e.g. Retry) rather than
// an abstract family (e.g. FailureHandler) whenever both apply. Duplicates
// confined to one parameter's tagged set report with the parameter name.
func Validate(fn Target) error {
	var deps []Dependency
	for _, p := range ScopedParameters(fn) {
		deps = append(deps, p.Dependency)
	}
	for _, tp := range TaggedDependencies(fn) {
		deps = append(deps, tp.Dependencies...)
	}

	if err := validatePerParameter(fn); err != nil {
		return err
	}
	if err := validateConcrete(deps); err != nil {
		return err
	}
	return validateAncestors(deps)
}

func validateConcrete(deps []Dependency) error {
	counts := make(map[reflect.Type]int)
	var order []reflect.Type

	for _, dep := range deps {
		t := concreteType(dep)
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}

	for _, t := range order {
		if isExclusiveType(t) && counts[t] > 1 {
			return fmt.Errorf("only one %s dependency is allowed", typeName(t))
		}
	}
	return nil
}

func validateAncestors(deps []Dependency) error {
	var ancestors []reflect.Type
	seen := make(map[reflect.Type]bool)

	for _, dep := range deps {
		for _, a := range exclusiveAncestors(concreteType(dep)) {
			if !seen[a] {
				seen[a] = true
				ancestors = append(ancestors, a)
			}
		}
	}

	for _, ancestor := range ancestors {
		var instances []string
		for _, dep := range deps {
			if isA(concreteType(dep), ancestor) {
				instances = append(instances, typeName(concreteType(dep)))
			}
		}
		if len(instances) > 1 {
			return fmt.Errorf("only one %s dependency is allowed, but found: %s",
				typeName(ancestor), strings.Join(instances, ", "))
		}
	}
	return nil
}

func validatePerParameter(fn Target) error {
	for _, tp := range TaggedDependencies(fn) {
		counts := make(map[reflect.Type]int)
		var order []reflect.Type

		for _, dep := range tp.Dependencies {
			t := concreteType(dep)
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}

		for _, t := range order {
			if isExclusiveType(t) && counts[t] > 1 {
				return fmt.Errorf("only one %s tagged dependency is allowed per parameter, but found %d on %q",
					typeName(t), counts[t], tp.Name)
			}
		}
	}
	return nil
}
