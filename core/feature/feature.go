// Package feature defines the data model for remotely callable features.
// A feature is a named collection of methods, each with an input and output
// schema. Feature values are pure data: construction is the only behavior,
// and a constructed Feature is immutable.
package feature

import (
	"sort"

	"github.com/artpar/wiregate/core/fault"
)

// Schema is the opaque validation capability attached to each side of a
// method. Validate returns the validated (possibly coerced) value, or an
// error describing the offending field. Implementations live outside the
// core; see adapters/schema for one.
type Schema interface {
	Validate(value any) (any, error)
}

// Callable pairs the input schema with the output schema for one method.
// Immutable once constructed.
type Callable struct {
	Input  Schema
	Output Schema
}

// Builder is the intermediate value of the Transform(...).To(...) chain.
type Builder struct {
	input Schema
}

// Transform starts building a Callable from its input schema.
func Transform(input Schema) Builder {
	return Builder{input: input}
}

// To completes the Callable with its output schema.
func (b Builder) To(output Schema) Callable {
	return Callable{Input: b.input, Output: output}
}

// Feature is a named mapping from method name to Callable.
// The method map is copied at construction; Feature values are safe to
// share across concurrent calls without locking.
type Feature struct {
	name    string
	methods map[string]Callable
}

// New constructs a Feature. The name and every method name must be
// non-empty, and every Callable must carry both schemas.
func New(name string, methods map[string]Callable) (Feature, error) {
	if name == "" {
		return Feature{}, &fault.ConfigError{Component: "feature", Reason: "name must not be empty"}
	}
	copied := make(map[string]Callable, len(methods))
	for method, c := range methods {
		if method == "" {
			return Feature{}, &fault.ConfigError{Component: "feature " + name, Reason: "method name must not be empty"}
		}
		if c.Input == nil || c.Output == nil {
			return Feature{}, &fault.ConfigError{Component: "feature " + name, Reason: "method " + method + " is missing a schema"}
		}
		copied[method] = c
	}
	return Feature{name: name, methods: copied}, nil
}

// MustNew is New for statically known definitions; it panics on error.
func MustNew(name string, methods map[string]Callable) Feature {
	f, err := New(name, methods)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the feature name.
func (f Feature) Name() string { return f.name }

// Callable returns the schema pair declared for method.
func (f Feature) Callable(method string) (Callable, bool) {
	c, ok := f.methods[method]
	return c, ok
}

// Methods returns the declared method names in sorted order.
func (f Feature) Methods() []string {
	names := make([]string, 0, len(f.methods))
	for name := range f.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of declared methods.
func (f Feature) Len() int { return len(f.methods) }
