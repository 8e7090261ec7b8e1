// Package proxy provides the client half of the dispatch core: a Remote
// wraps a feature definition and a cable into a set of bound methods that
// validate input, forward the call, and validate the result.
//
// Bound methods are constructed eagerly from the feature's declared method
// names; there is no dynamic interception, so the callable set is fixed and
// enumerable at construction time.
package proxy

import (
	"context"

	"github.com/artpar/wiregate/core/fault"
	"github.com/artpar/wiregate/core/feature"
	"github.com/artpar/wiregate/ports"
)

// Method is one bound feature method. It rejects before touching the cable
// when the argument fails the input schema, and rejects after the cable when
// the raw result fails the output schema.
type Method func(ctx context.Context, arg any) (any, error)

// Remote exposes a feature's methods over a cable.
// Immutable after New; safe for concurrent use.
type Remote struct {
	feature feature.Feature
	methods map[string]Method
}

// New builds a Remote for the feature, binding one Method per declared
// method name over the cable.
func New(f feature.Feature, cable ports.Cable) (*Remote, error) {
	if cable == nil {
		return nil, &fault.ConfigError{Component: "remote " + f.Name(), Reason: "cable must not be nil"}
	}
	methods := make(map[string]Method, f.Len())
	for _, name := range f.Methods() {
		callable, _ := f.Callable(name)
		methods[name] = bind(f.Name(), name, callable, cable)
	}
	return &Remote{feature: f, methods: methods}, nil
}

// bind closes one Method over its callable and the cable.
func bind(featureName, method string, c feature.Callable, cable ports.Cable) Method {
	return func(ctx context.Context, arg any) (any, error) {
		input, err := c.Input.Validate(arg)
		if err != nil {
			return nil, &fault.ValidationError{
				Feature: featureName,
				Method:  method,
				Side:    fault.SideClient,
				Phase:   fault.PhaseInput,
				Err:     err,
			}
		}

		raw, err := cable(ctx, featureName, method, input)
		if err != nil {
			return nil, err
		}

		output, err := c.Output.Validate(raw)
		if err != nil {
			return nil, &fault.ValidationError{
				Feature: featureName,
				Method:  method,
				Side:    fault.SideClient,
				Phase:   fault.PhaseOutput,
				Err:     err,
			}
		}
		return output, nil
	}
}

// Feature returns the feature definition this remote was built from.
func (r *Remote) Feature() feature.Feature { return r.feature }

// Method returns the bound method with the given name.
func (r *Remote) Method(name string) (Method, bool) {
	m, ok := r.methods[name]
	return m, ok
}

// Methods returns the bound method names in sorted order.
func (r *Remote) Methods() []string { return r.feature.Methods() }

// Call invokes a bound method by name. Calling a method the feature never
// declared fails fast with a NotFoundError; the cable is not touched.
func (r *Remote) Call(ctx context.Context, method string, arg any) (any, error) {
	m, ok := r.methods[method]
	if !ok {
		return nil, &fault.NotFoundError{Kind: fault.NotFoundMethod, Feature: r.feature.Name(), Method: method}
	}
	return m(ctx, arg)
}
