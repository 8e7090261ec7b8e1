// Package dispatch provides the server half of the core: a Route binds a
// feature definition to its implementation factory, and a Router maps
// feature names to routes and validates the call envelope.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/artpar/wiregate/core/fault"
	"github.com/artpar/wiregate/core/feature"
	"github.com/artpar/wiregate/ports"
)

// Route binds one feature to a per-call implementation factory.
// Immutable after NewRoute; safe for concurrent calls.
type Route struct {
	feature feature.Feature
	factory ports.Factory
}

// NewRoute constructs a Route. The factory runs once per Call and is never
// cached across calls.
func NewRoute(f feature.Feature, factory ports.Factory) (Route, error) {
	if factory == nil {
		return Route{}, &fault.ConfigError{Component: "route " + f.Name(), Reason: "factory must not be nil"}
	}
	return Route{feature: f, factory: factory}, nil
}

// MustNewRoute is NewRoute for statically known bindings; it panics on error.
func MustNewRoute(f feature.Feature, factory ports.Factory) Route {
	r, err := NewRoute(f, factory)
	if err != nil {
		panic(err)
	}
	return r
}

// Feature returns the feature definition bound to this route.
func (r Route) Feature() feature.Feature { return r.feature }

// Call dispatches one method invocation: it validates arg against the
// method's input schema, builds a fresh implementation from the factory,
// invokes the matching handler, validates the result against the output
// schema, and returns it serialized as canonical JSON text.
//
// Failures raised by the handler itself are business errors and propagate
// unchanged.
func (r Route) Call(ctx context.Context, method string, arg any) (string, error) {
	callable, ok := r.feature.Callable(method)
	if !ok {
		return "", &fault.NotFoundError{Kind: fault.NotFoundMethod, Feature: r.feature.Name(), Method: method}
	}

	input, err := callable.Input.Validate(arg)
	if err != nil {
		return "", &fault.ValidationError{
			Feature: r.feature.Name(),
			Method:  method,
			Side:    fault.SideServer,
			Phase:   fault.PhaseInput,
			Err:     err,
		}
	}

	// The factory runs on every call so handlers can close over per-call
	// state carried by ctx.
	impl := r.factory(ctx)
	handler, ok := impl[method]
	if !ok || handler == nil {
		return "", &fault.NotFoundError{Kind: fault.NotFoundImplementation, Feature: r.feature.Name(), Method: method}
	}

	result, err := handler(ctx, input)
	if err != nil {
		return "", err
	}

	output, err := callable.Output.Validate(result)
	if err != nil {
		return "", &fault.ValidationError{
			Feature: r.feature.Name(),
			Method:  method,
			Side:    fault.SideServer,
			Phase:   fault.PhaseOutput,
			Err:     err,
		}
	}

	data, err := json.Marshal(output)
	if err != nil {
		return "", fmt.Errorf("serialize %s.%s result: %w", r.feature.Name(), method, err)
	}
	return string(data), nil
}
