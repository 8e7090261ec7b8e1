package dispatch

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/artpar/wiregate/core/fault"
	"github.com/artpar/wiregate/core/feature"
)

// Router dispatches envelopes to routes by feature name.
// The route table is built once and read-only afterwards, so concurrent
// dispatches need no locking.
type Router struct {
	routes map[string]Route
	logger zerolog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger attaches a logger for per-dispatch debug events.
func WithLogger(logger zerolog.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

// NewRouter builds a Router from routes. Registering two routes with the
// same feature name is a configuration error.
func NewRouter(routes []Route, opts ...RouterOption) (*Router, error) {
	r := &Router{
		routes: make(map[string]Route, len(routes)),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, route := range routes {
		name := route.Feature().Name()
		if name == "" {
			return nil, &fault.ConfigError{Component: "router", Reason: "route has an empty feature"}
		}
		if _, exists := r.routes[name]; exists {
			return nil, &fault.ConfigError{Component: "router", Reason: "feature " + name + " registered twice"}
		}
		r.routes[name] = route
	}
	return r, nil
}

// Route returns the route registered for a feature name.
func (r *Router) Route(name string) (Route, bool) {
	route, ok := r.routes[name]
	return route, ok
}

// Features returns the registered feature names in sorted order.
func (r *Router) Features() []string {
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch validates the payload against the envelope shape, looks up the
// target route, and delegates to it. The route's result or failure is
// returned unchanged.
func (r *Router) Dispatch(ctx context.Context, payload any) (string, error) {
	env, err := feature.ParseEnvelope(payload)
	if err != nil {
		return "", err
	}
	return r.DispatchEnvelope(ctx, env)
}

// DispatchEnvelope dispatches an already-validated envelope.
func (r *Router) DispatchEnvelope(ctx context.Context, env feature.Envelope) (string, error) {
	route, ok := r.routes[env.Feature]
	if !ok {
		r.logger.Debug().Str("feature", env.Feature).Str("method", env.Method).Msg("unknown feature")
		return "", &fault.NotFoundError{Kind: fault.NotFoundFeature, Feature: env.Feature, Method: env.Method}
	}

	r.logger.Debug().Str("feature", env.Feature).Str("method", env.Method).Msg("dispatching")
	return route.Call(ctx, env.Method, env.Input)
}
