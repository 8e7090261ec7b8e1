package dispatch_test

import (
	"context"
	"strings"
	"testing"

	"github.com/artpar/wiregate/core/dispatch"
	"github.com/artpar/wiregate/core/fault"
	"github.com/artpar/wiregate/core/feature"
	"github.com/artpar/wiregate/ports"
)

func simpleRoute(t *testing.T, name string, impl ports.Implementation) dispatch.Route {
	t.Helper()
	f, err := feature.New(name, map[string]feature.Callable{
		"list": feature.Transform(accept()).To(accept()),
	})
	if err != nil {
		t.Fatalf("feature.New() error = %v", err)
	}
	return dispatch.MustNewRoute(f, staticFactory(impl))
}

func TestRouter_Dispatch(t *testing.T) {
	route := simpleRoute(t, "missions", ports.Implementation{
		"list": func(ctx context.Context, input any) (any, error) {
			return []any{"farpoint"}, nil
		},
	})

	router, err := dispatch.NewRouter([]dispatch.Route{route})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	got, err := router.Dispatch(context.Background(), map[string]any{
		"feature": "missions",
		"method":  "list",
		"input":   map[string]any{},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got != `["farpoint"]` {
		t.Errorf("Dispatch() = %q", got)
	}
}

func TestRouter_UnknownFeature(t *testing.T) {
	router, err := dispatch.NewRouter(nil)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	_, err = router.Dispatch(context.Background(), map[string]any{
		"feature": "missing",
		"method":  "x",
		"input":   map[string]any{},
	})
	if err == nil {
		t.Fatal("Dispatch() should fail for an unknown feature")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error %q should mention the feature name", err)
	}
	if nf, ok := fault.AsNotFound(err); !ok || nf.Kind != fault.NotFoundFeature {
		t.Errorf("error = %v, want feature NotFoundError", err)
	}
}

func TestRouter_EnvelopeValidated(t *testing.T) {
	router, err := dispatch.NewRouter(nil)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	tests := []struct {
		name    string
		payload any
	}{
		{"nil payload", nil},
		{"missing feature", map[string]any{"method": "x"}},
		{"missing method", map[string]any{"feature": "crew"}},
		{"non-object", "feature=crew"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := router.Dispatch(context.Background(), tt.payload)
			ve, ok := fault.AsValidation(err)
			if !ok {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if ve.Phase != fault.PhaseEnvelope {
				t.Errorf("Phase = %s, want envelope", ve.Phase)
			}
		})
	}
}

func TestRouter_MultiFeatureIsolation(t *testing.T) {
	crewTouched := false
	crew := simpleRoute(t, "crew", ports.Implementation{
		"list": func(ctx context.Context, input any) (any, error) {
			crewTouched = true
			return nil, nil
		},
	})
	missions := simpleRoute(t, "missions", ports.Implementation{
		"list": func(ctx context.Context, input any) (any, error) {
			return []any{}, nil
		},
	})

	router, err := dispatch.NewRouter([]dispatch.Route{crew, missions})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	if _, err := router.Dispatch(context.Background(), map[string]any{
		"feature": "missions",
		"method":  "list",
		"input":   map[string]any{},
	}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if crewTouched {
		t.Error("dispatching missions must never touch the crew implementation")
	}
}

func TestNewRouter_DuplicateFeature(t *testing.T) {
	a := simpleRoute(t, "crew", ports.Implementation{})
	b := simpleRoute(t, "crew", ports.Implementation{})

	_, err := dispatch.NewRouter([]dispatch.Route{a, b})
	if err == nil {
		t.Fatal("NewRouter() should reject duplicate feature names")
	}
	if !fault.IsConfig(err) {
		t.Errorf("error = %v, want ConfigError", err)
	}
}

func TestRouter_Features(t *testing.T) {
	router, err := dispatch.NewRouter([]dispatch.Route{
		simpleRoute(t, "missions", ports.Implementation{}),
		simpleRoute(t, "crew", ports.Implementation{}),
	})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	got := router.Features()
	if len(got) != 2 || got[0] != "crew" || got[1] != "missions" {
		t.Errorf("Features() = %v, want [crew missions]", got)
	}

	if _, ok := router.Route("crew"); !ok {
		t.Error("Route(crew) should exist")
	}
	if _, ok := router.Route("borg"); ok {
		t.Error("Route(borg) should not exist")
	}
}
