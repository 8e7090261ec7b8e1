package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/artpar/wiregate/core/dispatch"
	"github.com/artpar/wiregate/core/fault"
	"github.com/artpar/wiregate/core/feature"
	"github.com/artpar/wiregate/ports"
)

// fakeSchema validates by delegating to fn.
type fakeSchema struct {
	fn func(any) (any, error)
}

func (s fakeSchema) Validate(value any) (any, error) { return s.fn(value) }

func accept() fakeSchema {
	return fakeSchema{fn: func(v any) (any, error) { return v, nil }}
}

func reject(msg string) fakeSchema {
	return fakeSchema{fn: func(v any) (any, error) { return nil, fmt.Errorf("%s", msg) }}
}

// officerSchema mimics a real object schema for the end-to-end scenario:
// it requires id/name/rank keys and passes the map through.
func officerSchema() fakeSchema {
	return fakeSchema{fn: func(v any) (any, error) {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("must be an object")
		}
		for _, field := range []string{"id", "name", "rank"} {
			if _, ok := obj[field]; !ok {
				return nil, fmt.Errorf("field %q: field is required", field)
			}
		}
		return obj, nil
	}}
}

func crewFeature(t *testing.T, input, output feature.Schema) feature.Feature {
	t.Helper()
	f, err := feature.New("crew", map[string]feature.Callable{
		"getOfficer": feature.Transform(input).To(output),
	})
	if err != nil {
		t.Fatalf("feature.New() error = %v", err)
	}
	return f
}

func staticFactory(impl ports.Implementation) ports.Factory {
	return func(ctx context.Context) ports.Implementation { return impl }
}

func TestRoute_Call(t *testing.T) {
	officer := map[string]any{"id": 1, "name": "Picard", "rank": "Captain"}
	route, err := dispatch.NewRoute(crewFeature(t, accept(), officerSchema()), staticFactory(ports.Implementation{
		"getOfficer": func(ctx context.Context, input any) (any, error) {
			return officer, nil
		},
	}))
	if err != nil {
		t.Fatalf("NewRoute() error = %v", err)
	}

	got, err := route.Call(context.Background(), "getOfficer", map[string]any{"id": 1})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	// The resolved value is serialized JSON text of the validated output.
	var parsed map[string]any
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("Call() result is not JSON: %v", err)
	}
	want := map[string]any{"id": float64(1), "name": "Picard", "rank": "Captain"}
	if !reflect.DeepEqual(parsed, want) {
		t.Errorf("parsed result = %v, want %v", parsed, want)
	}
}

func TestRoute_UnknownMethod(t *testing.T) {
	route, err := dispatch.NewRoute(crewFeature(t, accept(), accept()), staticFactory(ports.Implementation{}))
	if err != nil {
		t.Fatalf("NewRoute() error = %v", err)
	}

	_, err = route.Call(context.Background(), "missing", map[string]any{})
	if err == nil {
		t.Fatal("Call() should fail for an unknown method")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error %q should mention the method name", err)
	}
	if nf, ok := fault.AsNotFound(err); !ok || nf.Kind != fault.NotFoundMethod {
		t.Errorf("error = %v, want method NotFoundError", err)
	}
}

func TestRoute_InputValidatedServerSide(t *testing.T) {
	invoked := false
	route, err := dispatch.NewRoute(crewFeature(t, reject("field \"id\": field is required"), accept()), staticFactory(ports.Implementation{
		"getOfficer": func(ctx context.Context, input any) (any, error) {
			invoked = true
			return nil, nil
		},
	}))
	if err != nil {
		t.Fatalf("NewRoute() error = %v", err)
	}

	_, err = route.Call(context.Background(), "getOfficer", map[string]any{})
	ve, ok := fault.AsValidation(err)
	if !ok {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if ve.Side != fault.SideServer || ve.Phase != fault.PhaseInput {
		t.Errorf("got side=%s phase=%s, want server/input", ve.Side, ve.Phase)
	}
	if invoked {
		t.Error("implementation must not run on invalid input")
	}
}

func TestRoute_FactoryRunsEveryCall(t *testing.T) {
	var built int
	factory := func(ctx context.Context) ports.Implementation {
		built++
		return ports.Implementation{
			"getOfficer": func(ctx context.Context, input any) (any, error) {
				return map[string]any{}, nil
			},
		}
	}

	route, err := dispatch.NewRoute(crewFeature(t, accept(), accept()), factory)
	if err != nil {
		t.Fatalf("NewRoute() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := route.Call(context.Background(), "getOfficer", map[string]any{}); err != nil {
			t.Fatalf("Call() error = %v", err)
		}
	}
	if built != 3 {
		t.Errorf("factory ran %d times, want 3", built)
	}
}

func TestRoute_MissingImplementation(t *testing.T) {
	route, err := dispatch.NewRoute(crewFeature(t, accept(), accept()), staticFactory(ports.Implementation{}))
	if err != nil {
		t.Fatalf("NewRoute() error = %v", err)
	}

	_, err = route.Call(context.Background(), "getOfficer", map[string]any{})
	nf, ok := fault.AsNotFound(err)
	if !ok || nf.Kind != fault.NotFoundImplementation {
		t.Fatalf("error = %v, want implementation NotFoundError", err)
	}
	if !strings.Contains(err.Error(), "crew.getOfficer") {
		t.Errorf("error %q should name the feature.method pair", err)
	}
}

func TestRoute_BusinessErrorPropagates(t *testing.T) {
	sentinel := errors.New("warp core breach")
	route, err := dispatch.NewRoute(crewFeature(t, accept(), accept()), staticFactory(ports.Implementation{
		"getOfficer": func(ctx context.Context, input any) (any, error) {
			return nil, sentinel
		},
	}))
	if err != nil {
		t.Fatalf("NewRoute() error = %v", err)
	}

	_, err = route.Call(context.Background(), "getOfficer", map[string]any{})
	if !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want the implementation's error unchanged", err)
	}
	if fault.IsValidation(err) || fault.IsNotFound(err) {
		t.Error("business error must not be reclassified")
	}
}

func TestRoute_OutputValidationEnforced(t *testing.T) {
	// The implementation "succeeds" but returns a shape missing required
	// output fields; the route must still reject.
	route, err := dispatch.NewRoute(crewFeature(t, accept(), officerSchema()), staticFactory(ports.Implementation{
		"getOfficer": func(ctx context.Context, input any) (any, error) {
			return map[string]any{"id": 1, "name": "Picard"}, nil
		},
	}))
	if err != nil {
		t.Fatalf("NewRoute() error = %v", err)
	}

	_, err = route.Call(context.Background(), "getOfficer", map[string]any{})
	ve, ok := fault.AsValidation(err)
	if !ok {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if ve.Side != fault.SideServer || ve.Phase != fault.PhaseOutput {
		t.Errorf("got side=%s phase=%s, want server/output", ve.Side, ve.Phase)
	}
	if !strings.Contains(err.Error(), "rank") {
		t.Errorf("error %q should identify the missing field", err)
	}
}

func TestRoute_EndToEndScenario(t *testing.T) {
	roster := map[int]map[string]any{
		1: {"id": 1, "name": "Picard", "rank": "Captain"},
	}

	factory := func(ctx context.Context) ports.Implementation {
		return ports.Implementation{
			"getOfficer": func(ctx context.Context, input any) (any, error) {
				id := int(input.(map[string]any)["id"].(float64))
				officer, ok := roster[id]
				if !ok {
					return nil, fmt.Errorf("no officer with id %d", id)
				}
				return officer, nil
			},
		}
	}

	route, err := dispatch.NewRoute(crewFeature(t, accept(), officerSchema()), factory)
	if err != nil {
		t.Fatalf("NewRoute() error = %v", err)
	}

	got, err := route.Call(context.Background(), "getOfficer", map[string]any{"id": float64(1)})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	want := map[string]any{"id": float64(1), "name": "Picard", "rank": "Captain"}
	if !reflect.DeepEqual(parsed, want) {
		t.Errorf("result = %v, want %v", parsed, want)
	}
}

func TestNewRoute_NilFactory(t *testing.T) {
	if _, err := dispatch.NewRoute(crewFeature(t, accept(), accept()), nil); err == nil {
		t.Error("NewRoute() should fail with a nil factory")
	}
}
