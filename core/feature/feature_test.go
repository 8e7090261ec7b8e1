package feature_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/artpar/wiregate/core/fault"
	"github.com/artpar/wiregate/core/feature"
)

// passthrough is a trivial schema for construction tests.
type passthrough struct{}

func (passthrough) Validate(value any) (any, error) { return value, nil }

// rejecting always fails.
type rejecting struct{}

func (rejecting) Validate(value any) (any, error) { return nil, fmt.Errorf("rejected") }

func TestNew(t *testing.T) {
	f, err := feature.New("crew", map[string]feature.Callable{
		"getOfficer": feature.Transform(passthrough{}).To(passthrough{}),
		"promote":    feature.Transform(passthrough{}).To(passthrough{}),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if f.Name() != "crew" {
		t.Errorf("Name() = %q, want crew", f.Name())
	}
	if f.Len() != 2 {
		t.Errorf("Len() = %d, want 2", f.Len())
	}
	if _, ok := f.Callable("getOfficer"); !ok {
		t.Error("Callable(getOfficer) should exist")
	}
	if _, ok := f.Callable("selfDestruct"); ok {
		t.Error("Callable(selfDestruct) should not exist")
	}
}

func TestNew_EmptyName(t *testing.T) {
	_, err := feature.New("", nil)
	if err == nil {
		t.Fatal("New() with empty name should fail")
	}
	if !fault.IsConfig(err) {
		t.Errorf("error = %v, want ConfigError", err)
	}
}

func TestNew_InvalidMethods(t *testing.T) {
	tests := []struct {
		name    string
		methods map[string]feature.Callable
	}{
		{"empty method name", map[string]feature.Callable{
			"": feature.Transform(passthrough{}).To(passthrough{}),
		}},
		{"missing input schema", map[string]feature.Callable{
			"x": {Output: passthrough{}},
		}},
		{"missing output schema", map[string]feature.Callable{
			"x": {Input: passthrough{}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := feature.New("crew", tt.methods); err == nil {
				t.Error("New() should fail")
			}
		})
	}
}

func TestFeature_Immutable(t *testing.T) {
	methods := map[string]feature.Callable{
		"getOfficer": feature.Transform(passthrough{}).To(passthrough{}),
	}
	f, err := feature.New("crew", methods)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Mutating the source map must not affect the feature.
	methods["stowaway"] = feature.Transform(passthrough{}).To(passthrough{})
	delete(methods, "getOfficer")

	if _, ok := f.Callable("stowaway"); ok {
		t.Error("feature picked up a method added after construction")
	}
	if _, ok := f.Callable("getOfficer"); !ok {
		t.Error("feature lost a method deleted from the source map")
	}
}

func TestFeature_MethodsSorted(t *testing.T) {
	f, err := feature.New("crew", map[string]feature.Callable{
		"promote":    feature.Transform(passthrough{}).To(passthrough{}),
		"getOfficer": feature.Transform(passthrough{}).To(passthrough{}),
		"dismiss":    feature.Transform(passthrough{}).To(passthrough{}),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := []string{"dismiss", "getOfficer", "promote"}
	if got := f.Methods(); !reflect.DeepEqual(got, want) {
		t.Errorf("Methods() = %v, want %v", got, want)
	}
}

func TestTransform(t *testing.T) {
	in, out := passthrough{}, rejecting{}
	c := feature.Transform(in).To(out)

	if c.Input != in {
		t.Error("Transform did not keep the input schema")
	}
	if c.Output != out {
		t.Error("To did not keep the output schema")
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew with empty name should panic")
		}
	}()
	feature.MustNew("", nil)
}
