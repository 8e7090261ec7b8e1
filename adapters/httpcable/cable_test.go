package httpcable_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/artpar/wiregate/adapters/httpcable"
	"github.com/artpar/wiregate/core/fault"
	"github.com/artpar/wiregate/core/feature"
)

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := httpcable.New(httpcable.Config{})
	if !fault.IsConfig(err) {
		t.Errorf("New() error = %v, want ConfigError", err)
	}
}

func TestCable_Call(t *testing.T) {
	var gotEnv feature.Envelope
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotEnv); err != nil {
			t.Errorf("decode envelope: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"name":"Picard","rank":"Captain"}`))
	}))
	defer srv.Close()

	cable, err := httpcable.New(httpcable.Config{Endpoint: srv.URL, APIKey: "ncc-1701"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := cable.Call(context.Background(), "crew", "getOfficer", map[string]any{"id": float64(1)})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}

	if gotAuth != "Bearer ncc-1701" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotEnv.Feature != "crew" || gotEnv.Method != "getOfficer" {
		t.Errorf("envelope = %+v", gotEnv)
	}

	want := map[string]any{"id": float64(1), "name": "Picard", "rank": "Captain"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Call() = %v, want %v", got, want)
	}
}

func TestCable_NoKeyNeverTouchesNetwork(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	cable, err := httpcable.New(httpcable.Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = cable.Call(context.Background(), "crew", "getOfficer", nil)
	if !fault.IsAuth(err) {
		t.Errorf("Call() error = %v, want AuthError", err)
	}
	if requests.Load() != 0 {
		t.Errorf("server saw %d requests, want 0", requests.Load())
	}
}

func TestCable_RejectedCredential(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		cable, err := httpcable.New(httpcable.Config{Endpoint: srv.URL, APIKey: "expired"})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		_, err = cable.Call(context.Background(), "crew", "getOfficer", nil)
		if !fault.IsAuth(err) {
			t.Errorf("status %d: error = %v, want AuthError", status, err)
		}
		srv.Close()
	}
}

func TestCable_ServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "warp core offline", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cable, err := httpcable.New(httpcable.Config{Endpoint: srv.URL, APIKey: "ncc-1701"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = cable.Call(context.Background(), "crew", "getOfficer", nil)
	te, ok := fault.AsTransport(err)
	if !ok {
		t.Fatalf("error = %v, want TransportError", err)
	}
	if te.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", te.Status)
	}
}

func TestCable_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	cable, err := httpcable.New(httpcable.Config{Endpoint: srv.URL, APIKey: "ncc-1701"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = cable.Call(context.Background(), "crew", "getOfficer", nil)
	if !fault.IsTransport(err) {
		t.Errorf("error = %v, want TransportError", err)
	}
}

func TestCable_ExtraHeaders(t *testing.T) {
	var gotTrace string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTrace = r.Header.Get("X-Trace-Id")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cable, err := httpcable.New(httpcable.Config{
		Endpoint: srv.URL,
		APIKey:   "ncc-1701",
		Headers:  map[string]string{"X-Trace-Id": "stardate-41153"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := cable.Call(context.Background(), "crew", "getOfficer", nil); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if gotTrace != "stardate-41153" {
		t.Errorf("X-Trace-Id = %q", gotTrace)
	}
}
