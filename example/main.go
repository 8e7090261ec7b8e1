// Package main demonstrates how the dispatch core fits together: a feature
// definition, a server route with an implementation factory, and a client
// remote calling through the loopback cable and through HTTP.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/artpar/wiregate/adapters/loopback"
	"github.com/artpar/wiregate/adapters/schema"
	"github.com/artpar/wiregate/bootstrap"
	"github.com/artpar/wiregate/config"
	"github.com/artpar/wiregate/core/dispatch"
	"github.com/artpar/wiregate/core/feature"
	"github.com/artpar/wiregate/core/proxy"
	"github.com/artpar/wiregate/ports"
)

// crewFeature declares one feature programmatically. The same definition
// can live in a YAML file and load via schema.ParseFile.
func crewFeature() feature.Feature {
	officer := schema.Object{Fields: map[string]schema.Field{
		"id":   {Type: schema.FieldTypeInt, Required: true},
		"name": {Type: schema.FieldTypeString, Required: true},
		"rank": {Type: schema.FieldTypeString, Required: true},
	}}

	return feature.MustNew("crew", map[string]feature.Callable{
		"getOfficer": feature.Transform(schema.Object{Fields: map[string]schema.Field{
			"id": {Type: schema.FieldTypeInt, Required: true},
		}}).To(officer),
	})
}

// crewFactory builds the implementation fresh on every dispatch.
func crewFactory(roster map[int64]map[string]any) ports.Factory {
	return func(ctx context.Context) ports.Implementation {
		return ports.Implementation{
			"getOfficer": func(ctx context.Context, input any) (any, error) {
				id := input.(map[string]any)["id"].(int64)
				officer, ok := roster[id]
				if !ok {
					return nil, fmt.Errorf("no officer with id %d", id)
				}
				return officer, nil
			},
		}
	}
}

func main() {
	roster := map[int64]map[string]any{
		1: {"id": 1, "name": "Picard", "rank": "Captain"},
		2: {"id": 2, "name": "Riker", "rank": "Commander"},
	}

	route, err := dispatch.NewRoute(crewFeature(), crewFactory(roster))
	if err != nil {
		log.Fatalf("build route: %v", err)
	}

	router, err := dispatch.NewRouter([]dispatch.Route{route})
	if err != nil {
		log.Fatalf("build router: %v", err)
	}

	// Client side: a remote proxy over the in-process cable.
	remote, err := proxy.New(crewFeature(), loopback.New(router))
	if err != nil {
		log.Fatalf("build remote: %v", err)
	}

	officer, err := remote.Call(context.Background(), "getOfficer", map[string]any{"id": 1})
	if err != nil {
		log.Fatalf("call: %v", err)
	}
	fmt.Printf("loopback result: %v\n", officer)

	// Server side: the same router served over HTTP with graceful shutdown.
	cfg := &config.Config{}
	cfg.Server.Port = 8080
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"
	cfg.Metrics.Enabled = true

	app, err := bootstrap.New(cfg, []dispatch.Route{route})
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	fmt.Println("serving crew on :8080 (POST /rpc), Ctrl-C to stop")
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
