// Package loopback provides an in-process cable wired straight into a
// router. It exists for single-binary deployments and for exercising the
// full client/server round trip without a network.
package loopback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/artpar/wiregate/core/dispatch"
	"github.com/artpar/wiregate/core/fault"
	"github.com/artpar/wiregate/core/feature"
	"github.com/artpar/wiregate/ports"
)

// New returns a cable that dispatches through router directly. The route's
// serialized JSON text is parsed back into a value, exactly as a network
// cable would parse a response body.
func New(router *dispatch.Router) ports.Cable {
	return func(ctx context.Context, featureName, method string, input any) (any, error) {
		env := feature.Envelope{Feature: featureName, Method: method, Input: input}
		text, err := router.DispatchEnvelope(ctx, env)
		if err != nil {
			return nil, err
		}

		var result any
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			return nil, &fault.TransportError{Feature: featureName, Method: method, Err: fmt.Errorf("parse response: %w", err)}
		}
		return result, nil
	}
}
