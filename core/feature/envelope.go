package feature

import (
	"encoding/json"
	"fmt"

	"github.com/artpar/wiregate/core/fault"
)

// Envelope is the wire message exchanged between a remote proxy and a
// router. It is the only payload ever sent over a cable.
type Envelope struct {
	Feature string `json:"feature"`
	Method  string `json:"method"`
	Input   any    `json:"input"`
}

// ParseEnvelope validates an already-decoded payload against the fixed
// envelope shape. The payload must be an Envelope value or a generic JSON
// object with string "feature" and "method" keys; "input" is opaque and may
// be absent.
func ParseEnvelope(payload any) (Envelope, error) {
	switch p := payload.(type) {
	case Envelope:
		return validateEnvelope(p)
	case *Envelope:
		return validateEnvelope(*p)
	case map[string]any:
		env := Envelope{Input: p["input"]}
		var ok bool
		if env.Feature, ok = p["feature"].(string); !ok {
			return Envelope{}, envelopeErr(fmt.Errorf("field \"feature\" must be a string"))
		}
		if env.Method, ok = p["method"].(string); !ok {
			return Envelope{}, envelopeErr(fmt.Errorf("field \"method\" must be a string"))
		}
		return validateEnvelope(env)
	default:
		return Envelope{}, envelopeErr(fmt.Errorf("payload must be an object, got %T", payload))
	}
}

// DecodeEnvelope decodes a JSON envelope and validates its shape.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, envelopeErr(fmt.Errorf("malformed JSON: %w", err))
	}
	return validateEnvelope(env)
}

func validateEnvelope(env Envelope) (Envelope, error) {
	if env.Feature == "" {
		return Envelope{}, envelopeErr(fmt.Errorf("field \"feature\" must not be empty"))
	}
	if env.Method == "" {
		return Envelope{}, envelopeErr(fmt.Errorf("field \"method\" must not be empty"))
	}
	return env, nil
}

func envelopeErr(err error) error {
	return &fault.ValidationError{Side: fault.SideServer, Phase: fault.PhaseEnvelope, Err: err}
}
