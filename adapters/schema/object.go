package schema

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"github.com/artpar/wiregate/core/feature"
)

// Object validates a JSON object against a set of typed fields.
// Unknown fields are rejected (strict mode, fail loud). The validated value
// is a fresh map with numeric values coerced to canonical Go types (int64
// for int fields, float64 for float fields), so the same value round-trips
// identically through JSON on both sides of the wire.
type Object struct {
	Fields map[string]Field `yaml:"fields"`
}

// Any is a pass-through schema for opaque values.
type Any struct{}

// Validate returns the value unchanged.
func (Any) Validate(value any) (any, error) { return value, nil }

// Validate checks value against the object's fields and returns the
// coerced copy, or an error describing every offending field.
func (o Object) Validate(value any) (any, error) {
	result := Result{Valid: true}
	out := o.validate(&result, "", value)
	if err := result.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// validate walks one object level. prefix is the dotted path for error
// messages on nested fields.
func (o Object) validate(result *Result, prefix string, value any) any {
	obj, ok := value.(map[string]any)
	if !ok {
		result.AddError(prefix, "type", value, fmt.Sprintf("must be an object, got %T", value))
		return nil
	}

	// Strict mode: reject fields the schema never declared.
	for name := range obj {
		if _, known := o.Fields[name]; !known {
			result.AddError(path(prefix, name), "unknown_field", name, "not defined in schema")
		}
	}

	out := make(map[string]any, len(obj))
	for name, field := range o.Fields {
		fieldPath := path(prefix, name)
		raw, present := obj[name]

		if !present || raw == nil {
			if field.Required {
				result.AddError(fieldPath, "required", nil, "field is required")
			}
			continue
		}

		out[name] = validateField(result, fieldPath, field, raw)
	}
	return out
}

// validateField checks one value against its field type and returns the
// coerced value.
func validateField(result *Result, fieldPath string, field Field, value any) any {
	switch field.Type {
	case FieldTypeString:
		if _, ok := value.(string); !ok {
			result.AddError(fieldPath, "type", value, "must be a string")
		}
		return value

	case FieldTypeInt:
		switch v := value.(type) {
		case int:
			return int64(v)
		case int32:
			return int64(v)
		case int64:
			return v
		case float64:
			if v != float64(int64(v)) {
				result.AddError(fieldPath, "type", value, "must be an integer")
				return value
			}
			return int64(v)
		default:
			result.AddError(fieldPath, "type", value, "must be an integer")
			return value
		}

	case FieldTypeFloat:
		switch v := value.(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int:
			return float64(v)
		case int64:
			return float64(v)
		default:
			result.AddError(fieldPath, "type", value, "must be a number")
			return value
		}

	case FieldTypeBool:
		if _, ok := value.(bool); !ok {
			result.AddError(fieldPath, "type", value, "must be a boolean")
		}
		return value

	case FieldTypeEmail:
		if str, ok := value.(string); ok {
			if _, err := mail.ParseAddress(str); err != nil {
				result.AddError(fieldPath, "type", value, "invalid email address")
			}
		} else {
			result.AddError(fieldPath, "type", value, "must be a string")
		}
		return value

	case FieldTypeURL:
		if str, ok := value.(string); ok {
			if _, err := url.ParseRequestURI(str); err != nil {
				result.AddError(fieldPath, "type", value, "invalid URL")
			}
		} else {
			result.AddError(fieldPath, "type", value, "must be a string")
		}
		return value

	case FieldTypeUUID:
		if str, ok := value.(string); ok {
			if !isValidUUID(str) {
				result.AddError(fieldPath, "type", value, "invalid UUID format")
			}
		} else {
			result.AddError(fieldPath, "type", value, "must be a string")
		}
		return value

	case FieldTypeEnum:
		if str, ok := value.(string); ok {
			if !containsString(field.Values, str) {
				result.AddError(fieldPath, "enum", value,
					fmt.Sprintf("must be one of: %s", strings.Join(field.Values, ", ")))
			}
		} else {
			result.AddError(fieldPath, "enum", value, "must be a string")
		}
		return value

	case FieldTypeStrings:
		switch v := value.(type) {
		case []string:
			return v
		case []any:
			out := make([]string, 0, len(v))
			for i, item := range v {
				str, ok := item.(string)
				if !ok {
					result.AddError(fieldPath, "type", item, fmt.Sprintf("element %d must be a string", i))
					continue
				}
				out = append(out, str)
			}
			return out
		default:
			result.AddError(fieldPath, "type", value, "must be an array of strings")
			return value
		}

	case FieldTypeObject:
		nested := Object{Fields: field.Fields}
		return nested.validate(result, fieldPath, value)

	case FieldTypeAny:
		return value

	default:
		result.AddError(fieldPath, "type", value, fmt.Sprintf("unknown field type %q", field.Type))
		return value
	}
}

func path(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// isValidUUID checks if a string is a valid UUID format.
func isValidUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// containsString checks if a string is in a slice.
func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// Ensure interface compliance.
var (
	_ feature.Schema = Object{}
	_ feature.Schema = Any{}
)
