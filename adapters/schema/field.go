// Package schema provides a concrete validation capability for the dispatch
// core: object schemas with typed fields, loadable from YAML feature
// definition files. The core only sees the opaque feature.Schema interface;
// any other validation engine can be plugged in instead.
package schema

// Field defines one field of an object schema.
type Field struct {
	// Type is the field type. See FieldType constants.
	Type FieldType `yaml:"type"`

	// Required indicates this field must be present.
	Required bool `yaml:"required,omitempty"`

	// Values lists valid values for enum type fields.
	Values []string `yaml:"values,omitempty"`

	// Fields defines the nested schema for object type fields.
	Fields map[string]Field `yaml:"fields,omitempty"`
}

// FieldType represents the type of a schema field.
type FieldType string

const (
	// Primitive types
	FieldTypeString FieldType = "string"
	FieldTypeInt    FieldType = "int"
	FieldTypeFloat  FieldType = "float"
	FieldTypeBool   FieldType = "bool"

	// Semantic types (string with validation)
	FieldTypeEmail FieldType = "email"
	FieldTypeURL   FieldType = "url"
	FieldTypeUUID  FieldType = "uuid"

	// Special types
	FieldTypeEnum    FieldType = "enum"    // Requires Values
	FieldTypeStrings FieldType = "strings" // Array of strings
	FieldTypeObject  FieldType = "object"  // Requires Fields
	FieldTypeAny     FieldType = "any"     // No validation
)

// knownFieldTypes is the set of types a definition file may use.
var knownFieldTypes = map[FieldType]bool{
	FieldTypeString:  true,
	FieldTypeInt:     true,
	FieldTypeFloat:   true,
	FieldTypeBool:    true,
	FieldTypeEmail:   true,
	FieldTypeURL:     true,
	FieldTypeUUID:    true,
	FieldTypeEnum:    true,
	FieldTypeStrings: true,
	FieldTypeObject:  true,
	FieldTypeAny:     true,
}
