package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/artpar/wiregate/core/feature"
)

// Definition is the YAML shape of a feature definition file.
//
//	feature: crew
//	methods:
//	  getOfficer:
//	    input:
//	      fields:
//	        id: {type: int, required: true}
//	    output:
//	      fields:
//	        id:   {type: int, required: true}
//	        name: {type: string, required: true}
//	        rank: {type: string, required: true}
type Definition struct {
	// Feature is the feature name.
	Feature string `yaml:"feature"`

	// Description for documentation.
	Description string `yaml:"description,omitempty"`

	// Methods maps method names to their schema pair.
	Methods map[string]MethodDef `yaml:"methods"`
}

// MethodDef is the schema pair for one method.
type MethodDef struct {
	Input  Object `yaml:"input"`
	Output Object `yaml:"output"`
}

// ParseFile parses a feature definition from a YAML file.
func ParseFile(path string) (feature.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return feature.Feature{}, fmt.Errorf("read file %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return feature.Feature{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Parse parses a feature definition from YAML bytes.
func Parse(data []byte) (feature.Feature, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return feature.Feature{}, fmt.Errorf("parse yaml: %w", err)
	}

	if err := validateDefinition(def); err != nil {
		return feature.Feature{}, err
	}

	methods := make(map[string]feature.Callable, len(def.Methods))
	for name, m := range def.Methods {
		methods[name] = feature.Transform(m.Input).To(m.Output)
	}
	return feature.New(def.Feature, methods)
}

// ParseDir parses all feature definitions from a directory, including
// subdirectories.
func ParseDir(dir string) ([]feature.Feature, error) {
	var features []feature.Feature

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := ParseDir(path)
			if err != nil {
				return nil, err
			}
			features = append(features, sub...)
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		f, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}

	return features, nil
}

// validateDefinition checks the definition before building a feature from it.
func validateDefinition(def Definition) error {
	if def.Feature == "" {
		return fmt.Errorf("definition is missing a feature name")
	}
	if len(def.Methods) == 0 {
		return fmt.Errorf("feature %q declares no methods", def.Feature)
	}
	for name, m := range def.Methods {
		if name == "" {
			return fmt.Errorf("feature %q has an empty method name", def.Feature)
		}
		if err := validateFields(m.Input.Fields); err != nil {
			return fmt.Errorf("feature %q method %q input: %w", def.Feature, name, err)
		}
		if err := validateFields(m.Output.Fields); err != nil {
			return fmt.Errorf("feature %q method %q output: %w", def.Feature, name, err)
		}
	}
	return nil
}

func validateFields(fields map[string]Field) error {
	for name, f := range fields {
		if !knownFieldTypes[f.Type] {
			return fmt.Errorf("field %q has unknown type %q", name, f.Type)
		}
		if f.Type == FieldTypeEnum && len(f.Values) == 0 {
			return fmt.Errorf("field %q is an enum with no values", name)
		}
		if f.Type == FieldTypeObject {
			if len(f.Fields) == 0 {
				return fmt.Errorf("field %q is an object with no fields", name)
			}
			if err := validateFields(f.Fields); err != nil {
				return err
			}
		}
	}
	return nil
}
