// Package templatepack loads the message/report template packs shipped with
// the server and syncs them into the templates table as shared defaults.
package templatepack

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one template inside a pack manifest.
type Entry struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Content  string `yaml:"content"`
}

// PackMetadata represents a parsed pack.yaml manifest. Name, version and at
// least one template are required; other fields are optional.
type PackMetadata struct {
	Name                string                 `yaml:"name"`
	Description         string                 `yaml:"description"`
	Owner               string                 `yaml:"owner"`
	Version             string                 `yaml:"version"`
	VariablesSchemaPath string                 `yaml:"variables_schema_path"`
	SampleValues        map[string]interface{} `yaml:"sample_values"`
	Templates           []Entry                `yaml:"templates"`
}

// LoadPackMetadata reads and parses a pack.yaml file with strict validation.
// Unknown YAML fields are rejected (via KnownFields), and required fields
// are validated.
func LoadPackMetadata(path string) (*PackMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pack metadata: %w", err)
	}

	var meta PackMetadata
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject unknown YAML keys to catch typos

	if err := decoder.Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to parse pack metadata: %w", err)
	}

	if meta.Name == "" {
		return nil, fmt.Errorf("pack metadata missing required field: name")
	}
	if meta.Version == "" {
		return nil, fmt.Errorf("pack metadata missing required field: version")
	}
	if len(meta.Templates) == 0 {
		return nil, fmt.Errorf("pack %s declares no templates", meta.Name)
	}
	for _, t := range meta.Templates {
		if t.Name == "" || t.Content == "" {
			return nil, fmt.Errorf("pack %s has a template missing name or content", meta.Name)
		}
	}

	return &meta, nil
}
