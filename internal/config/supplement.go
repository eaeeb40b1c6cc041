package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Supplement is the parsed supplement file: extra per-schema text plus
// description overrides applied during resolution.
type Supplement struct {
	Schemas map[string]SchemaText `yaml:"schemas"`

	DescriptionOverrides     map[string]string `yaml:"description_overrides"`
	FullDescriptionOverrides map[string]string `yaml:"fulldescription_overrides"`

	SchemaOverrides map[string]OverrideSet `yaml:"schema_overrides"`
}

// SchemaText is the supplemental text for one schema. The map key may
// carry a major version suffix, e.g. "Drive_1".
type SchemaText struct {
	Description string `yaml:"description"`
	Intro       string `yaml:"intro"`
	JSONPayload string `yaml:"json_payload"`
}

// OverrideSet holds overrides scoped to a single schema.
type OverrideSet struct {
	DescriptionOverrides     map[string]string `yaml:"description_overrides"`
	FullDescriptionOverrides map[string]string `yaml:"fulldescription_overrides"`
}

// LoadSupplement reads a YAML supplement file. An empty path yields an
// empty supplement.
func LoadSupplement(path string) (*Supplement, error) {
	if path == "" {
		return &Supplement{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read supplement file: %w", err)
	}
	var supp Supplement
	if err := yaml.Unmarshal(data, &supp); err != nil {
		return nil, fmt.Errorf("failed to parse supplement file %s: %w", path, err)
	}
	return &supp, nil
}
