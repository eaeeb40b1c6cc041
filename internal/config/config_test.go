package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.SchemaDir != "schemas" {
		t.Errorf("expected default schema_dir 'schemas', got %s", cfg.SchemaDir)
	}
	if cfg.Output != "output.md" {
		t.Errorf("expected default output 'output.md', got %s", cfg.Output)
	}
	if cfg.Profile.Mode != ModeOff {
		t.Errorf("expected default profile mode 'off', got %s", cfg.Profile.Mode)
	}
	if !cfg.CombineArrays {
		t.Error("expected combine_multiple_types to default to true")
	}
	if !cfg.CommonObjects {
		t.Error("expected common_objects to default to true")
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `
schema_dir: json-schema
output: docs/reference.md
normative: true
combine_multiple_types: true
profile:
  path: profiles/basic.json
  mode: terse
common_objects: false
excludes:
  properties: [Oem]
  annotations_by_match: ["@odata."]
units_translation:
  By: bytes
`
	path := filepath.Join(tmpDir, "refdoc.yml")
	os.WriteFile(path, []byte(configContent), 0644)
	os.Mkdir(filepath.Join(tmpDir, "json-schema"), 0755)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	// Paths resolve relative to the config file
	if cfg.SchemaDir != filepath.Join(tmpDir, "json-schema") {
		t.Errorf("expected schema_dir under %s, got %s", tmpDir, cfg.SchemaDir)
	}
	if cfg.Profile.Path != filepath.Join(tmpDir, "profiles/basic.json") {
		t.Errorf("unexpected profile path: %s", cfg.Profile.Path)
	}
	if cfg.Profile.Mode != ModeTerse {
		t.Errorf("expected profile mode 'terse', got %s", cfg.Profile.Mode)
	}
	if !cfg.Normative {
		t.Error("expected normative to be true")
	}
	if !cfg.CombineArrays {
		t.Error("expected combine_multiple_types to be true")
	}
	if cfg.CommonObjects {
		t.Error("expected common_objects to be disabled")
	}
	if len(cfg.Excludes.Properties) != 1 || cfg.Excludes.Properties[0] != "Oem" {
		t.Errorf("unexpected excluded properties: %v", cfg.Excludes.Properties)
	}
	if cfg.UnitsTranslation["By"] != "bytes" {
		t.Errorf("unexpected units translation: %v", cfg.UnitsTranslation)
	}
}

func TestLoad_InvalidProfileMode(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "refdoc.yml")
	os.WriteFile(path, []byte("profile:\n  path: p.json\n  mode: loud\n"), 0644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid profile mode")
	}
}

func TestLoad_ProfileModeRequiresPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "refdoc.yml")
	os.WriteFile(path, []byte("profile:\n  mode: terse\n"), 0644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for terse mode without profile path")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadSupplement(t *testing.T) {
	content := `
schemas:
  Drive:
    description: Replacement description.
    intro: Extra intro text.
    json_payload: |
      {"Name": "Disk 1"}
description_overrides:
  Oem: OEM extension object.
fulldescription_overrides:
  Id: The resource identifier.
schema_overrides:
  Drive:
    description_overrides:
      Status: Drive-specific status text.
`
	path := filepath.Join(t.TempDir(), "supplement.yml")
	os.WriteFile(path, []byte(content), 0644)

	supp, err := LoadSupplement(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if supp.Schemas["Drive"].Description != "Replacement description." {
		t.Errorf("unexpected schema description: %q", supp.Schemas["Drive"].Description)
	}
	if supp.DescriptionOverrides["Oem"] != "OEM extension object." {
		t.Errorf("unexpected description override: %v", supp.DescriptionOverrides)
	}
	if supp.FullDescriptionOverrides["Id"] != "The resource identifier." {
		t.Errorf("unexpected full description override: %v", supp.FullDescriptionOverrides)
	}
	if supp.SchemaOverrides["Drive"].DescriptionOverrides["Status"] != "Drive-specific status text." {
		t.Errorf("unexpected schema override: %v", supp.SchemaOverrides)
	}
}

func TestLoadSupplement_EmptyPath(t *testing.T) {
	supp, err := LoadSupplement("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(supp.Schemas) != 0 {
		t.Errorf("expected empty supplement, got %v", supp.Schemas)
	}
}
