package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdoc-tools/refdoc/internal/config"
)

const thermalSchema = `{
	"title": "Thermal",
	"uris": ["/redfish/v1/Chassis/{ChassisId}/Thermal"],
	"definitions": {
		"Thermal": {
			"type": "object",
			"description": "Thermal readings for a chassis.",
			"properties": {
				"Name": {"type": "string", "readonly": true},
				"FanCount": {"type": ["integer", "null"], "readonly": true},
				"Status": {"$ref": "Resource.json#/definitions/Status"}
			}
		}
	}
}`

const resourceSchema = `{
	"title": "Resource",
	"definitions": {
		"Status": {
			"type": "object",
			"description": "Health state of a resource.",
			"properties": {
				"State": {"type": "string", "readonly": true}
			}
		}
	}
}`

func writeSchemas(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Thermal.v1_1_0.json"), []byte(thermalSchema), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Resource.json"), []byte(resourceSchema), 0644))
	return dir
}

func TestRun(t *testing.T) {
	cfg := &config.Config{
		SchemaDir:     writeSchemas(t),
		Profile:       config.ProfileConfig{Mode: config.ModeOff},
		CommonObjects: true,
	}

	doc, count, err := run(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Contains(t, doc, "## Thermal 1.1\n")
	assert.Contains(t, doc, "Thermal readings for a chassis.")
	assert.Contains(t, doc, "- /redfish/v1/Chassis/*{ChassisId}*/Thermal\n")
	assert.Contains(t, doc, "| **FanCount** | integer (null) | read-only |  |")
	// The shared Status object gets its own section
	assert.Contains(t, doc, "## Status\n")
	assert.Contains(t, doc, "See the Status object for details on this property.")
}

func TestRun_EmptySchemaDir(t *testing.T) {
	cfg := &config.Config{
		SchemaDir: t.TempDir(),
		Profile:   config.ProfileConfig{Mode: config.ModeOff},
	}

	_, _, err := run(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no documented schemas")
}

func TestRun_TerseProfile(t *testing.T) {
	profileJSON := `{
		"ProfileName": "Basic",
		"Resources": {
			"Thermal": {
				"PropertyRequirements": {
					"Status": {"ReadRequirement": "Mandatory"}
				}
			}
		}
	}`
	profilePath := filepath.Join(t.TempDir(), "basic.json")
	require.NoError(t, os.WriteFile(profilePath, []byte(profileJSON), 0644))

	cfg := &config.Config{
		SchemaDir:     writeSchemas(t),
		Profile:       config.ProfileConfig{Mode: config.ModeTerse, Path: profilePath},
		CommonObjects: true,
	}

	doc, _, err := run(cfg, nil)
	require.NoError(t, err)

	assert.Contains(t, doc, "| Property | Type | Requirement | Notes |")
	assert.Contains(t, doc, "**Status**")
	assert.NotContains(t, doc, "**FanCount**")
}
