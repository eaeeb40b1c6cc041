package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverrides_ApplyGlobal(t *testing.T) {
	o := &Overrides{
		PropertyDescriptions: map[string]string{"Status": "The status."},
	}
	def := &Definition{PropName: "Status", Description: "old", LongDescription: "old long"}

	out := o.Apply(def, "", "")
	assert.Equal(t, "The status.", out.Description)
	assert.Equal(t, "The status.", out.LongDescription)
	assert.False(t, out.FullDescriptionOverride)

	// Input untouched
	assert.Equal(t, "old", def.Description)
}

func TestOverrides_ApplyFullOverride(t *testing.T) {
	o := &Overrides{
		PropertyFullDescriptions: map[string]string{"Oem": "OEM extension point."},
	}
	def := &Definition{PropName: "Oem", Description: "old"}

	out := o.Apply(def, "", "Oem")
	assert.Equal(t, "OEM extension point.", out.Description)
	assert.True(t, out.FullDescriptionOverride)
}

func TestOverrides_PerSchemaWins(t *testing.T) {
	o := &Overrides{
		PerSchema: map[string]SchemaOverrides{
			"Drive": {DescriptionOverrides: map[string]string{"Status": "drive-specific"}},
		},
		PropertyDescriptions: map[string]string{"Status": "global"},
		UnitsTranslation:     map[string]string{"By": "bytes"},
	}
	def := &Definition{PropName: "Status", SchemaName: "Drive", Units: "By"}

	out := o.Apply(def, "Drive", "Status")
	assert.Equal(t, "drive-specific", out.Description)
	// A per-schema hit returns before units translation runs
	assert.Equal(t, "By", out.Units)

	out = o.Apply(def, "Other", "Status")
	assert.Equal(t, "global", out.Description)
	assert.Equal(t, "bytes", out.Units)
}

func TestOverrides_ApplyIdempotent(t *testing.T) {
	o := &Overrides{
		PropertyDescriptions: map[string]string{"Status": "The status."},
		UnitsTranslation:     map[string]string{"By": "bytes"},
	}
	def := &Definition{PropName: "Status", Description: "old", Units: "By"}

	once := o.Apply(def, "", "")
	twice := o.Apply(once, "", "")
	assert.Equal(t, once, twice)
}

func TestOverrides_NilReceiver(t *testing.T) {
	var o *Overrides
	def := &Definition{PropName: "X", Description: "keep"}

	out := o.Apply(def, "", "")
	assert.Equal(t, "keep", out.Description)
	assert.NotSame(t, def, out)
}

func TestOverrides_ResetsStaleFlag(t *testing.T) {
	var o *Overrides
	def := &Definition{PropName: "X", FullDescriptionOverride: true}

	out := o.Apply(def, "", "")
	assert.False(t, out.FullDescriptionOverride)
}
