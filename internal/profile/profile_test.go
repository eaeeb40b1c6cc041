package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProfile = `{
	"ProfileName": "BasicInstance",
	"ProfileVersion": "1.0.0",
	"Resources": {
		"Drive": {
			"Purpose": "Every instance must expose basic drive health.",
			"PropertyRequirements": {
				"Status": {
					"PropertyRequirements": {
						"State": {"ReadRequirement": "Mandatory"},
						"Health": {}
					}
				},
				"CapacityBytes": {
					"ReadRequirement": "Recommended",
					"ConditionalRequirements": [
						{
							"SubordinateToResource": ["ComputerSystem", "Storage"],
							"ReadRequirement": "Mandatory"
						}
					]
				}
			},
			"ActionRequirements": {
				"Reset": {
					"ReadRequirement": "Mandatory",
					"Parameters": {
						"ResetType": {"ReadRequirement": "Recommended"}
					}
				}
			}
		}
	}
}`

func writeProfile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleProfile), 0644))
	return path
}

func TestLoad(t *testing.T) {
	p, err := Load(writeProfile(t))
	require.NoError(t, err)
	assert.Equal(t, "BasicInstance", p.Name)
	assert.Equal(t, "1.0.0", p.Version)
	require.NotNil(t, p.Resource("Drive"))
	assert.Nil(t, p.Resource("Chassis"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestProfile_Lookup(t *testing.T) {
	p, err := Load(writeProfile(t))
	require.NoError(t, err)

	// Empty path yields a synthetic node carrying both requirement maps
	root, ok := p.Lookup("Drive", nil, PropertyRequirements)
	require.True(t, ok)
	assert.Len(t, root.PropertyRequirements, 2)
	assert.Len(t, root.ActionRequirements, 1)

	req, ok := p.Lookup("Drive", []string{"Status", "State"}, PropertyRequirements)
	require.True(t, ok)
	assert.Equal(t, "Mandatory", req.ReadRequirement)

	// Present but empty is still present
	req, ok = p.Lookup("Drive", []string{"Status", "Health"}, PropertyRequirements)
	require.True(t, ok)
	assert.Empty(t, req.ReadRequirement)

	_, ok = p.Lookup("Drive", []string{"Status", "Missing"}, PropertyRequirements)
	assert.False(t, ok)

	_, ok = p.Lookup("Chassis", nil, PropertyRequirements)
	assert.False(t, ok)
}

func TestProfile_Lookup_ActionsSegment(t *testing.T) {
	p, err := Load(writeProfile(t))
	require.NoError(t, err)

	// A leading "Actions" switches to the action requirement tree
	req, ok := p.Lookup("Drive", []string{"Actions", "Reset"}, PropertyRequirements)
	require.True(t, ok)
	assert.Equal(t, "Mandatory", req.ReadRequirement)

	// Parameters serve as the next level below an action
	req, ok = p.Lookup("Drive", []string{"Actions", "Reset", "ResetType"}, PropertyRequirements)
	require.True(t, ok)
	assert.Equal(t, "Recommended", req.ReadRequirement)
}

func TestProfile_Lookup_NilProfile(t *testing.T) {
	var p *Profile
	_, ok := p.Lookup("Drive", nil, PropertyRequirements)
	assert.False(t, ok)
	assert.Nil(t, p.Resource("Drive"))
}

func TestFilterNames_NonTerse(t *testing.T) {
	names := []string{"Status", "Id", "Actions"}
	out := FilterNames(names, nil, false, false)
	assert.Equal(t, []string{"Actions", "Id", "Status"}, out)
}

func TestFilterNames_Terse(t *testing.T) {
	p, err := Load(writeProfile(t))
	require.NoError(t, err)
	frag, ok := p.Lookup("Drive", nil, PropertyRequirements)
	require.True(t, ok)

	names := []string{"Status", "Id", "Actions", "CapacityBytes", "Name"}
	out := FilterNames(names, frag, false, true)
	assert.Equal(t, []string{"Actions", "CapacityBytes", "Status"}, out)

	// Nil fragment filters everything
	assert.Nil(t, FilterNames(names, nil, false, true))
}

func TestFilterNames_ActionSuffix(t *testing.T) {
	p, err := Load(writeProfile(t))
	require.NoError(t, err)
	frag, ok := p.Lookup("Drive", nil, PropertyRequirements)
	require.True(t, ok)

	// Namespaced action names match on the bare trailing segment
	names := []string{"#Drive.Reset", "#Drive.SecureErase"}
	out := FilterNames(names, frag, true, true)
	assert.Equal(t, []string{"#Drive.Reset"}, out)
}
