package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const driveSchema = `{
	"title": "Drive",
	"uris": ["/redfish/v1/Systems/{SystemId}/Drives/{DriveId}"],
	"definitions": {
		"Drive": {
			"type": "object",
			"description": "A disk drive.",
			"properties": {
				"Name": {"type": "string", "readonly": true},
				"CapacityBytes": {"type": ["integer", "null"], "versionAdded": "1.1.0"},
				"Status": {"$ref": "Resource.json#/definitions/Status"}
			}
		},
		"MediaType": {
			"type": "string",
			"enum": ["HDD", "SSD"]
		}
	}
}`

const resourceSchema = `{
	"title": "Resource",
	"definitions": {
		"Status": {
			"type": "object",
			"properties": {
				"State": {"type": "string"},
				"Health": {"type": "string"}
			}
		}
	}
}`

func newTestIndex(t *testing.T) *DirIndex {
	t.Helper()
	x := NewDirIndex()
	require.NoError(t, x.AddDocument("Drive.v1_2_0.json", []byte(driveSchema)))
	require.NoError(t, x.AddDocument("Resource.json", []byte(resourceSchema)))
	return x
}

func TestDirIndex_FindByRef(t *testing.T) {
	x := newTestIndex(t)

	def := x.FindByRef("Drive.v1_2_0.json#/definitions/Drive")
	require.NotNil(t, def)
	assert.Equal(t, "Drive", def.PropName)
	assert.Equal(t, "Drive", def.SchemaName)
	assert.Equal(t, "Drive.v1_2_0.json#/definitions/Drive", def.RefURI)
	assert.True(t, def.IsObject())

	// Lookups return copies
	def.Description = "mutated"
	again := x.FindByRef("Drive.v1_2_0.json#/definitions/Drive")
	assert.Equal(t, "A disk drive.", again.Description)

	assert.Nil(t, x.FindByRef("Missing.json#/definitions/Nope"))
	assert.Nil(t, x.FindByRef("Drive.v1_2_0.json#/definitions/Nope"))
}

func TestDirIndex_Metadata(t *testing.T) {
	x := newTestIndex(t)

	def := x.FindByRef("Drive.v1_2_0.json#/definitions/Drive")
	require.NotNil(t, def.Meta)
	assert.Equal(t, "1.2.0", def.Meta.Version)

	// A property's own versionAdded wins over the document version
	require.NotNil(t, def.Meta.Children["CapacityBytes"])
	assert.Equal(t, "1.1.0", def.Meta.Children["CapacityBytes"].Version)
	assert.Equal(t, "1.2.0", def.Meta.Children["Name"].Version)

	status := x.FindByRef("Resource.json#/definitions/Status")
	require.NotNil(t, status.Meta)
	assert.True(t, status.Meta.Unversioned)
}

func TestDirIndex_SchemaName(t *testing.T) {
	x := newTestIndex(t)
	assert.Equal(t, "Drive", x.SchemaName("Drive.v1_2_0.json#/definitions/Drive"))
	assert.Equal(t, "Resource", x.SchemaName("Resource.json#/definitions/Status"))
}

func TestDirIndex_NodeName(t *testing.T) {
	x := newTestIndex(t)
	assert.Equal(t, "Status", x.NodeName("Resource.json#/definitions/Status"))
	assert.Equal(t, "", x.NodeName("Resource.json"))
}

func TestDirIndex_IsDocumented(t *testing.T) {
	x := newTestIndex(t)
	assert.True(t, x.IsDocumented("Drive.v1_2_0.json#/definitions/Drive"))
	// Resource.json has no root "Resource" definition
	assert.False(t, x.IsDocumented("Resource.json#/definitions/Status"))
	assert.False(t, x.IsDocumented("Missing.json#/definitions/X"))
}

func TestDirIndex_Documented(t *testing.T) {
	x := newTestIndex(t)
	require.NoError(t, x.AddDocument("Drive.v1_1_0.json", []byte(driveSchema)))

	infos := x.Documented()
	require.Len(t, infos, 1)
	assert.Equal(t, "Drive", infos[0].Name)
	assert.Equal(t, "1.2.0", infos[0].Version)
	assert.Equal(t, "Drive.v1_2_0.json", infos[0].Ref)
	assert.Equal(t, []string{"/redfish/v1/Systems/{SystemId}/Drives/{DriveId}"}, infos[0].URIs)
}

func TestDirIndex_CollectionOf(t *testing.T) {
	x := newTestIndex(t)
	collection := `{
		"title": "DriveCollection",
		"uris": ["/redfish/v1/Systems/{SystemId}/Drives"],
		"definitions": {
			"DriveCollection": {
				"type": "object",
				"properties": {
					"Members": {"type": "array", "items": {"$ref": "Drive.v1_2_0.json#/definitions/Drive"}}
				}
			}
		}
	}`
	require.NoError(t, x.AddDocument("DriveCollection.json", []byte(collection)))

	// Recognized by naming convention, member resolved to highest version
	assert.Equal(t, "Drive.v1_2_0.json", x.CollectionOf("DriveCollection.json"))
	assert.Equal(t, "", x.CollectionOf("Drive.v1_2_0.json"))

	byName := x.Collections()
	require.Contains(t, byName, "DriveCollection")
	assert.Equal(t, []string{"/redfish/v1/Systems/{SystemId}/Drives"}, byName["DriveCollection"])
}

func TestTypeSet_UnmarshalJSON(t *testing.T) {
	x := NewDirIndex()
	require.NoError(t, x.AddDocument("T.json", []byte(`{
		"definitions": {
			"T": {
				"type": "object",
				"properties": {
					"A": {"type": "string"},
					"B": {"type": ["integer", "null"]}
				}
			}
		}
	}`)))

	def := x.FindByRef("T.json#/definitions/T")
	require.NotNil(t, def)
	assert.Equal(t, TypeSet{"string"}, def.Properties["A"].Type)
	assert.True(t, def.Properties["B"].Type.Contains("null"))
}
