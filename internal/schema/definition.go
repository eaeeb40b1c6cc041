// Package schema models the loaded schema corpus: definitions, their
// version metadata, and the index used to resolve references between
// them. Loaded definitions are shared and must never be mutated;
// callers that need to edit one work on a Clone.
package schema

import (
	"fmt"

	"github.com/goccy/go-json"
)

// TypeSet holds the "type" keyword, which schema documents write either
// as a single string or as a list of strings.
type TypeSet []string

// UnmarshalJSON accepts both the scalar and the list form.
func (t *TypeSet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TypeSet{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("type must be a string or list of strings: %w", err)
	}
	*t = TypeSet(many)
	return nil
}

// Contains reports whether tag is one of the declared types.
func (t TypeSet) Contains(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// Definition is a single node from the schema corpus. Fields with JSON
// tags come from the document; the remainder are annotations attached
// by the index and the resolver.
type Definition struct {
	Type                 TypeSet                `json:"type,omitempty"`
	Properties           map[string]*Definition `json:"properties,omitempty"`
	Items                *Definition            `json:"items,omitempty"`
	Ref                  string                 `json:"$ref,omitempty"`
	AnyOf                []*Definition          `json:"anyOf,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	EnumDescriptions     map[string]string      `json:"enumDescriptions,omitempty"`
	EnumLongDescriptions map[string]string      `json:"enumLongDescriptions,omitempty"`
	Description          string                 `json:"description,omitempty"`
	LongDescription      string                 `json:"longDescription,omitempty"`
	Pattern              string                 `json:"pattern,omitempty"`
	Units                string                 `json:"units,omitempty"`
	ReadOnly             bool                   `json:"readonly,omitempty"`
	Required             []string               `json:"required,omitempty"`
	RequiredOnCreate     []string               `json:"requiredOnCreate,omitempty"`
	Parameters           map[string]*Definition `json:"parameters,omitempty"`
	RequiredParameter    bool                   `json:"requiredParameter,omitempty"`
	VersionAdded         string                 `json:"versionAdded,omitempty"`
	VersionDeprecated    string                 `json:"versionDeprecated,omitempty"`
	DeprecatedReason     string                 `json:"deprecated,omitempty"`

	// Annotations. The index fills the identity fields when a
	// definition is returned from a reference lookup; the resolver
	// fills the rest.
	PropName      string    `json:"-"`
	SchemaName    string    `json:"-"`
	FromSchemaRef string    `json:"-"`
	RefURI        string    `json:"-"`
	Meta          *Metadata `json:"-"`

	AddLinkText             string `json:"-"`
	FullDescriptionOverride bool   `json:"-"`

	PropRequired           bool     `json:"-"`
	PropRequiredOnCreate   bool     `json:"-"`
	ParentRequires         []string `json:"-"`
	ParentRequiresOnCreate []string `json:"-"`
}

// IsObject reports whether the definition declares the object type.
func (d *Definition) IsObject() bool { return d.Type.Contains("object") }

// IsArray reports whether the definition declares the array type.
func (d *Definition) IsArray() bool { return d.Type.Contains("array") }

// HasStructure reports whether the definition carries child properties.
func (d *Definition) HasStructure() bool { return len(d.Properties) > 0 }

// Clone returns a deep copy. The resolver and override code edit
// clones; the corpus as loaded stays untouched.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	out := *d
	out.Type = append(TypeSet(nil), d.Type...)
	out.Enum = append([]string(nil), d.Enum...)
	out.Required = append([]string(nil), d.Required...)
	out.RequiredOnCreate = append([]string(nil), d.RequiredOnCreate...)
	out.ParentRequires = append([]string(nil), d.ParentRequires...)
	out.ParentRequiresOnCreate = append([]string(nil), d.ParentRequiresOnCreate...)
	out.EnumDescriptions = cloneStringMap(d.EnumDescriptions)
	out.EnumLongDescriptions = cloneStringMap(d.EnumLongDescriptions)
	if d.Properties != nil {
		out.Properties = make(map[string]*Definition, len(d.Properties))
		for k, v := range d.Properties {
			out.Properties[k] = v.Clone()
		}
	}
	if d.Parameters != nil {
		out.Parameters = make(map[string]*Definition, len(d.Parameters))
		for k, v := range d.Parameters {
			out.Parameters[k] = v.Clone()
		}
	}
	out.Items = d.Items.Clone()
	if d.AnyOf != nil {
		out.AnyOf = make([]*Definition, len(d.AnyOf))
		for i, v := range d.AnyOf {
			out.AnyOf[i] = v.Clone()
		}
	}
	out.Meta = d.Meta.Clone()
	return &out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
