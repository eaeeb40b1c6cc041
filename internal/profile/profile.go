// Package profile models conformance profiles: externally supplied
// requirement levels for a named subset of schemas, properties, and
// actions. The engine reads profiles, it never writes them.
package profile

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Section selects which requirement tree a lookup walks.
type Section string

const (
	PropertyRequirements Section = "PropertyRequirements"
	ActionRequirements   Section = "ActionRequirements"
)

// Requirement is one node of a profile's requirement tree. Top-level
// resource entries and nested property entries share this shape.
type Requirement struct {
	ReadRequirement         string                    `json:"ReadRequirement,omitempty"`
	WriteRequirement        string                    `json:"WriteRequirement,omitempty"`
	MinCount                int                       `json:"MinCount,omitempty"`
	Purpose                 string                    `json:"Purpose,omitempty"`
	Comparison              string                    `json:"Comparison,omitempty"`
	Values                  []string                  `json:"Values,omitempty"`
	ConditionalRequirements []*ConditionalRequirement `json:"ConditionalRequirements,omitempty"`
	PropertyRequirements    map[string]*Requirement   `json:"PropertyRequirements,omitempty"`
	ActionRequirements      map[string]*Requirement   `json:"ActionRequirements,omitempty"`
	Parameters              map[string]*Requirement   `json:"Parameters,omitempty"`
}

// ConditionalRequirement qualifies a requirement with a condition on
// the resource instance.
type ConditionalRequirement struct {
	BaseRequirement       bool     `json:"BaseRequirement,omitempty"`
	ReadRequirement       string   `json:"ReadRequirement,omitempty"`
	WriteRequirement      string   `json:"WriteRequirement,omitempty"`
	MinCount              int      `json:"MinCount,omitempty"`
	Purpose               string   `json:"Purpose,omitempty"`
	SubordinateToResource []string `json:"SubordinateToResource,omitempty"`
	CompareProperty       string   `json:"CompareProperty,omitempty"`
	CompareType           string   `json:"CompareType,omitempty"`
	CompareValues         []string `json:"CompareValues,omitempty"`
	Comparison            string   `json:"Comparison,omitempty"`
	Values                []string `json:"Values,omitempty"`
}

// Profile is a parsed conformance profile.
type Profile struct {
	Name      string                  `json:"ProfileName,omitempty"`
	Version   string                  `json:"ProfileVersion,omitempty"`
	Resources map[string]*Requirement `json:"Resources"`
}

// Load reads a profile document from disk.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return &p, nil
}

// Resource returns the requirement entry for a schema name, or nil.
func (p *Profile) Resource(name string) *Requirement {
	if p == nil {
		return nil
	}
	return p.Resources[name]
}

// Lookup walks a path of property names below a resource's requirement
// tree. A leading "Actions" path segment switches the walk into the
// action requirements. The boolean distinguishes "not present" from a
// present-but-empty requirement.
func (p *Profile) Lookup(resourceName string, path []string, section Section) (*Requirement, bool) {
	if p == nil {
		return nil, false
	}
	res := p.Resources[resourceName]
	if res == nil {
		return nil, false
	}
	if len(path) > 0 && path[0] == "Actions" {
		section = ActionRequirements
		path = path[1:]
	}

	var reqs map[string]*Requirement
	switch section {
	case ActionRequirements:
		reqs = res.ActionRequirements
	default:
		reqs = res.PropertyRequirements
	}
	if reqs == nil {
		return nil, false
	}

	node := &Requirement{
		PropertyRequirements: res.PropertyRequirements,
		ActionRequirements:   res.ActionRequirements,
	}
	for _, name := range path {
		if name == "" {
			continue
		}
		node = reqs[name]
		if node == nil {
			return nil, false
		}
		reqs = node.PropertyRequirements
		if reqs == nil {
			reqs = node.Parameters
		}
	}
	return node, true
}

// FilterNames narrows names to the profile-relevant subset. In terse
// mode only names keyed in the fragment's property requirements (or
// action requirements, for actions) survive, plus the literal "Actions"
// whenever the fragment declares any action requirements. Action names
// carry a namespaced "#Schema.Name" form; when no exact match exists,
// the bare name after the final dot is matched instead. The result is
// always sorted case-insensitively, filtered or not.
func FilterNames(names []string, frag *Requirement, isAction, terse bool) []string {
	if !terse {
		out := append([]string(nil), names...)
		sortFold(out)
		return out
	}
	if frag == nil {
		return nil
	}

	keyed := frag.PropertyRequirements
	if isAction {
		keyed = frag.ActionRequirements
	}
	wanted := make([]string, 0, len(keyed)+1)
	for name := range keyed {
		wanted = append(wanted, name)
	}
	if len(frag.ActionRequirements) > 0 {
		wanted = append(wanted, "Actions")
	}

	var out []string
	if isAction {
		for _, want := range wanted {
			if containsString(names, want) {
				out = append(out, want)
				continue
			}
			for _, name := range names {
				if strings.HasSuffix(name, "."+want) {
					out = append(out, name)
					break
				}
			}
		}
	} else {
		for _, name := range names {
			if containsString(wanted, name) {
				out = append(out, name)
			}
		}
	}
	sortFold(out)
	return out
}

func sortFold(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
