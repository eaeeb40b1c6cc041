// Package describe walks resolved schema definitions and turns them
// into a normalized tree of property rows, detail blocks, and action
// blocks. It decides content and structure only; all markup is left to
// a Renderer.
package describe

import (
	"github.com/refdoc-tools/refdoc/internal/profile"
)

// Property is the engine's output unit: one fully resolved,
// version-annotated property row, possibly with nested rows for
// embedded objects and array items.
type Property struct {
	Name        string
	Types       []string
	Nullable    bool
	Units       string
	Description string
	AddLinkText string
	Pattern     string
	ReadOnly    bool

	IsObject       bool
	IsArray        bool
	ArrayOfObjects bool
	// ItemList names the element type when an array of simple items is
	// collapsed into this single row.
	ItemList string
	Children []*Property
	Items    []*Property

	HasDetails       bool
	HasActionDetails bool

	Required          bool
	RequiredOnCreate  bool
	RequiredParameter bool

	Version               string
	Deprecated            string
	DeprecatedExplanation string

	InProfile         bool
	ProfileReadReq    string
	ProfileWriteReq   string
	ProfileMinCount   int
	ProfilePurpose    string
	ProfileValues     []string
	ProfileComparison string
}

// Detail is a property-details block, typically enum documentation.
type Detail struct {
	Name             string
	Anchor           string
	Types            []string
	Description      string
	Enum             []string
	EnumDescriptions map[string]string
	Profile          *profile.Requirement
}

// ActionDetail documents one action and its parameters.
type ActionDetail struct {
	Name        string
	Description string
	Parameters  []*Property
}

// ConditionalDetail carries a property's conditional profile
// requirements, base requirement first.
type ConditionalDetail struct {
	PropName     string
	Anchor       string
	Requirements []*profile.ConditionalRequirement
}

// Result accumulates the output of one object or array descent.
type Result struct {
	Rows          []*Property
	Details       map[string]*Detail
	ActionDetails []*ActionDetail
	Conditionals  map[string]*ConditionalDetail
}

func newResult() *Result {
	return &Result{
		Details:      make(map[string]*Detail),
		Conditionals: make(map[string]*ConditionalDetail),
	}
}

func (r *Result) absorb(other *Result) {
	r.Rows = append(r.Rows, other.Rows...)
	r.ActionDetails = append(r.ActionDetails, other.ActionDetails...)
	for k, v := range other.Details {
		r.Details[k] = v
	}
	for k, v := range other.Conditionals {
		r.Conditionals[k] = v
	}
}

// Section is everything the renderer receives for one top-level schema.
type Section struct {
	Title        string
	Anchor       string
	Description  string
	URIs         []string
	JSONPayload  string
	Rows         []*Property
	Details      []*Detail
	Actions      []*ActionDetail
	Conditionals []*ConditionalDetail
}

// CollectionEntry is one row of the collections summary table.
type CollectionEntry struct {
	Name string
	URIs []string
}

// Renderer consumes already-decided content. It is the only boundary
// where output syntax exists.
type Renderer interface {
	Section(s *Section) error
	CollectionsTable(entries []CollectionEntry) error
	Document() (string, error)
}
