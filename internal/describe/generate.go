package describe

import (
	"strings"

	"go.uber.org/zap"

	"github.com/refdoc-tools/refdoc/internal/profile"
	"github.com/refdoc-tools/refdoc/internal/schema"
)

// SchemaSupplement is supplemental text for one schema section, keyed
// by schema name or by "Name_MAJOR" for a specific major version.
type SchemaSupplement struct {
	Description string
	Intro       string
	JSONPayload string
}

// GenerateOptions adjust the full-document pass.
type GenerateOptions struct {
	OmitVersionInHeaders bool

	ExcludedProperties     []string
	ExcludedByMatch        []string
	ExcludedSchemas        []string
	ExcludedSchemasByMatch []string

	Supplement map[string]SchemaSupplement
}

// Generator produces the whole document: one section per documented
// schema, the common-properties sections, and the collections table.
type Generator struct {
	index     *schema.DirIndex
	describer *Describer
	profile   *profile.Profile
	opts      GenerateOptions
	log       *zap.Logger
}

// NewGenerator wires a generator around a describer.
func NewGenerator(index *schema.DirIndex, describer *Describer, prof *profile.Profile, opts GenerateOptions, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{index: index, describer: describer, profile: prof, opts: opts, log: log}
}

// Generate runs the full pass, handing each section to the renderer,
// and returns the assembled document.
func (g *Generator) Generate(r Renderer) (string, error) {
	for _, info := range g.index.Documented() {
		if g.skipSchema(info.Name) {
			continue
		}
		section := g.describeSchema(info)
		if err := r.Section(section); err != nil {
			return "", err
		}
	}

	if err := g.commonProperties(r); err != nil {
		return "", err
	}

	if entries := g.collections(); len(entries) > 0 {
		if err := r.CollectionsTable(entries); err != nil {
			return "", err
		}
	}
	return r.Document()
}

// describeSchema builds the section for one documented schema.
func (g *Generator) describeSchema(info *schema.Info) *Section {
	root := info.Root.Clone()
	root.FromSchemaRef = info.Ref
	root.ParentRequires = root.Required
	root.ParentRequiresOnCreate = root.RequiredOnCreate
	g.pruneExcluded(root)

	res := g.describer.DescribeObject(info.Ref, root, nil, false)

	title := info.Name
	if !g.opts.OmitVersionInHeaders && info.Version != "" {
		title = info.Name + " " + schema.TruncateVersion(info.Version, 2)
	}

	section := &Section{
		Title:        title,
		Anchor:       info.Name,
		Description:  g.schemaDescription(info, root),
		URIs:         info.URIs,
		Rows:         res.Rows,
		Details:      sortedDetails(res.Details),
		Actions:      res.ActionDetails,
		Conditionals: sortedConditionals(res.Conditionals),
	}
	if supp, ok := g.supplementFor(info.Name, info.Version); ok {
		section.JSONPayload = supp.JSONPayload
	}
	return section
}

// schemaDescription picks the section description: schema text, then
// supplement text, then — overriding everything — the profile Purpose.
func (g *Generator) schemaDescription(info *schema.Info, root *schema.Definition) string {
	description := root.Description
	if g.describer.opts.Normative && root.LongDescription != "" {
		description = root.LongDescription
	}

	if supp, ok := g.supplementFor(info.Name, info.Version); ok {
		switch {
		case supp.Description != "" && supp.Intro != "":
			description = supp.Description + "\n\n" + supp.Intro
		case supp.Description != "":
			description = supp.Description
		case supp.Intro != "":
			description = supp.Intro
		}
	}

	if res := g.profile.Resource(info.Name); res != nil && res.Purpose != "" {
		description = res.Purpose
	}
	return description
}

// commonProperties emits one section per registered common object.
// Resolution of these sections may register further common objects;
// the pass works over a snapshot.
func (g *Generator) commonProperties(r Renderer) error {
	pool := g.describer.resolver.Pool()
	if pool == nil {
		return nil
	}
	for _, entry := range pool.Sorted() {
		def := entry.Def
		if g.skipSchema(def.PropName) {
			continue
		}

		obj := def.Clone()
		obj.ParentRequires = obj.Required
		obj.ParentRequiresOnCreate = obj.RequiredOnCreate
		res := g.describer.DescribeObject(def.FromSchemaRef, obj, nil, false)

		version := schema.RefVersion(def.RefURI)
		anchor := "common-properties-" + def.PropName
		if version != "" {
			anchor += "_v" + version
		}
		section := &Section{
			Title:        def.PropName,
			Anchor:       anchor,
			Description:  g.describer.propertyDescription(obj),
			Rows:         res.Rows,
			Details:      sortedDetails(res.Details),
			Actions:      res.ActionDetails,
			Conditionals: sortedConditionals(res.Conditionals),
		}
		if supp, ok := g.supplementFor(def.PropName, version); ok {
			section.JSONPayload = supp.JSONPayload
			switch {
			case supp.Description != "" && supp.Intro != "":
				section.Description = supp.Description + "\n\n" + supp.Intro
			case supp.Description != "":
				section.Description = supp.Description
			case supp.Intro != "":
				section.Description = supp.Intro
			}
		}
		if err := r.Section(section); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) collections() []CollectionEntry {
	byName := g.index.Collections()
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sortFold(names)
	entries := make([]CollectionEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, CollectionEntry{Name: name, URIs: byName[name]})
	}
	return entries
}

// skipSchema decides whether a schema section is suppressed. Schemas
// named by the profile always appear in profile mode.
func (g *Generator) skipSchema(name string) bool {
	if g.describer.opts.Mode != ModeOff && g.profile.Resource(name) != nil {
		return false
	}
	if containsString(g.opts.ExcludedSchemas, name) {
		return true
	}
	for _, pattern := range g.opts.ExcludedSchemasByMatch {
		if pattern != "" && strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// pruneExcluded drops configured top-level property names before the
// descent; annotation exclusions are handled at every level by the
// describer itself.
func (g *Generator) pruneExcluded(root *schema.Definition) {
	for name := range root.Properties {
		if containsString(g.opts.ExcludedProperties, name) {
			delete(root.Properties, name)
			continue
		}
		for _, pattern := range g.opts.ExcludedByMatch {
			if pattern != "" && strings.Contains(name, pattern) {
				delete(root.Properties, name)
				break
			}
		}
	}
}

func (g *Generator) supplementFor(name, version string) (SchemaSupplement, bool) {
	if g.opts.Supplement == nil {
		return SchemaSupplement{}, false
	}
	if version != "" {
		major := strings.SplitN(version, ".", 2)[0]
		if supp, ok := g.opts.Supplement[name+"_"+major]; ok {
			return supp, true
		}
	}
	supp, ok := g.opts.Supplement[name]
	return supp, ok
}

func sortedDetails(details map[string]*Detail) []*Detail {
	names := make([]string, 0, len(details))
	for name := range details {
		names = append(names, name)
	}
	sortFold(names)
	out := make([]*Detail, 0, len(names))
	for _, name := range names {
		out = append(out, details[name])
	}
	return out
}

func sortedConditionals(conds map[string]*ConditionalDetail) []*ConditionalDetail {
	names := make([]string, 0, len(conds))
	for name := range conds {
		names = append(names, name)
	}
	sortFold(names)
	out := make([]*ConditionalDetail, 0, len(names))
	for _, name := range names {
		out = append(out, conds[name])
	}
	return out
}
