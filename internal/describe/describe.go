package describe

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/refdoc-tools/refdoc/internal/profile"
	"github.com/refdoc-tools/refdoc/internal/resolve"
	"github.com/refdoc-tools/refdoc/internal/schema"
)

// Mode is the conformance-profile rendering mode.
type Mode string

const (
	ModeOff    Mode = "off"
	ModeNormal Mode = "normal"
	ModeTerse  Mode = "terse"
)

// Options adjust the descent.
type Options struct {
	Mode      Mode
	Normative bool

	// CollapseSimpleArrays combines an array and its structureless
	// item type into one row.
	CollapseSimpleArrays bool

	ExcludedProperties         []string
	ExcludedByMatch            []string
	ExcludedAnnotations        []string
	ExcludedAnnotationsByMatch []string
}

// Describer drives the recursive walk over objects and arrays,
// resolving each property, filtering by profile, and accumulating rows
// and detail blocks bottom-up.
type Describer struct {
	index     schema.Index
	resolver  *resolve.Resolver
	overrides *schema.Overrides
	profile   *profile.Profile
	opts      Options
	log       *zap.Logger
}

// NewDescriber wires a describer. profile may be nil when no
// conformance profile is in play; log may be nil.
func NewDescriber(index schema.Index, resolver *resolve.Resolver, overrides *schema.Overrides, prof *profile.Profile, opts Options, log *zap.Logger) *Describer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Describer{
		index:     index,
		resolver:  resolver,
		overrides: overrides,
		profile:   prof,
		opts:      opts,
		log:       log,
	}
}

// DescribeObject walks an object definition's properties, producing one
// row per included child. Rows come back in case-insensitive name
// order. An action object restricts children to action-marker names and
// documents parameters instead of ordinary properties.
func (d *Describer) DescribeObject(schemaRef string, def *schema.Definition, path []string, isAction bool) *Result {
	res := newResult()
	props := def.Properties
	if len(props) == 0 {
		return res
	}

	contextMeta := def.Meta
	if def.FromSchemaRef != "" {
		schemaRef = def.FromSchemaRef
	}
	schemaName := d.index.SchemaName(schemaRef)

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	names = excludeNames(names, d.opts.ExcludedAnnotations, d.opts.ExcludedAnnotationsByMatch)

	if d.opts.Mode == ModeTerse {
		section := profile.PropertyRequirements
		if len(path) > 0 && path[0] == "Actions" {
			section = profile.ActionRequirements
		}
		frag, _ := d.profile.Lookup(schemaName, path, section)
		names = profile.FilterNames(names, frag, isAction, true)
	}

	if isAction {
		kept := names[:0]
		for _, name := range names {
			if strings.HasPrefix(name, "#") {
				kept = append(kept, name)
			}
		}
		names = kept
	}

	for _, name := range names {
		ov := d.overrides.Apply(props[name], schemaName, name)
		ov.PropRequired = containsString(def.ParentRequires, name)
		ov.PropRequiredOnCreate = containsString(def.ParentRequiresOnCreate, name)

		meta := schema.MergeChildMetadata(name, ov.Meta, contextMeta)
		infos := d.resolver.Resolve(schemaRef, ov, meta)
		if len(infos) == 0 {
			// Unresolvable or malformed; already logged, keep going.
			continue
		}
		meta = schema.MergeMetadata(infos[0].Meta, meta)
		if isAction {
			// Action objects carry only boilerplate properties; the
			// parameters are what gets documented.
			infos[0].Properties = nil
		}
		infos[0].Meta = meta

		prop, art := d.parseProperty(schemaRef, name, infos, path, isAction)
		if prop == nil {
			continue
		}
		res.Rows = append(res.Rows, prop)
		res.absorbBlocks(art)
	}
	return res
}

// DescribeItems walks an array's resolved item definitions: objects
// recurse through DescribeObject, everything else becomes a plain item
// row. Nested arrays recurse naturally through property parsing.
func (d *Describer) DescribeItems(schemaRef string, items []*schema.Definition, path []string) *Result {
	res := newResult()
	for _, item := range items {
		if item.HasStructure() {
			res.absorb(d.DescribeObject(schemaRef, item, path, false))
		} else {
			res.absorb(d.describeNonObject(schemaRef, item, path))
		}
	}
	return res
}

// describeNonObject emits a row for a definition without properties.
func (d *Describer) describeNonObject(schemaRef string, def *schema.Definition, path []string) *Result {
	res := newResult()
	infos := d.resolver.Resolve(schemaRef, def, nil)
	if len(infos) == 0 {
		return res
	}
	prop, art := d.parseProperty(schemaRef, def.PropName, infos, path, false)
	if prop != nil {
		res.Rows = append(res.Rows, prop)
		res.absorbBlocks(art)
	}
	return res
}

// parseProperty interprets the resolved definitions of one property. A
// single definition parses directly; several (a tagged union) merge
// into one row with combined type tags and descriptions.
func (d *Describer) parseProperty(schemaRef string, name string, infos []*schema.Definition, path []string, withinAction bool) (*Property, *Result) {
	if len(infos) == 0 {
		return nil, newResult()
	}
	if len(infos) == 1 {
		return d.parseSingle(schemaRef, name, infos[0], path, withinAction)
	}

	art := newResult()
	var parts []*Property
	nullable := false
	for _, info := range infos {
		p, a := d.parseSingle(schemaRef, name, info, path, withinAction)
		art.absorbBlocks(a)
		if p == nil {
			continue
		}
		if p.Nullable {
			nullable = true
		}
		if len(p.Types) == 0 && p.Nullable {
			// A bare null alternative contributes only nullability.
			continue
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return nil, art
	}

	first := parts[0]
	prop := &Property{
		Name:                  name,
		Nullable:              nullable,
		Units:                 first.Units,
		ReadOnly:              first.ReadOnly,
		Required:              first.Required,
		RequiredOnCreate:      first.RequiredOnCreate,
		RequiredParameter:     first.RequiredParameter,
		Version:               first.Version,
		Deprecated:            first.Deprecated,
		DeprecatedExplanation: first.DeprecatedExplanation,
	}
	var descrs, patterns []string
	for _, p := range parts {
		prop.Types = appendUnique(prop.Types, p.Types...)
		descrs = appendUnique(descrs, p.Description)
		patterns = appendUnique(patterns, p.Pattern)
		prop.Children = append(prop.Children, p.Children...)
		prop.Items = append(prop.Items, p.Items...)
		prop.IsObject = prop.IsObject || p.IsObject
		prop.IsArray = prop.IsArray || p.IsArray
		prop.ArrayOfObjects = prop.ArrayOfObjects || p.ArrayOfObjects
		prop.HasDetails = prop.HasDetails || p.HasDetails
		prop.HasActionDetails = prop.HasActionDetails || p.HasActionDetails
		if prop.AddLinkText == "" {
			prop.AddLinkText = p.AddLinkText
		}
	}
	prop.Description = strings.Join(descrs, " ")
	prop.Pattern = strings.Join(patterns, "\n")

	d.annotateProfile(prop, art, schemaRef, name, path, withinAction)
	return prop, art
}

// parseSingle interprets one concrete definition into a row, recursing
// into embedded objects and array items.
func (d *Describer) parseSingle(schemaRef string, name string, info *schema.Definition, path []string, withinAction bool) (*Property, *Result) {
	art := newResult()
	isAction := name == "Actions"

	info = d.overrides.Apply(info, "", "")

	types := make([]string, 0, len(info.Type))
	hasNull := false
	for _, t := range info.Type {
		if t == "null" {
			hasNull = true
		} else {
			types = append(types, t)
		}
	}

	descr := d.propertyDescription(info)

	prop := &Property{
		Name:              name,
		Types:             types,
		Nullable:          hasNull,
		Units:             info.Units,
		Description:       descr,
		AddLinkText:       info.AddLinkText,
		Pattern:           info.Pattern,
		ReadOnly:          info.ReadOnly,
		IsObject:          info.IsObject(),
		IsArray:           info.IsArray(),
		Required:          info.PropRequired,
		RequiredOnCreate:  info.PropRequiredOnCreate,
		RequiredParameter: info.RequiredParameter,
	}
	if meta := info.Meta; meta != nil {
		if meta.Version != "" && !meta.Unversioned {
			prop.Version = schema.TruncateVersion(meta.Version, 2)
		}
		if meta.Deprecated != "" {
			prop.Deprecated = schema.TruncateVersion(meta.Deprecated, 2)
			prop.DeprecatedExplanation = meta.DeprecatedExplanation
		}
	}

	if withinAction {
		prop.HasActionDetails = true
		d.describeAction(schemaRef, name, descr, info, path, prop, art)
	}

	if len(info.Enum) > 0 {
		prop.HasDetails = true
		enumDescs := info.EnumDescriptions
		if d.opts.Normative && info.EnumLongDescriptions != nil {
			enumDescs = info.EnumLongDescriptions
		}
		frag, _ := d.lookupFragment(schemaRef, name, path, withinAction)
		art.Details[name] = &Detail{
			Name:             name,
			Anchor:           schemaRef + "|details|" + name,
			Types:            types,
			Description:      descr,
			Enum:             info.Enum,
			EnumDescriptions: enumDescs,
			Profile:          frag,
		}
	}

	if prop.IsObject {
		info.ParentRequires = info.Required
		info.ParentRequiresOnCreate = info.RequiredOnCreate
		sub := d.DescribeObject(schemaRef, info, appendPath(path, name), isAction)
		prop.Children = sub.Rows
		art.absorbBlocks(sub)
	}

	if prop.IsArray {
		if promoted := d.describeArrayItems(schemaRef, name, info, descr, prop, art, path, withinAction); promoted != nil {
			return promoted, art
		}
	}

	d.annotateProfile(prop, art, schemaRef, name, path, withinAction)
	return prop, art
}

// describeArrayItems fills in a row's item rows. When the items are a
// single simple type and collapsing is enabled, it returns a combined
// replacement row instead: the array and its item type described as one.
func (d *Describer) describeArrayItems(schemaRef, name string, info *schema.Definition, descr string, prop *Property, art *Result, path []string, withinAction bool) *Property {
	item := info.Items
	if item == nil {
		return nil
	}
	newPath := appendPath(path, name)

	// An inline item with a bare type and no structure needs no
	// resolution; it is listed alongside the array.
	if len(item.Type) > 0 && !item.HasStructure() && item.Ref == "" && len(item.AnyOf) == 0 {
		prop.ItemList = item.Type[0]
		sub := d.describeNonObject(schemaRef, item, newPath)
		prop.Items = sub.Rows
		art.absorbBlocks(sub)
		return nil
	}

	items := d.resolver.Resolve(schemaRef, item, info.Meta)
	if len(items) == 0 {
		return nil
	}
	prop.ArrayOfObjects = true

	simple := len(items) == 1 && len(items[0].Type) > 0 && !items[0].HasStructure()
	if !simple {
		sub := d.DescribeItems(schemaRef, items, newPath)
		prop.Items = sub.Rows
		art.absorbBlocks(sub)
		return nil
	}

	if !d.opts.CollapseSimpleArrays {
		sub := d.describeNonObject(schemaRef, items[0], newPath)
		prop.Items = sub.Rows
		art.absorbBlocks(sub)
		return nil
	}

	// Combine the array and its simple item type into a single row.
	combined := items[0]
	combined.PropName = name
	combined.ReadOnly = info.ReadOnly
	if d.opts.Normative && combined.LongDescription != "" {
		combined.LongDescription = joinDescriptions(descr, combined.LongDescription)
	} else if combined.Description != "" {
		combined.Description = joinDescriptions(descr, combined.Description)
	} else {
		combined.Description = descr
	}
	if info.FullDescriptionOverride {
		combined.FullDescriptionOverride = true
	}

	promoted, a := d.parseSingle(schemaRef, name, combined, newPath, withinAction)
	art.absorbBlocks(a)
	if promoted == nil {
		return nil
	}
	promoted.IsArray = true
	if len(promoted.Types) > 0 {
		promoted.ItemList = promoted.Types[0]
	}
	promoted.Nullable = promoted.Nullable || prop.Nullable
	promoted.Required = prop.Required
	promoted.RequiredOnCreate = prop.RequiredOnCreate
	promoted.RequiredParameter = prop.RequiredParameter
	if promoted.Version == "" {
		promoted.Version = prop.Version
	}
	return promoted
}

// describeAction expands an action's parameters into an action detail
// block, folding any parameter enum details into the property details.
func (d *Describer) describeAction(schemaRef, name, descr string, info *schema.Definition, path []string, prop *Property, art *Result) {
	actionName := name
	if strings.HasPrefix(name, "#") {
		if i := strings.LastIndex(name, "."); i >= 0 {
			actionName = name[i+1:]
		}
	}
	newPath := appendPath(path, actionName)

	paramNames := make([]string, 0, len(info.Parameters))
	for paramName := range info.Parameters {
		paramNames = append(paramNames, paramName)
	}
	sortFold(paramNames)

	var params []*Property
	for _, paramName := range paramNames {
		resolved := d.resolver.Resolve(schemaRef, info.Parameters[paramName], nil)
		if len(resolved) == 0 {
			continue
		}
		p, a := d.parseProperty(schemaRef, paramName, resolved, newPath, false)
		art.absorbBlocks(a)
		if p != nil {
			params = append(params, p)
		}
	}
	if len(art.Details) > 0 {
		prop.HasDetails = true
	}
	art.ActionDetails = append(art.ActionDetails, &ActionDetail{
		Name:        actionName,
		Description: descr,
		Parameters:  params,
	})
}

// annotateProfile copies the property's profile requirement onto the
// row and records conditional requirements as a detail block.
func (d *Describer) annotateProfile(prop *Property, art *Result, schemaRef, name string, path []string, withinAction bool) {
	frag, ok := d.lookupFragment(schemaRef, name, path, withinAction)
	if !ok || frag == nil {
		return
	}
	prop.InProfile = true
	prop.ProfileReadReq = frag.ReadRequirement
	if prop.ProfileReadReq == "" {
		prop.ProfileReadReq = "Mandatory"
	}
	prop.ProfileWriteReq = frag.WriteRequirement
	prop.ProfileMinCount = frag.MinCount
	prop.ProfilePurpose = frag.Purpose
	if len(frag.Values) > 0 {
		prop.ProfileValues = frag.Values
		prop.ProfileComparison = frag.Comparison
		if prop.ProfileComparison == "" {
			prop.ProfileComparison = "AnyOf"
		}
	}
	if len(frag.ConditionalRequirements) > 0 {
		reqs := make([]*profile.ConditionalRequirement, 0, len(frag.ConditionalRequirements)+1)
		reqs = append(reqs, &profile.ConditionalRequirement{
			BaseRequirement:  true,
			ReadRequirement:  frag.ReadRequirement,
			WriteRequirement: frag.WriteRequirement,
		})
		reqs = append(reqs, frag.ConditionalRequirements...)
		art.Conditionals[name] = &ConditionalDetail{
			PropName:     name,
			Anchor:       schemaRef + "|conditional_reqs|" + name,
			Requirements: reqs,
		}
	}
}

// lookupFragment finds the profile requirement for a property by path.
// Action names match on the bare name after the final dot.
func (d *Describer) lookupFragment(schemaRef, name string, path []string, withinAction bool) (*profile.Requirement, bool) {
	if d.opts.Mode == ModeOff || name == "" || d.profile == nil {
		return nil, false
	}
	briefName := name
	section := profile.PropertyRequirements
	if withinAction {
		section = profile.ActionRequirements
		if strings.HasPrefix(name, "#") {
			if i := strings.LastIndex(name, "."); i >= 0 {
				briefName = name[i+1:]
			}
		}
	}
	return d.profile.Lookup(d.index.SchemaName(schemaRef), appendPath(path, briefName), section)
}

// propertyDescription selects the normative or informal description.
func (d *Describer) propertyDescription(info *schema.Definition) string {
	descr := info.Description
	if d.opts.Normative && info.LongDescription != "" {
		descr = info.LongDescription
	}
	if d.opts.Normative && info.Pattern != "" {
		descr += " Pattern: " + info.Pattern
	}
	return descr
}

// excludeNames strips exact and substring matches, sorting the
// remainder case-insensitively.
func excludeNames(names, exact, byMatch []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if containsString(exact, name) {
			continue
		}
		excluded := false
		for _, pattern := range byMatch {
			if pattern != "" && strings.Contains(name, pattern) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, name)
		}
	}
	sortFold(out)
	return out
}

func (r *Result) absorbBlocks(other *Result) {
	for k, v := range other.Details {
		r.Details[k] = v
	}
	r.ActionDetails = append(r.ActionDetails, other.ActionDetails...)
	for k, v := range other.Conditionals {
		r.Conditionals[k] = v
	}
}

func appendPath(path []string, name string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, name)
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if v != "" && !containsString(list, v) {
			list = append(list, v)
		}
	}
	return list
}

func joinDescriptions(a, b string) string {
	return strings.TrimSpace(strings.TrimSpace(a) + " " + strings.TrimSpace(b))
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
