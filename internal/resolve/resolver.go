// Package resolve implements reference resolution over the schema
// corpus: dereferencing, tagged-union handling, version metadata
// propagation, and resource-link detection. Resolution is best-effort;
// anything unresolvable is logged and skipped, never fatal.
package resolve

import (
	"strings"

	"go.uber.org/zap"

	"github.com/refdoc-tools/refdoc/internal/schema"
)

const idRefSuffix = "#/definitions/idRef"

// maxDepth bounds reference chains. Corpora are acyclic by
// construction, but a corrupt corpus must not hang the run.
const maxDepth = 40

// LinkPropertyName is the synthetic child added to link-shaped objects.
const LinkPropertyName = "Id"

// Options adjust resolution behavior.
type Options struct {
	// CommonObjects enables extraction of shared objects into the
	// common pool instead of inlining them at every reference site.
	CommonObjects bool

	// Overrides are applied to every definition before interpretation.
	Overrides *schema.Overrides

	// ExcludedSchemas and ExcludedSchemasByMatch suppress registration
	// of matching common objects.
	ExcludedSchemas        []string
	ExcludedSchemasByMatch []string
}

// Resolver turns definitions that carry references or tagged unions
// into concrete, fully dereferenced definitions.
type Resolver struct {
	index schema.Index
	pool  *CommonPool
	opts  Options
	log   *zap.Logger
}

// NewResolver creates a resolver. pool must be shared across the whole
// generation run; log may be nil.
func NewResolver(index schema.Index, pool *CommonPool, opts Options, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{index: index, pool: pool, opts: opts, log: log}
}

// Pool returns the common-object pool the resolver registers into.
func (r *Resolver) Pool() *CommonPool { return r.pool }

// Resolve expands def into one or more concrete definitions. A
// definition with neither a reference nor alternatives comes back alone,
// override-applied but otherwise unchanged. An unresolvable input
// yields an empty slice and a logged warning.
func (r *Resolver) Resolve(schemaRef string, def *schema.Definition, contextMeta *schema.Metadata) []*schema.Definition {
	return r.resolve(schemaRef, def, contextMeta, 0)
}

func (r *Resolver) resolve(schemaRef string, def *schema.Definition, contextMeta *schema.Metadata, depth int) []*schema.Definition {
	if depth > maxDepth {
		r.log.Warn("reference resolution exceeded depth limit; skipping property",
			zap.String("schema", schemaRef),
			zap.String("property", def.PropName))
		return nil
	}

	propRef := def.Ref
	anyOf := def.AnyOf

	// A union that includes the well-known id-reference is a plain
	// link; resolve just that reference.
	for _, alt := range anyOf {
		if strings.HasSuffix(alt.Ref, idRefSuffix) {
			propRef = alt.Ref
			anyOf = nil
			break
		}
	}

	switch {
	case propRef != "":
		if strings.HasPrefix(propRef, "#") {
			propRef = schemaRef + propRef
		} else if idref := r.idRefDefinition(propRef); idref != nil {
			// The id-reference shortcut: synthesize the link object
			// instead of dereferencing, keeping any annotations from
			// the referencing site.
			carryParentProps(idref, def)
			return []*schema.Definition{idref}
		}
		return r.resolveRef(schemaRef, def, propRef, contextMeta, depth)

	case anyOf != nil:
		return r.resolveAnyOf(schemaRef, def, anyOf, contextMeta, depth)

	default:
		return []*schema.Definition{r.opts.Overrides.Apply(def, "", "")}
	}
}

// resolveRef handles the direct reference case.
func (r *Resolver) resolveRef(schemaRef string, def *schema.Definition, propRef string, contextMeta *schema.Metadata, depth int) []*schema.Definition {
	refInfo := r.index.FindByRef(propRef)
	if refInfo == nil {
		r.log.Warn("unable to find data for reference",
			zap.String("ref", propRef),
			zap.String("schema", schemaRef))
		return nil
	}

	schemaName := r.index.SchemaName(schemaRef)

	// Version history follows references only within the same schema.
	// The comparison uses the unversioned ref so that all versions of
	// one schema count as the same schema.
	fromSchemaRef := refInfo.FromSchemaRef
	unversioned := schema.UnversionedRef(fromSchemaRef)
	isOtherSchema := fromSchemaRef != "" && schemaRef != fromSchemaRef && schemaRef != unversioned

	var meta *schema.Metadata
	if !isOtherSchema {
		meta = schema.MergeMetadata(def.Meta, refInfo.Meta)
	} else {
		meta = def.Meta
	}
	meta = schema.MergeChildMetadata(r.index.NodeName(propRef), meta, contextMeta)

	isDocumented := r.index.IsDocumented(fromSchemaRef)
	collectionOf := r.index.CollectionOf(fromSchemaRef)
	propName := refInfo.PropName
	isSelfRef := !isOtherSchema && propName == schemaName

	// Collection schemas wrap their membership in a union whose real
	// content is the id-reference.
	if collectionOf != "" && refInfo.AnyOf != nil {
		for _, alt := range refInfo.AnyOf {
			if alt.Ref == "" {
				continue
			}
			if idref := r.idRefDefinition(alt.Ref); idref != nil {
				refInfo = idref
			}
			break
		}
	}

	refInfo = r.opts.Overrides.Apply(refInfo, "", "")

	if refInfo.IsObject() && (isOtherSchema || isSelfRef) {
		refInfo = r.replaceWithLink(def, refInfo, propName, fromSchemaRef, collectionOf, isDocumented, isSelfRef)
	}

	carryParentProps(refInfo, def)
	refInfo.Meta = meta

	if refInfo.Ref != "" || refInfo.AnyOf != nil {
		return r.resolve(schemaRef, refInfo, contextMeta, depth+1)
	}
	return []*schema.Definition{refInfo}
}

// replaceWithLink swaps a referenced resource body for a synthetic link
// description, so that referencing a whole resource does not inline its
// property set. Three shapes: a link to a collection, a link to another
// documented resource, and a reusable common object that is registered
// once and cross-referenced.
func (r *Resolver) replaceWithLink(def, refInfo *schema.Definition, propName, fromSchemaRef, collectionOf string, isDocumented, isSelfRef bool) *schema.Definition {
	description := refInfo.Description
	longDescription := refInfo.LongDescription
	fullOverride := refInfo.FullDescriptionOverride
	pattern := refInfo.Pattern

	var appendRef, linkDetail string

	if collectionOf != "" {
		memberName := r.index.SchemaName(collectionOf)
		appendRef = "Contains a link to a resource."
		linkDetail = "Link to Collection of " + memberName + ". See the " + memberName + " schema for details."
	} else {
		if isDocumented {
			linkDetail = "Link to a " + propName + " resource. See the Links section and the " +
				r.index.SchemaName(fromSchemaRef) + " schema for details."
		}
		if isSelfRef {
			linkDetail = "Link to another " + propName + " resource."
		} else if isDocumented || !r.opts.CommonObjects {
			appendRef = "See the " + r.index.SchemaName(fromSchemaRef) + " schema for details on this property."
		} else {
			refInfo, appendRef = r.registerCommonObject(refInfo)
		}
	}

	linked := &schema.Definition{
		Description:             description,
		LongDescription:         longDescription,
		FullDescriptionOverride: fullOverride,
		Pattern:                 pattern,
		PropName:                refInfo.PropName,
		SchemaName:              refInfo.SchemaName,
		FromSchemaRef:           refInfo.FromSchemaRef,
		RefURI:                  refInfo.RefURI,
		Type:                    append(schema.TypeSet(nil), refInfo.Type...),
		ReadOnly:                refInfo.ReadOnly,
	}
	if !fullOverride {
		linked.AddLinkText = appendRef
	}
	if linkDetail != "" {
		link := &schema.Definition{
			Type:     schema.TypeSet{"string"},
			ReadOnly: true,
		}
		if !fullOverride {
			link.AddLinkText = linkDetail
		}
		linked.Properties = map[string]*schema.Definition{LinkPropertyName: link}
	}
	return linked
}

// registerCommonObject records refInfo in the shared pool under its
// version-stripped key and returns the definition to continue with plus
// the cross-reference note.
func (r *Resolver) registerCommonObject(refInfo *schema.Definition) (*schema.Definition, string) {
	requestedURI := refInfo.RefURI
	refKey := schema.UnversionedRef(requestedURI)
	if refKey != requestedURI {
		if parent := r.index.FindByRef(refKey); parent != nil {
			parent = r.opts.Overrides.Apply(parent, "", "")
			if len(parent.Type) == 0 {
				parent.Type = schema.TypeSet{"object"}
			}
			refInfo = parent
		}
	}

	r.pool.Register(refKey, refInfo)

	if r.skipSchema(refInfo.PropName) {
		return refInfo, ""
	}
	name := refInfo.PropName + " object"
	if version := schema.RefVersion(requestedURI); version != "" {
		return refInfo, "See the " + name + " (v" + version + ") for details on this property."
	}
	return refInfo, "See the " + name + " for details on this property."
}

// resolveAnyOf handles the tagged-union case.
func (r *Resolver) resolveAnyOf(schemaRef string, def *schema.Definition, anyOf []*schema.Definition, contextMeta *schema.Metadata, depth int) []*schema.Definition {
	var sansNull []*schema.Definition
	nullable := false
	for _, alt := range anyOf {
		if isNullAlt(alt) {
			nullable = true
		} else {
			sansNull = append(sansNull, alt)
		}
	}

	// Several references that are just different versions of the same
	// underlying definition collapse to the newest one, rather than
	// documenting every historical version as an alternative.
	if len(sansNull) > 1 {
		if latest := latestVersionRef(sansNull); latest != "" {
			sansNull = []*schema.Definition{{Ref: latest}}
		}
	}

	if len(sansNull) == 0 {
		r.log.Warn("tagged union has no usable alternatives",
			zap.String("schema", schemaRef),
			zap.String("property", def.PropName))
		return nil
	}

	var out []*schema.Definition
	for _, alt := range sansNull {
		if alt.Ref != "" {
			alt = alt.Clone()
			carryParentProps(alt, def)
		}
		out = append(out, r.resolve(schemaRef, alt, contextMeta, depth+1)...)
	}

	// Nullability is a flag on the result, recorded by folding "null"
	// into the first element's type set; interpretation extracts it.
	if nullable && len(out) > 0 {
		first := out[0]
		if !first.Type.Contains("null") {
			first.Type = append(first.Type, "null")
		}
	}
	return out
}

// latestVersionRef returns the newest versioned ref when every
// alternative is a reference to a version of the same unversioned
// target, "" otherwise.
func latestVersionRef(alts []*schema.Definition) string {
	matchKey := ""
	best := ""
	bestVersion := ""
	for _, alt := range alts {
		if alt.Ref == "" {
			return ""
		}
		version := schema.RefVersion(alt.Ref)
		if version == "" {
			return ""
		}
		key := schema.UnversionedRef(alt.Ref)
		if matchKey == "" {
			matchKey = key
		} else if key != matchKey {
			return ""
		}
		if best == "" || schema.CompareVersions(bestVersion, version) < 0 {
			best = alt.Ref
			bestVersion = version
		}
	}
	return best
}

// idRefDefinition recognizes the well-known id-reference shape and
// synthesizes its minimal link object when the target schema is not in
// the corpus.
func (r *Resolver) idRefDefinition(ref string) *schema.Definition {
	if !strings.HasSuffix(ref, idRefSuffix) {
		return nil
	}
	if info := r.index.FindByRef(ref); info != nil {
		return info
	}
	return &schema.Definition{
		Type: schema.TypeSet{"object"},
		Properties: map[string]*schema.Definition{
			LinkPropertyName: {
				Type:            schema.TypeSet{"string"},
				ReadOnly:        true,
				Description:     "The unique identifier for a resource.",
				LongDescription: "The value of this property shall be the unique identifier for the resource.",
			},
		},
	}
}

func (r *Resolver) skipSchema(name string) bool {
	for _, excluded := range r.opts.ExcludedSchemas {
		if name == excluded {
			return true
		}
	}
	for _, pattern := range r.opts.ExcludedSchemasByMatch {
		if pattern != "" && strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

func isNullAlt(alt *schema.Definition) bool {
	return len(alt.Type) == 1 && alt.Type[0] == "null"
}

// carryParentProps lets a referencing site annotate a shared definition
// without mutating it: fields set on the referencing definition win
// over the resolved target's.
func carryParentProps(dst, src *schema.Definition) {
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.LongDescription != "" {
		dst.LongDescription = src.LongDescription
	}
	if src.FullDescriptionOverride {
		dst.FullDescriptionOverride = true
	}
	if src.Pattern != "" {
		dst.Pattern = src.Pattern
	}
	if src.ReadOnly {
		dst.ReadOnly = true
	}
	if src.PropRequired {
		dst.PropRequired = true
	}
	if src.PropRequiredOnCreate {
		dst.PropRequiredOnCreate = true
	}
	if src.RequiredParameter {
		dst.RequiredParameter = true
	}
}
