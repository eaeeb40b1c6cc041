package schema

// SchemaOverrides holds per-schema description overrides from the
// supplement file.
type SchemaOverrides struct {
	DescriptionOverrides     map[string]string
	FullDescriptionOverrides map[string]string
}

// Overrides collects the configured text and units replacements that
// are applied to definitions before they are interpreted. Per-schema
// entries win over the global ones; a "full" override additionally
// marks the definition so that no link text is appended later.
type Overrides struct {
	PerSchema                map[string]SchemaOverrides
	PropertyDescriptions     map[string]string
	PropertyFullDescriptions map[string]string
	UnitsTranslation         map[string]string
}

// Apply returns a copy of def with the configured overrides applied.
// def itself is never touched. schemaName and propName may be empty, in
// which case the definition's own annotations are used.
func (o *Overrides) Apply(def *Definition, schemaName, propName string) *Definition {
	out := def.Clone()
	out.FullDescriptionOverride = false
	if o == nil {
		return out
	}

	if schemaName == "" {
		schemaName = out.SchemaName
	}
	if propName == "" {
		propName = out.PropName
	}

	local := o.PerSchema[schemaName]
	localText, hasLocal := local.DescriptionOverrides[propName]
	localFull, hasLocalFull := local.FullDescriptionOverrides[propName]
	if hasLocal || hasLocalFull {
		if hasLocal {
			out.Description = localText
			out.LongDescription = localText
		}
		if hasLocalFull {
			out.Description = localFull
			out.LongDescription = localFull
			out.FullDescriptionOverride = true
		}
		return out
	}

	if text, ok := o.PropertyDescriptions[propName]; ok {
		out.Description = text
		out.LongDescription = text
	}
	if text, ok := o.PropertyFullDescriptions[propName]; ok {
		out.Description = text
		out.LongDescription = text
		out.FullDescriptionOverride = true
	}

	if trans, ok := o.UnitsTranslation[out.Units]; ok && trans != "" {
		out.Units = trans
	}
	return out
}
