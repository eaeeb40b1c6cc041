package schema

// Metadata records when a node entered the schema and, if applicable,
// when it was deprecated. Children mirrors the property tree so that
// nested nodes carry their own history.
type Metadata struct {
	Version               string
	Deprecated            string
	DeprecatedExplanation string
	Unversioned           bool
	Children              map[string]*Metadata
}

// Clone returns a deep copy.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	out := *m
	if m.Children != nil {
		out.Children = make(map[string]*Metadata, len(m.Children))
		for k, v := range m.Children {
			out.Children[k] = v.Clone()
		}
	}
	return &out
}

// MergeMetadata combines two metadata records for the same node into a
// fresh one. Neither input is mutated. The first-seen entry wins: the
// lower of two versions is kept, and likewise for deprecation versions.
// An unversioned side suppresses the other side's deprecation, unless
// it declares its own explanation. Child maps merge recursively by the
// same rules; a child present on only one side carries through.
//
// The unversioned handling is deliberately asymmetric; it matches the
// behavior schema authors rely on when a definition moves between the
// unversioned document and a versioned one.
func MergeMetadata(a, b *Metadata) *Metadata {
	if a == nil && b == nil {
		return &Metadata{}
	}
	if a == nil {
		return b.Clone()
	}
	if b == nil {
		return a.Clone()
	}

	out := a.Clone()
	other := b.Clone()

	if out.Version != "" && other.Version != "" {
		if CompareVersions(out.Version, other.Version) > 0 {
			out.Version = other.Version
		}
	} else if other.Version != "" {
		out.Version = other.Version
	}

	switch {
	case out.Unversioned:
		other.Deprecated = ""
		other.DeprecatedExplanation = out.DeprecatedExplanation
	case other.Unversioned:
		out.Deprecated = ""
		out.DeprecatedExplanation = other.DeprecatedExplanation
	case out.Deprecated != "" && other.Deprecated != "":
		if CompareVersions(out.Deprecated, other.Deprecated) > 0 {
			out.Deprecated = other.Deprecated
		}
	case other.Deprecated != "":
		out.Deprecated = other.Deprecated
		out.DeprecatedExplanation = other.DeprecatedExplanation
	}

	for name, child := range out.Children {
		if oc := other.Children[name]; oc != nil {
			out.Children[name] = MergeMetadata(child, oc)
		}
	}
	for name, child := range other.Children {
		if out.Children == nil {
			out.Children = make(map[string]*Metadata)
		}
		if out.Children[name] == nil {
			out.Children[name] = child
		}
	}
	return out
}

// MergeChildMetadata merges a named child's own metadata with whatever
// the surrounding context already knows about a node of that name.
// context holds metadata for the current nesting level, keyed by child
// name.
func MergeChildMetadata(name string, meta, context *Metadata) *Metadata {
	if context == nil {
		return MergeMetadata(meta, nil)
	}
	return MergeMetadata(meta, context.Children[name])
}
