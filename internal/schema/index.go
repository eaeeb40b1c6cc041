package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Index is the resolution engine's view of the schema store.
type Index interface {
	// FindByRef resolves a reference string to its definition, or nil
	// if the target does not exist. The returned definition is a copy
	// annotated with its identity and version metadata.
	FindByRef(ref string) *Definition

	// SchemaName returns the human-readable name of the schema a
	// reference belongs to.
	SchemaName(ref string) string

	// CollectionOf returns the schema reference a collection schema
	// holds members of, or "" if ref is not a collection.
	CollectionOf(ref string) string

	// IsDocumented reports whether the schema appears as its own
	// section in the output.
	IsDocumented(ref string) bool

	// NodeName returns the definition name a reference points at.
	NodeName(ref string) string
}

const definitionsFragment = "#/definitions/"

// Document is one schema file from the corpus.
type Document struct {
	ID           string                 `json:"-"`
	Title        string                 `json:"title,omitempty"`
	Definitions  map[string]*Definition `json:"definitions"`
	URIs         []string               `json:"uris,omitempty"`
	CollectionOf string                 `json:"collectionOf,omitempty"`
}

// DirIndex is an Index over a set of schema documents, typically loaded
// from a directory of JSON files.
type DirIndex struct {
	docs map[string]*Document // keyed by file name, e.g. "Drive.v1_2_0.json"
}

// NewDirIndex returns an empty index. Populate it with AddDocument or
// LoadDir.
func NewDirIndex() *DirIndex {
	return &DirIndex{docs: make(map[string]*Document)}
}

// LoadDir reads every .json file in dir into the index.
func LoadDir(dir string) (*DirIndex, error) {
	x := NewDirIndex()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", entry.Name(), err)
		}
		if err := x.AddDocument(entry.Name(), data); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// AddDocument decodes one schema document and registers it under the
// given file name.
func (x *DirIndex) AddDocument(name string, data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse schema %s: %w", name, err)
	}
	doc.ID = name
	x.register(&doc)
	return nil
}

func (x *DirIndex) register(doc *Document) {
	docVersion := RefVersion(doc.ID)
	unversioned := docVersion == ""
	for nodeName, def := range doc.Definitions {
		def.PropName = nodeName
		def.SchemaName = schemaNameFromID(doc.ID)
		def.FromSchemaRef = doc.ID
		def.RefURI = doc.ID + definitionsFragment + nodeName
		def.Meta = buildMeta(def, docVersion, unversioned)
	}
	x.docs[doc.ID] = doc
}

// buildMeta derives version metadata for a definition and its property
// tree. A property's own versionAdded wins over the document version.
func buildMeta(def *Definition, docVersion string, unversioned bool) *Metadata {
	meta := &Metadata{
		Version:               docVersion,
		Deprecated:            def.VersionDeprecated,
		DeprecatedExplanation: def.DeprecatedReason,
		Unversioned:           unversioned,
	}
	if def.VersionAdded != "" {
		meta.Version = def.VersionAdded
	}
	for name, child := range def.Properties {
		if meta.Children == nil {
			meta.Children = make(map[string]*Metadata, len(def.Properties))
		}
		meta.Children[name] = buildMeta(child, meta.Version, unversioned)
	}
	return meta
}

// FindByRef implements Index.
func (x *DirIndex) FindByRef(ref string) *Definition {
	file, node, ok := splitRef(ref)
	if !ok {
		return nil
	}
	doc := x.docs[file]
	if doc == nil {
		return nil
	}
	def := doc.Definitions[node]
	if def == nil {
		return nil
	}
	out := def.Clone()
	out.RefURI = ref
	return out
}

// SchemaName implements Index.
func (x *DirIndex) SchemaName(ref string) string {
	file, _, _ := splitRef(ref)
	if doc := x.docs[file]; doc != nil && doc.Title != "" {
		return doc.Title
	}
	return schemaNameFromID(file)
}

// CollectionOf implements Index. A collection either declares its
// member schema or is recognized by the "Collection" naming convention.
func (x *DirIndex) CollectionOf(ref string) string {
	file, _, _ := splitRef(ref)
	doc := x.docs[file]
	if doc == nil {
		return ""
	}
	member := doc.CollectionOf
	if member == "" {
		name := schemaNameFromID(file)
		if !strings.HasSuffix(name, "Collection") {
			return ""
		}
		member = strings.TrimSuffix(name, "Collection")
	}
	return x.refForSchemaName(member)
}

// IsDocumented implements Index: a schema is documented when its root
// definition carries properties of its own.
func (x *DirIndex) IsDocumented(ref string) bool {
	file, _, _ := splitRef(ref)
	doc := x.docs[file]
	if doc == nil {
		return false
	}
	root := doc.Definitions[schemaNameFromID(file)]
	return root != nil && root.HasStructure()
}

// NodeName implements Index.
func (x *DirIndex) NodeName(ref string) string {
	_, node, _ := splitRef(ref)
	return node
}

// Info summarizes a documented schema for the generation pass.
type Info struct {
	Ref     string
	Name    string
	Version string
	URIs    []string
	Root    *Definition
}

// Documented lists the documented schemas, one entry per schema name,
// preferring the highest versioned document. Sorted case-insensitively
// by name.
func (x *DirIndex) Documented() []*Info {
	best := make(map[string]*Info)
	for id, doc := range x.docs {
		name := schemaNameFromID(id)
		root := doc.Definitions[name]
		if root == nil || !root.HasStructure() {
			continue
		}
		version := RefVersion(id)
		cur := best[name]
		if cur == nil || CompareVersions(version, cur.Version) > 0 {
			best[name] = &Info{
				Ref:     id,
				Name:    name,
				Version: version,
				URIs:    doc.URIs,
				Root:    root,
			}
		}
	}
	out := make([]*Info, 0, len(best))
	for _, info := range best {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Collections returns collection schema names mapped to their URIs,
// for the collections summary table.
func (x *DirIndex) Collections() map[string][]string {
	out := make(map[string][]string)
	for id, doc := range x.docs {
		if x.CollectionOf(id) == "" {
			continue
		}
		uris := append([]string(nil), doc.URIs...)
		sort.Slice(uris, func(i, j int) bool {
			return strings.ToLower(uris[i]) < strings.ToLower(uris[j])
		})
		out[schemaNameFromID(id)] = uris
	}
	return out
}

func (x *DirIndex) refForSchemaName(name string) string {
	// Prefer the unversioned document; fall back to any version.
	if _, ok := x.docs[name+".json"]; ok {
		return name + ".json"
	}
	var fallback string
	for id := range x.docs {
		if schemaNameFromID(id) == name {
			if fallback == "" || CompareVersions(RefVersion(id), RefVersion(fallback)) > 0 {
				fallback = id
			}
		}
	}
	if fallback == "" {
		return name + ".json"
	}
	return fallback
}

func splitRef(ref string) (file, node string, ok bool) {
	if i := strings.Index(ref, definitionsFragment); i >= 0 {
		return ref[:i], ref[i+len(definitionsFragment):], true
	}
	if ref == "" {
		return "", "", false
	}
	return ref, "", true
}

func schemaNameFromID(id string) string {
	name := strings.TrimSuffix(id, ".json")
	return UnversionedRef(name)
}
