package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultAuthor is written to posts that carry no author of their own.
const DefaultAuthor = "BangtanMom"

// DefaultStatus is the publication status assumed for posts without one.
const DefaultStatus = "published"

// MappingSchema is the table of target fields and the source fields they are
// resolved from. It is the root of the optional JSON mapping file.
type MappingSchema struct {
	Entity     string      `json:"entity"`
	Collection string      `json:"collection"`
	Fields     []FieldRule `json:"fields"`
}

// FieldRule resolves one target field. The first source field holding a
// non-blank value wins; DeriveFrom names an already-resolved target field to
// slugify when none does, and Default applies last.
type FieldRule struct {
	Target     string   `json:"target"`
	Sources    []string `json:"sources"`
	DeriveFrom string   `json:"deriveFrom,omitempty"`
	Default    string   `json:"default,omitempty"`
	Lower      bool     `json:"lower,omitempty"`
	KeepEmpty  bool     `json:"keepEmpty,omitempty"`
	Transform  string   `json:"transform,omitempty"`
}

// Transform names understood by the normalizer.
const (
	TransformDropbox = "dropbox"
)

// DefaultPostMapping returns the fallback chains used for blog posts.
func DefaultPostMapping() *MappingSchema {
	return &MappingSchema{
		Entity:     "Post",
		Collection: "posts",
		Fields: []FieldRule{
			{Target: "title", Sources: []string{"title", "post_title", "name"}},
			{Target: "slug", Sources: []string{"slug", "post_slug"}, DeriveFrom: "title"},
			{Target: "excerpt", Sources: []string{"excerpt", "summary"}, KeepEmpty: true},
			{Target: "content", Sources: []string{"content", "body", "html"}},
			{Target: "author", Sources: []string{"author"}, Default: DefaultAuthor},
			{Target: "category", Sources: []string{"category", "category_name"}},
			{Target: "status", Sources: []string{"status"}, Default: DefaultStatus, Lower: true},
			{Target: "date", Sources: []string{"date", "published_date", "published_at"}},
			{Target: "published_date", Sources: []string{"published_date", "date", "published_at"}},
			{Target: "published_at", Sources: []string{"published_at", "published_date", "date"}},
			{Target: "tags", Sources: []string{"tags"}},
			{Target: "image", Sources: []string{"image", "image_url"}},
			{Target: "image_url", Sources: []string{"image_url", "image"}},
			{Target: "featured_image_url", Sources: []string{"featured_image_url", "image_url", "image"}},
			{Target: "featured_image_dropbox_url", Sources: []string{"featured_image_dropbox_url"}, Transform: TransformDropbox},
		},
	}
}

// LoadMapping parses a mapping file and checks that every rule is usable.
func LoadMapping(data []byte) (*MappingSchema, error) {
	var m MappingSchema
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate reports rules that cannot produce a value or that refer to fields
// resolved after them.
func (m *MappingSchema) Validate() error {
	if len(m.Fields) == 0 {
		return errors.New("mapping has no fields")
	}
	seen := make(map[string]bool, len(m.Fields))
	for i, f := range m.Fields {
		if f.Target == "" {
			return fmt.Errorf("field rule %d has no target", i)
		}
		if seen[f.Target] {
			return fmt.Errorf("field %q is mapped twice", f.Target)
		}
		if len(f.Sources) == 0 && f.DeriveFrom == "" && f.Default == "" {
			return fmt.Errorf("field %q has no sources, derivation or default", f.Target)
		}
		if f.DeriveFrom != "" && !seen[f.DeriveFrom] {
			return fmt.Errorf("field %q derives from %q which is not resolved before it", f.Target, f.DeriveFrom)
		}
		if f.Transform != "" && f.Transform != TransformDropbox {
			return fmt.Errorf("field %q has unknown transform %q", f.Target, f.Transform)
		}
		seen[f.Target] = true
	}
	return nil
}
