package model

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func validResource() Resource {
	return Resource{
		ID:          "mcp-dev-team-architect",
		Type:        TypeMCP,
		Name:        "Architect",
		Description: "Designs systems",
		Summary:     "Architect agent",
		Version:     "v1.0.0",
		FileType:    ".md",
		Source: Source{
			Repo: "org/repo",
			Path: "mcp/architect.md",
			URL:  "https://raw.githubusercontent.com/org/repo/main/mcp/architect.md",
		},
		InstallPath: "mcp/architect.md",
	}
}

func TestResourceValidate_OK(t *testing.T) {
	r := validResource()
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResourceValidate_BadID(t *testing.T) {
	cases := []string{"", "Has-Upper", "has_underscore", "has space"}
	for _, id := range cases {
		r := validResource()
		r.ID = id
		if err := r.Validate(); !errors.Is(err, ErrInvalidResource) {
			t.Errorf("id %q: expected ErrInvalidResource, got %v", id, err)
		}
	}
}

func TestResourceValidate_BadType(t *testing.T) {
	r := validResource()
	r.Type = Type("plugin")
	if err := r.Validate(); !errors.Is(err, ErrInvalidResource) {
		t.Errorf("expected ErrInvalidResource, got %v", err)
	}
}

func TestResourceValidate_NonHTTPSSource(t *testing.T) {
	r := validResource()
	r.Source.URL = "http://example.com/x.md"
	if err := r.Validate(); !errors.Is(err, ErrInvalidResource) {
		t.Errorf("expected ErrInvalidResource, got %v", err)
	}
}

func TestResourceValidate_SelfDependency(t *testing.T) {
	r := validResource()
	r.Dependencies = &Dependency{Required: []string{r.ID}}
	if err := r.Validate(); !errors.Is(err, ErrInvalidResource) {
		t.Errorf("expected ErrInvalidResource for self-dependency, got %v", err)
	}

	r2 := validResource()
	r2.Dependencies = &Dependency{Recommended: []string{r2.ID}}
	if err := r2.Validate(); !errors.Is(err, ErrInvalidResource) {
		t.Errorf("expected ErrInvalidResource for recommended self-dependency, got %v", err)
	}
}

func TestResourceTags(t *testing.T) {
	r := validResource()
	r.Metadata = map[string]any{"tags": []any{"a", "b"}}
	tags := r.Tags()
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Errorf("unexpected tags: %v", tags)
	}
}

func TestResourceUnmarshalYAML_PreservesUnknownFields(t *testing.T) {
	doc := `
id: mcp-dev-team-architect
type: mcp
name: Architect
description: Designs systems
summary: Architect agent
version: v1.0.0
file_type: .md
source:
  repo: org/repo
  path: mcp/architect.md
  url: https://raw.githubusercontent.com/org/repo/main/mcp/architect.md
install_path: mcp/architect.md
license: MIT
homepage: https://example.com
`
	var r Resource
	if err := yaml.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.ID != "mcp-dev-team-architect" || r.Name != "Architect" {
		t.Errorf("known fields not decoded correctly: %+v", r)
	}
	if r.Extra["license"] != "MIT" {
		t.Errorf("expected Extra[license] = MIT, got %+v", r.Extra)
	}
	if r.Extra["homepage"] != "https://example.com" {
		t.Errorf("expected Extra[homepage] preserved, got %+v", r.Extra)
	}
	if _, ok := r.Extra["id"]; ok {
		t.Errorf("known field %q leaked into Extra: %+v", "id", r.Extra)
	}
}

func TestResourceUnmarshalYAML_NoExtraFieldsLeavesExtraNil(t *testing.T) {
	doc := `
id: architect
type: agent
`
	var r Resource
	if err := yaml.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Extra != nil {
		t.Errorf("expected nil Extra when no unknown fields present, got %+v", r.Extra)
	}
}

func TestCatalogValidate(t *testing.T) {
	c := Catalog{
		Total: 1,
		Types: map[Type]TypeIndex{
			TypeAgent: {Resources: []map[string]any{{"id": "a"}}, Count: 1},
		},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := Catalog{Types: map[Type]TypeIndex{Type("plugin"): {}}}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestTypeIndexValidate_CountMismatch(t *testing.T) {
	idx := TypeIndex{Resources: []map[string]any{{"id": "a"}}, Count: 2}
	if err := idx.Validate(); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestTypeIndexValidate_DuplicateID(t *testing.T) {
	idx := TypeIndex{
		Resources: []map[string]any{{"id": "a"}, {"id": "a"}},
		Count:     2,
	}
	if err := idx.Validate(); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog, got %v", err)
	}
}
