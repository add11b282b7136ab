// Package model defines the core data types for cataloged resources:
// agents, commands, hooks, templates, and MCP servers.
package model

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type enumerates the kinds of resource the catalog understands.
type Type string

const (
	TypeAgent    Type = "agent"
	TypeCommand  Type = "command"
	TypeHook     Type = "hook"
	TypeTemplate Type = "template"
	TypeMCP      Type = "mcp"
)

// Types lists every valid resource type, in catalog display order.
var Types = []Type{TypeAgent, TypeCommand, TypeHook, TypeTemplate, TypeMCP}

func (t Type) valid() bool {
	for _, want := range Types {
		if t == want {
			return true
		}
	}
	return false
}

var idPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Source describes where a resource's content is fetched from.
type Source struct {
	Repo   string `yaml:"repo" json:"repo"`
	Path   string `yaml:"path" json:"path"`
	URL    string `yaml:"url" json:"url"`
	Sha256 string `yaml:"sha256,omitempty" json:"sha256,omitempty"`
}

func (s Source) Validate() error {
	if !strings.HasPrefix(s.URL, "https://") {
		return fmt.Errorf("%w: source url must use https", ErrInvalidResource)
	}
	return nil
}

// Dependency splits a resource's dependency IDs into hard requirements and
// best-effort recommendations.
type Dependency struct {
	Required    []string `yaml:"required,omitempty" json:"required,omitempty"`
	Recommended []string `yaml:"recommended,omitempty" json:"recommended,omitempty"`
}

// Resource is a single catalog entry: an agent, command, hook, template, or
// MCP server definition plus its install metadata.
type Resource struct {
	ID          string      `yaml:"id" json:"id"`
	Type        Type        `yaml:"type" json:"type"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	Summary     string      `yaml:"summary" json:"summary"`
	Version     string      `yaml:"version" json:"version"`
	Author      string      `yaml:"author,omitempty" json:"author,omitempty"`
	FileType    string      `yaml:"file_type" json:"file_type"`
	Source      Source      `yaml:"source" json:"source"`
	InstallPath string      `yaml:"install_path" json:"install_path"`
	Metadata    map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Dependencies *Dependency `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`

	// Extra holds fields present in the source document that this struct
	// does not model explicitly, mirroring the original's permissive
	// "extra fields allowed" resource schema.
	Extra map[string]any `yaml:"-" json:"-"`
}

// knownResourceFields lists the YAML keys Resource decodes explicitly;
// everything else collected by UnmarshalYAML lands in Extra.
var knownResourceFields = map[string]struct{}{
	"id": {}, "type": {}, "name": {}, "description": {}, "summary": {},
	"version": {}, "author": {}, "file_type": {}, "source": {},
	"install_path": {}, "metadata": {}, "dependencies": {},
}

// UnmarshalYAML decodes a resource document into the known fields above,
// then preserves any remaining keys in Extra rather than discarding them,
// the way Pydantic's extra="allow" does for the original's resource model.
func (r *Resource) UnmarshalYAML(node *yaml.Node) error {
	type resourceAlias Resource
	var alias resourceAlias
	if err := node.Decode(&alias); err != nil {
		return err
	}
	*r = Resource(alias)

	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	extra := make(map[string]any)
	for k, v := range raw {
		if _, ok := knownResourceFields[k]; !ok {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		r.Extra = extra
	}
	return nil
}

// Validate checks the invariants the catalog loader must enforce before a
// resource is trusted by any downstream component.
func (r Resource) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidResource)
	}
	if !idPattern.MatchString(r.ID) {
		return fmt.Errorf("%w: id %q must contain only lowercase letters, numbers, and hyphens", ErrInvalidResource, r.ID)
	}
	if !r.Type.valid() {
		return fmt.Errorf("%w: type %q must be one of %v", ErrInvalidResource, r.Type, Types)
	}
	if err := r.Source.Validate(); err != nil {
		return err
	}
	if r.Dependencies != nil {
		for _, dep := range r.Dependencies.Required {
			if dep == r.ID {
				return fmt.Errorf("%w: resource %q cannot depend on itself", ErrInvalidResource, r.ID)
			}
		}
		for _, dep := range r.Dependencies.Recommended {
			if dep == r.ID {
				return fmt.Errorf("%w: resource %q cannot depend on itself", ErrInvalidResource, r.ID)
			}
		}
	}
	return nil
}

// Tags returns the metadata "tags" field as a string slice, tolerating
// absence or a differently-shaped value.
func (r Resource) Tags() []string {
	raw, ok := r.Metadata["tags"]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

// Model returns the metadata "model" field, if present.
func (r Resource) Model() string {
	if v, ok := r.Metadata["model"].(string); ok {
		return v
	}
	return ""
}
