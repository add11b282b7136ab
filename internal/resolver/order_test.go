package resolver

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rsmgr/internal/model"
)

func idsOf(resources []model.Resource) []string {
	ids := make([]string, len(resources))
	for i, r := range resources {
		ids[i] = r.ID
	}
	return ids
}

func TestGetInstallOrder_DependenciesBeforeDependents(t *testing.T) {
	resources := []model.Resource{
		{ID: "agent-a", Dependencies: &model.Dependency{Required: []string{"lib-x"}}},
		{ID: "lib-x"},
		{ID: "lib-y"},
		{ID: "agent-b", Dependencies: &model.Dependency{Required: []string{"lib-x", "lib-y"}}},
	}

	r := New(DefaultMaxDepth)
	ordered, err := r.GetInstallOrder(resources)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Kahn's algorithm processes the ready queue in sorted ID order, so once
	// lib-x unblocks agent-a it's installed before lib-y, which unblocks
	// agent-b last.
	want := []string{"lib-x", "agent-a", "lib-y", "agent-b"}
	if diff := cmp.Diff(want, idsOf(ordered)); diff != "" {
		t.Errorf("unexpected install order (-want +got):\n%s", diff)
	}
}

func TestGetInstallOrder_CircularDependency(t *testing.T) {
	resources := []model.Resource{
		{ID: "a", Dependencies: &model.Dependency{Required: []string{"b"}}},
		{ID: "b", Dependencies: &model.Dependency{Required: []string{"a"}}},
	}

	r := New(DefaultMaxDepth)
	if _, err := r.GetInstallOrder(resources); !errors.Is(err, ErrDependency) {
		t.Errorf("expected ErrDependency, got %v", err)
	}
}
