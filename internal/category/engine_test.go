package category

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"rsmgr/internal/model"
)

func resources() []model.Resource {
	return []model.Resource{
		{ID: "mcp-dev-team-architect", Type: model.TypeMCP},
		{ID: "mcp-dev-team-reviewer", Type: model.TypeMCP},
		{ID: "agent-qa-team-tester", Type: model.TypeAgent},
		{ID: "standalone", Type: model.TypeCommand},
	}
}

func TestBuildTree(t *testing.T) {
	e := NewEngine()
	tree := e.BuildTree(resources())

	if got := tree.CategoryCount("mcp"); got != 2 {
		t.Errorf("mcp count = %d, want 2", got)
	}
	if got := tree.CategoryCount("mcp.dev-team"); got != 2 {
		t.Errorf("mcp.dev-team count = %d, want 2", got)
	}
	if got := tree.CategoryCount("general"); got != 1 {
		t.Errorf("general count = %d, want 1", got)
	}

	stats := tree.Statistics()
	if stats.TotalResources != 4 {
		t.Errorf("total resources = %d, want 4", stats.TotalResources)
	}
}

func TestBuildTree_CacheHit(t *testing.T) {
	e := NewEngine()
	res := resources()
	first := e.BuildTree(res)
	second := e.BuildTree(res)
	if first != second {
		t.Error("expected cached tree to be returned for identical resource set")
	}

	e.InvalidateCache()
	third := e.BuildTree(res)
	if third == first {
		t.Error("expected fresh tree after InvalidateCache")
	}
}

func TestStatistics_MatchesExpectedTreeShape(t *testing.T) {
	e := NewEngine()
	tree := e.BuildTree(resources())

	got := tree.Statistics()
	want := Statistics{
		TotalResources:  4,
		TotalCategories: 3,
		CategoryCounts: map[string]int{
			"mcp":     2,
			"agent":   1,
			"general": 1,
		},
		CategoryPercentages: map[string]float64{
			"mcp":     50,
			"agent":   25,
			"general": 25,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Statistics() mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterByCategoryAndType(t *testing.T) {
	e := NewEngine()
	tree := e.BuildTree(resources())
	filtered := tree.FilterByCategoryAndType("mcp", model.TypeMCP)
	if len(filtered) != 2 {
		t.Errorf("got %d resources, want 2", len(filtered))
	}
}
