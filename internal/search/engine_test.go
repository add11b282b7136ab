package search

import (
	"context"
	"testing"
	"time"

	"rsmgr/internal/model"
)

func sampleIndex() *Index {
	idx := NewIndex()
	idx.IndexResource(model.Resource{ID: "mcp-architect", Type: model.TypeMCP, Name: "Architect", Description: "Designs systems", Summary: "System design agent"})
	idx.IndexResource(model.Resource{ID: "mcp-reviewer", Type: model.TypeMCP, Name: "Reviewer", Description: "Reviews code changes", Summary: "Code review agent"})
	idx.IndexResource(model.Resource{ID: "agent-tester", Type: model.TypeAgent, Name: "Tester", Description: "Writes and runs tests", Summary: "QA agent"})
	return idx
}

func TestSearchExact(t *testing.T) {
	idx := sampleIndex()
	results := idx.SearchExact("mcp-architect")
	if len(results) != 1 || results[0].ID != "mcp-architect" {
		t.Errorf("unexpected results: %+v", results)
	}
	if len(idx.SearchExact("nope")) != 0 {
		t.Error("expected no results for unknown id")
	}
}

func TestSearchPrefix(t *testing.T) {
	idx := sampleIndex()
	results := idx.SearchPrefix("mcp")
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestSearchFuzzy_TypoTolerant(t *testing.T) {
	idx := sampleIndex()
	results := idx.SearchFuzzy("architet", 10)
	found := false
	for _, r := range results {
		if r.Resource.ID == "mcp-architect" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected fuzzy match for typo query, got %+v", results)
	}
}

func TestSearch_ExactShortCircuits(t *testing.T) {
	idx := sampleIndex()
	results := idx.Search("mcp-architect", 10, nil)
	if len(results) != 1 || results[0].ID != "mcp-architect" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestSearch_WithFilter(t *testing.T) {
	idx := sampleIndex()
	results := idx.Search("agent", 10, Filters{"type": "agent"})
	for _, r := range results {
		if r.Type != model.TypeAgent {
			t.Errorf("expected only agent type, got %v", r.Type)
		}
	}
}

func TestSearchSmart_ExactScoresHundred(t *testing.T) {
	idx := sampleIndex()
	results := idx.SearchSmart("mcp-architect", 10)
	if len(results) == 0 || results[0].Score != 100 {
		t.Errorf("expected top score 100, got %+v", results)
	}
}

func TestSearchSmart_BoostsIDMatch(t *testing.T) {
	idx := sampleIndex()
	results := idx.SearchSmart("reviewer", 10)
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].Resource.ID != "mcp-reviewer" {
		t.Fatalf("expected the id/name match first, got %+v", results)
	}
	if base := weightedRatio("reviewer", idx.searchableText["mcp-reviewer"]); results[0].Score <= base {
		t.Errorf("expected boosted score above fuzzy base %v, got %v", base, results[0].Score)
	}
	if results[0].Score > 99 {
		t.Errorf("score should be capped at 99 for non-exact match, got %v", results[0].Score)
	}
}

func TestSearchAsync(t *testing.T) {
	idx := sampleIndex()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ch := idx.SearchAsync(ctx, "mcp-architect", 10, nil)
	select {
	case results := <-ch:
		if len(results) != 1 {
			t.Errorf("got %d results, want 1", len(results))
		}
	case <-ctx.Done():
		t.Fatal("search did not complete in time")
	}
}

func TestNewIndex_DefaultFieldsExcludeSummary(t *testing.T) {
	idx := NewIndex()
	idx.IndexResource(model.Resource{ID: "agent-tester", Name: "Tester", Description: "Writes tests", Summary: "uniquesummaryword"})

	if len(idx.Search("uniquesummaryword", 10, nil)) != 0 {
		t.Error("expected summary to be excluded from the default indexed fields")
	}
}

func TestNewIndex_WithIndexFields_CanOptIntoSummary(t *testing.T) {
	idx := NewIndex(WithIndexFields([]string{"id", "name", "description", "summary"}))
	idx.IndexResource(model.Resource{ID: "agent-tester", Name: "Tester", Description: "Writes tests", Summary: "uniquesummaryword"})

	if len(idx.Search("uniquesummaryword", 10, nil)) != 1 {
		t.Error("expected summary to be searchable once opted in via WithIndexFields")
	}
}

func TestRemoveResource(t *testing.T) {
	idx := sampleIndex()
	idx.RemoveResource("mcp-architect")
	if len(idx.SearchExact("mcp-architect")) != 0 {
		t.Error("expected resource to be removed")
	}
	if len(idx.SearchPrefix("mcp")) != 1 {
		t.Error("expected trie to be rebuilt without removed resource")
	}
}
