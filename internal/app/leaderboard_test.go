package app

import (
	"fmt"
	"testing"

	"logo-quiz-service/internal/domain"
)

func TestComputeViewDedupsByEmail(t *testing.T) {
	records := []domain.ScoreRecord{
		{Name: "A", Email: "a@x", Score: 5},
		{Name: "A", Email: "a@x", Score: 9},
		{Name: "B", Email: "b@x", Score: 3},
	}

	view := ComputeView(records, &domain.Highlight{Name: "A", Score: 9}, 0)
	if len(view.Ranked) != 2 {
		t.Fatalf("expected 2 ranked entries, got %+v", view.Ranked)
	}
	if view.Ranked[0].Name != "A" || view.Ranked[0].Score != 9 {
		t.Fatalf("expected A with 9 first, got %+v", view.Ranked[0])
	}
	if view.Ranked[1].Name != "B" || view.Ranked[1].Score != 3 {
		t.Fatalf("expected B with 3 second, got %+v", view.Ranked[1])
	}
	if view.CurrentPlayerRank != 1 || !view.InTop {
		t.Fatalf("expected rank 1 in top, got rank=%d inTop=%v", view.CurrentPlayerRank, view.InTop)
	}
	if records[0].Score != 5 {
		t.Fatalf("input must not be reordered")
	}
}

func TestComputeViewFallsBackToNameKey(t *testing.T) {
	records := []domain.ScoreRecord{
		{Name: "Sam", Score: 2},
		{Name: "Sam", Score: 4},
		{Name: "Sam", Email: "sam@x", Score: 1},
	}
	view := ComputeView(records, nil, 10)
	if len(view.Ranked) != 2 {
		t.Fatalf("expected name and email identities kept apart, got %+v", view.Ranked)
	}
	if view.Ranked[0].Score != 4 || view.Ranked[1].Email != "sam@x" {
		t.Fatalf("unexpected ranking %+v", view.Ranked)
	}
	if view.CurrentPlayerRank != 0 || view.InTop {
		t.Fatalf("no highlight should give rank 0, got %d", view.CurrentPlayerRank)
	}
}

func TestComputeViewStableTies(t *testing.T) {
	records := []domain.ScoreRecord{
		{Name: "first", Score: 3},
		{Name: "second", Score: 3},
		{Name: "third", Score: 3},
	}
	for i := 0; i < 5; i++ {
		view := ComputeView(records, nil, 0)
		for j, want := range []string{"first", "second", "third"} {
			if view.Ranked[j].Name != want {
				t.Fatalf("tie order changed: %+v", view.Ranked)
			}
		}
	}
}

func TestComputeViewTopAndRankOutsideTop(t *testing.T) {
	var records []domain.ScoreRecord
	for i := 0; i < 15; i++ {
		records = append(records, domain.ScoreRecord{Name: fmt.Sprintf("p%02d", i), Score: 100 - i})
	}

	view := ComputeView(records, &domain.Highlight{Name: "p12", Score: 88}, 0)
	if len(view.Top) != DefaultLeaderboardSize {
		t.Fatalf("expected top %d, got %d", DefaultLeaderboardSize, len(view.Top))
	}
	if len(view.Ranked) != 15 {
		t.Fatalf("expected full ranking of 15, got %d", len(view.Ranked))
	}
	if view.CurrentPlayerRank != 13 || view.InTop {
		t.Fatalf("expected rank 13 outside top, got rank=%d inTop=%v", view.CurrentPlayerRank, view.InTop)
	}

	miss := ComputeView(records, &domain.Highlight{Name: "p12", Score: 1}, 0)
	if miss.CurrentPlayerRank != 0 {
		t.Fatalf("score mismatch should give rank 0, got %d", miss.CurrentPlayerRank)
	}
}

func TestComputeViewEmpty(t *testing.T) {
	view := ComputeView(nil, &domain.Highlight{Name: "x"}, 3)
	if len(view.Ranked) != 0 || len(view.Top) != 0 || view.CurrentPlayerRank != 0 {
		t.Fatalf("expected empty view, got %+v", view)
	}
}
