package app

import (
	"sort"

	"logo-quiz-service/internal/domain"
)

// DefaultLeaderboardSize is how many entries the top of the board shows.
const DefaultLeaderboardSize = 10

// ComputeView ranks records by score, keeps the best entry per identity key and
// locates the highlighted player. Ties keep their input order. size <= 0 means
// DefaultLeaderboardSize. The input slice is not modified.
func ComputeView(records []domain.ScoreRecord, highlight *domain.Highlight, size int) domain.LeaderboardView {
	if size <= 0 {
		size = DefaultLeaderboardSize
	}

	sorted := make([]domain.ScoreRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	ranked := make([]domain.ScoreRecord, 0, len(sorted))
	seen := make(map[string]struct{}, len(sorted))
	for _, rec := range sorted {
		key := rec.IdentityKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ranked = append(ranked, rec)
	}

	top := ranked
	if len(top) > size {
		top = top[:size]
	}

	view := domain.LeaderboardView{Ranked: ranked, Top: top}
	if highlight != nil {
		for i, rec := range ranked {
			if rec.Name == highlight.Name && rec.Score == highlight.Score {
				view.CurrentPlayerRank = i + 1
				break
			}
		}
	}
	view.InTop = view.CurrentPlayerRank > 0 && view.CurrentPlayerRank <= size
	return view
}
