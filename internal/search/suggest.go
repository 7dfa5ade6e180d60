// internal/search/suggest.go
package search

import (
	"github.com/hbollon/go-edlib"

	"github.com/vmunix/m3usync/pkg/mediafile"
)

// suggestFloor is the minimum Jaro-Winkler similarity for a suggestion.
// Below this the candidate is more likely noise than a near-miss.
const suggestFloor = 0.70

// Suggest returns the scanned filename most similar to target, for
// "did you mean" hints on unmatched targets. Jaro-Winkler favors shared
// prefixes, which suits media filenames. Candidates come from the last walk;
// ok is false when nothing clears the floor.
func (s *Searcher) Suggest(target string) (name string, score float64, ok bool) {
	normalized := mediafile.Key(target, false)

	best := ""
	bestScore := 0.0
	for _, candidate := range s.scanned {
		sim := float64(edlib.JaroWinklerSimilarity(normalized, mediafile.Key(candidate, false)))
		if sim > bestScore {
			bestScore = sim
			best = candidate
		}
	}

	if bestScore < suggestFloor {
		return "", 0, false
	}
	return best, bestScore, true
}
