package srs

import (
	"fmt"
	"sort"
	"time"
)

// RefreshSuggestion is one entry of the refresh ranking: an item whose
// estimated retention has dropped below the caller's threshold, with the
// retention probability that triggered the suggestion.
type RefreshSuggestion struct {
	ScheduledItem
	Retention float64 `json:"retention"`
}

// RankRefresh surfaces soft decay warnings: items whose estimated retention
// at the given instant has fallen below the threshold, even if their formal
// due date has not arrived. This lets the caller nudge the learner before a
// scheduled review, decoupled from hard due-date selection.
//
// Results are ordered by ascending retention, most at-risk first; ties break
// toward the lower ease factor. The threshold is mandatory and must lie in
// (0,1]; there is no silently assumed default.
func RankRefresh(
	items []ScheduledItem,
	now time.Time,
	threshold float64,
	params *Params,
) ([]RefreshSuggestion, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: retention threshold must be in (0,1], got %g",
			ErrInvalidArgument, threshold)
	}

	if params == nil {
		params = NewDefaultParams()
	}

	suggestions := make([]RefreshSuggestion, 0)
	for _, it := range items {
		if it.Item == nil || it.State == nil {
			return nil, fmt.Errorf("%w: scheduled item missing item or state", ErrInvalidArgument)
		}

		p := retentionProbability(it.State, now, params)
		if p < threshold {
			suggestions = append(suggestions, RefreshSuggestion{
				ScheduledItem: it,
				Retention:     p,
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Retention != suggestions[j].Retention {
			return suggestions[i].Retention < suggestions[j].Retention
		}
		return suggestions[i].State.EaseFactor < suggestions[j].State.EaseFactor
	})

	return suggestions, nil
}
