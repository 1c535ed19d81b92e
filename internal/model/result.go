package model

import "time"

// SurveyResult is the complete output of one run.
// Records are in configuration order; Summary is derived from Records
// by the aggregate package and never edited by hand.
type SurveyResult struct {
	// RunID identifies the run in exported files.
	RunID string `json:"run_id"`

	// StartedAt is when the first institution started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last institution finished.
	FinishedAt time.Time `json:"finished_at"`

	// Records holds one record per configured institution.
	Records []*InstitutionRecord `json:"records"`

	// Summary holds the aggregate statistics.
	Summary Summary `json:"summary"`
}

// Duration returns how long the run took.
func (r *SurveyResult) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary contains statistics over all records of a run.
type Summary struct {
	// Total is the number of institutions.
	Total int `json:"total"`

	// Reachable is the number of institutions whose homepage was fetched.
	Reachable int `json:"reachable"`

	// Unreachable is the number of institutions whose homepage fetch failed.
	Unreachable int `json:"unreachable"`

	// Skipped is the number of institutions not surveyed because the run was cancelled.
	Skipped int `json:"skipped"`

	// ReachablePercent is Reachable over Total, as a percentage.
	ReachablePercent float64 `json:"reachable_percent"`

	// AnyCovered is the number of institutions with at least one covered category.
	AnyCovered int `json:"any_covered"`

	// TotalHits is the number of hits across all institutions and categories.
	TotalHits int `json:"total_hits"`

	// Categories holds per-category statistics in AllCategories order.
	Categories []CategorySummary `json:"categories"`

	// Countries ranks institution countries by count.
	Countries []Count `json:"countries,omitempty"`

	// Languages ranks detected languages by count.
	Languages []Count `json:"languages,omitempty"`
}

// CategorySummary holds the statistics of one category.
type CategorySummary struct {
	// Category is the category described.
	Category Category `json:"category"`

	// Covered is the number of institutions with the category covered.
	Covered int `json:"covered"`

	// Percent is Covered / Total * 100, or 0 when Total is 0.
	Percent float64 `json:"percent"`

	// Hits is the number of hits in this category across all institutions.
	Hits int `json:"hits"`
}

// Count is a labelled counter used for rankings.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CategoryStats returns the summary of a category, or a zero value if absent.
func (s Summary) CategoryStats(c Category) CategorySummary {
	for _, cs := range s.Categories {
		if cs.Category == c {
			return cs
		}
	}
	return CategorySummary{Category: c}
}
