// Package aggregate derives survey-wide statistics from institution records.
// Everything here is pure: the same records always produce the same summary.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/nao1215/relevador/internal/model"
)

// Unknown is the ranking label for an empty country or language.
const Unknown = "Desconocido"

// Aggregate computes the summary of records.
// Percentages are taken over all institutions, unreachable and skipped
// ones included, and are 0 when there are no records.
func Aggregate(records []*model.InstitutionRecord) model.Summary {
	s := model.Summary{
		Total:      len(records),
		Categories: make([]model.CategorySummary, 0, len(model.AllCategories())),
	}

	covered := make(map[model.Category]int)
	hits := make(map[model.Category]int)
	countries := make(map[string]int)
	languages := make(map[string]int)

	for _, rec := range records {
		if rec == nil {
			continue
		}
		switch rec.Status {
		case model.StatusReachable:
			s.Reachable++
		case model.StatusUnreachable:
			s.Unreachable++
		case model.StatusSkipped:
			s.Skipped++
		}
		if rec.AnyCovered() {
			s.AnyCovered++
		}
		for _, c := range model.AllCategories() {
			cov := rec.CoverageFor(c)
			if cov.Covered {
				covered[c]++
			}
			hits[c] += cov.Count
			s.TotalHits += cov.Count
		}

		countries[label(rec.Institution.Country)]++
		if rec.Reachable() {
			languages[label(rec.Language)]++
		}
	}

	s.ReachablePercent = Percent(s.Reachable, s.Total)
	for _, c := range model.AllCategories() {
		s.Categories = append(s.Categories, model.CategorySummary{
			Category: c,
			Covered:  covered[c],
			Percent:  Percent(covered[c], s.Total),
			Hits:     hits[c],
		})
	}
	s.Countries = rank(countries)
	s.Languages = rank(languages)

	return s
}

// Percent returns part / total * 100, or 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// NewSurveyResult assembles the result of a run and computes its summary.
func NewSurveyResult(runID string, startedAt, finishedAt time.Time, records []*model.InstitutionRecord) *model.SurveyResult {
	return &model.SurveyResult{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Records:    records,
		Summary:    Aggregate(records),
	}
}

// rank orders counts by count descending, then name ascending.
func rank(counts map[string]int) []model.Count {
	out := make([]model.Count, 0, len(counts))
	for name, n := range counts {
		out = append(out, model.Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func label(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return Unknown
	}
	return s
}
