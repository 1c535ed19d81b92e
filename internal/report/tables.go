package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/relevador/internal/model"
)

// Sheet names of the two-sheet report.
const (
	SheetSurvey  = "Relevamiento"
	SheetSummary = "Resumen"
)

// Cell values shared by every output format.
const (
	Yes       = "Sí"
	No        = "No"
	NoAccess  = "Sin acceso"
	Skipped   = "Omitida"
	Reachable = "Accesible"
)

// dateLayout formats review timestamps.
const dateLayout = "2006-01-02 15:04:05"

// maxSampleTerms is how many terms go into the "Muestra de términos" column.
const maxSampleTerms = 5

// Table is a named grid of text cells.
// Every row has exactly len(Header) cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Tables is the tabular projection of a SurveyResult that every writer shares.
type Tables struct {
	// Survey has one row per institution, in configuration order.
	Survey Table

	// Summary has one Métrica / Valor row per statistic.
	Summary Table
}

// All returns the tables in sheet order.
func (t *Tables) All() []Table {
	return []Table{t.Survey, t.Summary}
}

// NewTables projects result into the Relevamiento and Resumen tables.
//
// Design decision: every writer renders from this projection instead of
// walking the records itself, so the workbook, the SQLite export and the
// text reports cannot disagree on a cell. Resumen only formats values the
// aggregate package already computed; nothing here derives a statistic.
func NewTables(result *model.SurveyResult) *Tables {
	return &Tables{
		Survey:  surveyTable(result.Records),
		Summary: summaryTable(result),
	}
}

// SurveyHeader returns the Relevamiento column names.
func SurveyHeader() []string {
	header := []string{"Universidad", "País", "URL", "Etiqueta", "Fecha Revisión", "Estado", "Idioma"}
	for _, c := range model.AllCategories() {
		header = append(header,
			c.Label(),
			c.Short()+" - Cantidad",
			c.Short()+" - Términos",
		)
	}
	return append(header, "Muestra de términos", "Contexto", "URLs analizadas", "Error")
}

func surveyTable(records []*model.InstitutionRecord) Table {
	t := Table{
		Name:   SheetSurvey,
		Header: SurveyHeader(),
		Rows:   make([][]string, 0, len(records)),
	}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		t.Rows = append(t.Rows, surveyRow(rec))
	}
	return t
}

func surveyRow(rec *model.InstitutionRecord) []string {
	reviewed := ""
	if !rec.ReviewedAt.IsZero() {
		reviewed = rec.ReviewedAt.Format(dateLayout)
	}

	row := []string{
		rec.Institution.Name,
		rec.Institution.Country,
		rec.Institution.URL,
		rec.Institution.Label,
		reviewed,
		StatusText(rec.Status),
		rec.Language,
	}

	for _, c := range model.AllCategories() {
		if !rec.Reachable() {
			row = append(row, StatusText(rec.Status), "", "")
			continue
		}
		cov := rec.CoverageFor(c)
		row = append(row,
			CoveredText(rec, c),
			strconv.Itoa(cov.Count),
			strings.Join(cov.Terms(), ", "),
		)
	}

	return append(row,
		strings.Join(sampleTerms(rec), ", "),
		firstSnippet(rec),
		strings.Join(rec.FetchedURLs(), "\n"),
		rec.FailureReason,
	)
}

// StatusText returns the Spanish label of a status.
func StatusText(s model.Status) string {
	switch s {
	case model.StatusReachable:
		return Reachable
	case model.StatusSkipped:
		return Skipped
	default:
		return NoAccess
	}
}

// CoveredText returns Sí or No for a reachable institution and the status
// label otherwise.
//
// Design decision: the category column carries the status instead of "No"
// for institutions that were never read. "No" is a finding about a site's
// content; an unreachable or skipped site has no content to judge, and a
// reader filtering the sheet for "No" must not count it. The count and
// terms columns are left empty for the same reason, rather than 0.
func CoveredText(rec *model.InstitutionRecord, c model.Category) string {
	if !rec.Reachable() {
		return StatusText(rec.Status)
	}
	if rec.CoverageFor(c).Covered {
		return Yes
	}
	return No
}

// sampleTerms returns up to maxSampleTerms distinct terms across categories.
func sampleTerms(rec *model.InstitutionRecord) []string {
	terms := make([]string, 0, maxSampleTerms)
	seen := make(map[string]bool)
	for _, c := range model.AllCategories() {
		for _, term := range rec.CoverageFor(c).Terms() {
			if len(terms) == maxSampleTerms {
				return terms
			}
			if !seen[term] {
				seen[term] = true
				terms = append(terms, term)
			}
		}
	}
	return terms
}

// firstSnippet returns the snippet of the first hit in category order.
func firstSnippet(rec *model.InstitutionRecord) string {
	for _, c := range model.AllCategories() {
		if hits := rec.CoverageFor(c).Hits; len(hits) > 0 {
			return hits[0].Snippet
		}
	}
	return ""
}

func summaryTable(result *model.SurveyResult) Table {
	s := result.Summary
	rows := [][]string{
		{"ID de ejecución", result.RunID},
		{"Inicio", formatTime(result.StartedAt)},
		{"Fin", formatTime(result.FinishedAt)},
		{"Duración", result.Duration().Round(time.Second).String()},
		{"Instituciones analizadas", strconv.Itoa(s.Total)},
		{"Accesibles", strconv.Itoa(s.Reachable)},
		{"Sin acceso", strconv.Itoa(s.Unreachable)},
		{"Omitidas", strconv.Itoa(s.Skipped)},
		{"% accesibles", FormatPercent(s.ReachablePercent)},
		{"Con al menos una categoría", strconv.Itoa(s.AnyCovered)},
		{"Total de coincidencias", strconv.Itoa(s.TotalHits)},
	}
	for _, c := range model.AllCategories() {
		cs := s.CategoryStats(c)
		rows = append(rows,
			[]string{c.Label() + " - Instituciones", strconv.Itoa(cs.Covered)},
			[]string{c.Label() + " - Porcentaje", FormatPercent(cs.Percent)},
			[]string{c.Label() + " - Coincidencias", strconv.Itoa(cs.Hits)},
		)
	}
	for _, country := range s.Countries {
		rows = append(rows, []string{"País - " + country.Name, strconv.Itoa(country.Count)})
	}
	for _, lang := range s.Languages {
		rows = append(rows, []string{"Idioma - " + lang.Name, strconv.Itoa(lang.Count)})
	}

	return Table{
		Name:   SheetSummary,
		Header: []string{"Métrica", "Valor"},
		Rows:   rows,
	}
}

// FormatPercent formats a percentage with one decimal.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
