package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/relevador/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// The Resumen table comes first, followed by a condensed Relevamiento
// table and the context snippet of every covered institution.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.SurveyResult) (int, error) {
	md := markdown.NewMarkdown(w.output)
	tables := NewTables(result)

	w.writeHeader(md, result)
	w.writeSummary(md, result, tables)
	w.writeSurvey(md, result)
	w.writeContexts(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.SurveyResult) {
	md.H1("Relevamiento de universidades")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Propiedad", "Valor"},
		Rows: [][]string{
			{"Ejecución", "`" + result.RunID + "`"},
			{"Inicio", formatTime(result.StartedAt)},
			{"Duración", result.Duration().String()},
			{"Instituciones", strconv.Itoa(result.Summary.Total)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the Resumen table, a coverage chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.SurveyResult, tables *Tables) {
	md.H2(SheetSummary)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: tables.Summary.Header,
		Rows:   tables.Summary.Rows,
	})
	md.PlainText("")

	if result.Summary.AnyCovered > 0 {
		w.writePieChart(md, result.Summary)
	}
	w.writeAlert(md, result.Summary)
}

// writePieChart writes a mermaid pie chart of covered institutions per category.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Instituciones con cobertura por categoría"),
		piechart.WithShowData(true),
	)

	for _, cs := range s.Categories {
		if cs.Covered > 0 {
			chart.LabelAndIntValue(cs.Category.Label(), uint64(cs.Covered)) //nolint:gosec // counts are never negative
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert flags incomplete runs and unreachable institutions.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s model.Summary) {
	switch {
	case s.Skipped > 0:
		md.Cautionf("La ejecución se interrumpió: %d institución(es) no se analizaron.", s.Skipped)
	case s.Unreachable > 0:
		md.Warningf("%d institución(es) sin acceso; sus categorías figuran como \"%s\".", s.Unreachable, NoAccess)
	case s.Total == 0:
		md.Note("No se configuraron instituciones.")
	default:
		md.Tip("Todas las instituciones fueron accesibles.")
	}
	md.PlainText("")
}

// writeSurvey writes one condensed row per institution.
func (w *MarkdownWriter) writeSurvey(md *markdown.Markdown, result *model.SurveyResult) {
	md.H2(SheetSurvey)
	md.PlainText("")

	if len(result.Records) == 0 {
		md.PlainText("Sin instituciones.")
		md.PlainText("")
		return
	}

	header := []string{"Universidad", "País", "Estado", "Idioma"}
	for _, c := range model.AllCategories() {
		header = append(header, c.Short())
	}
	header = append(header, "Coincidencias")

	rows := make([][]string, 0, len(result.Records))
	for _, rec := range result.Records {
		row := []string{
			rec.Institution.Name,
			dash(rec.Institution.Country),
			StatusText(rec.Status),
			dash(rec.Language),
		}
		for _, c := range model.AllCategories() {
			row = append(row, CoveredText(rec, c))
		}
		row = append(row, strconv.Itoa(rec.TotalHits()))
		rows = append(rows, row)
	}

	md.Table(markdown.TableSet{
		Header: header,
		Rows:   rows,
	})
	md.PlainText("")

	legend := make([]string, 0, len(model.AllCategories()))
	for _, c := range model.AllCategories() {
		legend = append(legend, c.Short()+": "+c.Label())
	}
	md.BulletList(legend...)
	md.PlainText("")
}

// writeContexts writes the first snippet of each institution with hits.
func (w *MarkdownWriter) writeContexts(md *markdown.Markdown, result *model.SurveyResult) {
	wrote := false
	for _, rec := range result.Records {
		snippet := firstSnippet(rec)
		if snippet == "" {
			continue
		}
		if !wrote {
			md.H2("Contexto")
			md.PlainText("")
			wrote = true
		}
		md.Details(rec.Institution.Name, snippet)
	}
	if wrote {
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generado por [relevador](https://github.com/nao1215/relevador)*")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
