package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/nao1215/relevador/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
// Tables are drawn with ASCII borders so the output can be piped to files.
type SimpleWriter struct {
	baseWriter

	// verbose adds the full Relevamiento table and the failure reasons.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the result in human-readable format.
func (w *SimpleWriter) Write(result *model.SurveyResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)

	if err := w.writeInstitutions(&sb, result); err != nil {
		return 0, err
	}
	if err := w.writeSummary(&sb, result); err != nil {
		return 0, err
	}
	if w.verbose {
		w.writeFailures(&sb, result)
	}

	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.SurveyResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                  RELEVAMIENTO DE UNIVERSIDADES\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Ejecución:      %s\n", result.RunID)
	fmt.Fprintf(sb, "Inicio:         %s\n", formatTime(result.StartedAt))
	fmt.Fprintf(sb, "Duración:       %s\n", result.Duration().String())
	fmt.Fprintf(sb, "Instituciones:  %d\n", result.Summary.Total)
	if result.Summary.Skipped > 0 {
		fmt.Fprintf(sb, "Estado:         INTERRUMPIDA (%d omitidas)\n", result.Summary.Skipped)
	} else {
		sb.WriteString("Estado:         Completa\n")
	}
	sb.WriteString("\n")
}

// writeSection writes a section title.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeInstitutions writes one row per institution.
func (w *SimpleWriter) writeInstitutions(sb *strings.Builder, result *model.SurveyResult) error {
	w.writeSection(sb, strings.ToUpper(SheetSurvey))

	if w.verbose {
		t := NewTables(result).Survey
		return renderTable(sb, t.Header, t.Rows)
	}

	header := []string{"Universidad", "País", "Estado"}
	for _, c := range model.AllCategories() {
		header = append(header, c.Short())
	}
	header = append(header, "Coincidencias", "Páginas", "Descargado")

	rows := make([][]string, 0, len(result.Records))
	for _, rec := range result.Records {
		row := []string{rec.Institution.Name, rec.Institution.Country, StatusText(rec.Status)}
		for _, c := range model.AllCategories() {
			row = append(row, CoveredText(rec, c))
		}
		row = append(row,
			humanize.Comma(int64(rec.TotalHits())),
			strconv.Itoa(len(rec.FetchedURLs()))+"/"+strconv.Itoa(len(rec.Pages)),
			humanize.Bytes(downloaded(rec)),
		)
		rows = append(rows, row)
	}
	return renderTable(sb, header, rows)
}

// writeSummary writes the Resumen table.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, result *model.SurveyResult) error {
	w.writeSection(sb, strings.ToUpper(SheetSummary))
	t := NewTables(result).Summary
	return renderTable(sb, t.Header, t.Rows)
}

// writeFailures lists the failure reason of every institution without access.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, result *model.SurveyResult) {
	failed := make([]*model.InstitutionRecord, 0)
	for _, rec := range result.Records {
		if !rec.Reachable() {
			failed = append(failed, rec)
		}
	}
	if len(failed) == 0 {
		return
	}

	w.writeSection(sb, "SIN ACCESO")
	for _, rec := range failed {
		fmt.Fprintf(sb, "  [%s] %s\n", StatusText(rec.Status), rec.Institution.Name)
		if rec.FailureReason != "" {
			fmt.Fprintf(sb, "    %s\n", rec.FailureReason)
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Generado por relevador\n")
	sb.WriteString("https://github.com/nao1215/relevador\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// renderTable draws header and rows with tablewriter.
func renderTable(sb *strings.Builder, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(sb)
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	table.Header(cells...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to add table row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	sb.WriteString("\n")
	return nil
}

// downloaded returns the number of bytes fetched for rec.
func downloaded(rec *model.InstitutionRecord) uint64 {
	var total uint64
	for _, p := range rec.Pages {
		if p.Size > 0 {
			total += uint64(p.Size)
		}
	}
	return total
}
