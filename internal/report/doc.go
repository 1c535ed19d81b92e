// Package report renders a survey result.
//
// NewTables projects a result into the two tables every format shares:
// Relevamiento, with one row per institution, and Resumen, with one
// Métrica / Valor row per statistic. The writers then lay those tables out:
//   - XLSXWriter: Excel workbook with one sheet per table
//   - MarkdownWriter: Markdown document with a coverage chart
//   - SimpleWriter: plain text tables for terminal display
//   - JSONWriter: the full result, for tool integration
//
// An institution whose homepage could not be fetched is shown as
// "Sin acceso" in every category column, never as "No".
package report
