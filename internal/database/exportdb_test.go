package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/relevador/internal/aggregate"
	"github.com/nao1215/relevador/internal/model"
	"github.com/nao1215/relevador/internal/report"
)

// createTestResult returns a run with one covered and one unreachable institution.
func createTestResult() *model.SurveyResult {
	reviewed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	covered := model.NewInstitutionRecord(model.Institution{
		Name:    "Universitat Jaume I",
		URL:     "https://www.uji.es",
		Country: "España",
	}, reviewed)
	covered.Pages = []model.PageFetchResult{
		{URL: "https://www.uji.es", Kind: model.PageKindHomepage, OK: true, StatusCode: 200, Size: 2048},
		{URL: "https://www.uji.es/recerca/", Kind: model.PageKindSubpage, OK: true, StatusCode: 200, Size: 512},
	}
	covered.Coverage[model.OpenScience] = model.NewCategoryCoverage([]model.TermHit{
		{Term: "open access", Category: model.OpenScience, SourceURL: "https://www.uji.es", Snippet: "open access"},
		{Term: "open data", Category: model.OpenScience, SourceURL: "https://www.uji.es/recerca/", Snippet: "open data"},
	})
	covered.Coverage[model.ScienceDiplomacy] = model.NewCategoryCoverage([]model.TermHit{
		{Term: "cooperación internacional", Category: model.ScienceDiplomacy, SourceURL: "https://www.uji.es", Snippet: "cooperación internacional"},
	})

	unreachable := model.NewInstitutionRecord(model.Institution{
		Name: "Universidad Caída",
		URL:  "https://down.example.edu",
	}, reviewed)
	unreachable.Status = model.StatusUnreachable
	unreachable.Pages = []model.PageFetchResult{
		{URL: "https://down.example.edu", Kind: model.PageKindHomepage, FailureKind: model.FailureTimeout, Failure: "timeout"},
	}

	return aggregate.NewSurveyResult("run-1", reviewed, reviewed.Add(time.Minute),
		[]*model.InstitutionRecord{covered, unreachable})
}

func TestExport(t *testing.T) {
	t.Parallel()

	t.Run("writes all tables", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "out", "relevamiento.db")

		if err := Export(ctx, path, createTestResult()); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		db, err := Open(path, Options{})
		if err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}
		defer db.Close()

		want := map[string]int{
			"relevamiento": 2,
			"resumen":      len(report.NewTables(createTestResult()).Summary.Rows),
			HitsTable:      3,
			PagesTable:     3,
		}
		for table, n := range want {
			got, err := db.CountRows(ctx, table)
			if err != nil {
				t.Fatalf("count %s: %v", table, err)
			}
			if got != n {
				t.Errorf("%s: expected %d rows, got %d", table, n, got)
			}
		}
	})

	t.Run("recreates the file", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "relevamiento.db")

		for range 2 {
			if err := Export(ctx, path, createTestResult()); err != nil {
				t.Fatalf("export failed: %v", err)
			}
		}

		db, err := Open(path, Options{})
		if err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}
		defer db.Close()

		got, err := db.CountRows(ctx, "relevamiento")
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if got != 2 {
			t.Errorf("expected rows of a single run, got %d", got)
		}
	})

	t.Run("stores counts as integers and flags unreachable", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "relevamiento.db")
		if err := Export(ctx, path, createTestResult()); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		db, err := Open(path, Options{})
		if err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}
		defer db.Close()

		var (
			kind  string
			count int
		)
		if err := db.db.QueryRowContext(ctx,
			`SELECT typeof(ca_cantidad), ca_cantidad FROM relevamiento WHERE universidad = ?`,
			"Universitat Jaume I").Scan(&kind, &count); err != nil {
			t.Fatalf("query: %v", err)
		}
		if kind != "integer" || count != 2 {
			t.Errorf("expected integer 2, got %s %d", kind, count)
		}

		var covered string
		if err := db.db.QueryRowContext(ctx,
			`SELECT ciencia_abierta FROM relevamiento WHERE universidad = ?`, "Universidad Caída").Scan(&covered); err != nil {
			t.Fatalf("query: %v", err)
		}
		if covered != report.NoAccess {
			t.Errorf("expected %q, got %q", report.NoAccess, covered)
		}

		var valor string
		if err := db.db.QueryRowContext(ctx,
			`SELECT valor FROM resumen WHERE metrica = ?`, "ID de ejecución").Scan(&valor); err != nil {
			t.Fatalf("query: %v", err)
		}
		if valor != "run-1" {
			t.Errorf("expected run id, got %q", valor)
		}
	})

	t.Run("fails on an unwritable path", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
		if err := Export(context.Background(), filepath.Join(blocker, "out.db"), createTestResult()); err == nil {
			t.Error("expected an error when the parent is a file")
		}
	})
}

func TestIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Universidad", "universidad"},
		{"País", "pais"},
		{"Fecha Revisión", "fecha_revision"},
		{"CA - Cantidad", "ca_cantidad"},
		{"Muestra de términos", "muestra_de_terminos"},
		{"URLs analizadas", "urls_analizadas"},
		{"Comunicación Pública", "comunicacion_publica"},
		{"  ", "col"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := identifier(tt.in); got != tt.want {
				t.Errorf("identifier(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestColumnNames(t *testing.T) {
	t.Parallel()

	got := columnNames([]string{"Id", "Valor", "valor", "Run ID"})
	want := []string{"id_2", "valor", "valor_2", "run_id_2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
