package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/relevador/internal/config"
	"github.com/nao1215/relevador/internal/report"
)

const homepageHTML = `<!DOCTYPE html>
<html lang="es">
<head><title>Universidad de Prueba</title></head>
<body>
<p>Nuestra universidad impulsa la ciencia abierta y el acceso abierto.</p>
<a href="/investigacion">Investigación</a>
<a href="https://elsewhere.example.org/research">Research partners</a>
</body>
</html>`

const researchHTML = `<html><body>
<p>La divulgación científica y la diplomacia científica son prioridades.</p>
</body></html>`

// newUniversityServer serves a homepage with one research sub-page.
func newUniversityServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, homepageHTML)
	})
	mux.HandleFunc("/investigacion", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, researchHTML)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// closedURL returns the URL of a server that is no longer listening.
func closedURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}

// writeSurveyFile writes a survey file with a reachable and an unreachable institution.
func writeSurveyFile(t *testing.T, reachable, unreachable string, settings string) string {
	t.Helper()

	content := fmt.Sprintf(`settings:
  request_delay: 0s
  timeout: 2s
%s
institutions:
  - name: "Universidad de Prueba"
    url: %q
    country: "Argentina"
  - name: "Universidad Caída"
    url: %q
    country: "Chile"
`, settings, reachable, unreachable)

	path := filepath.Join(t.TempDir(), "survey.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// runRoot executes the root command and returns stdout, stderr and the error.
func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("file settings apply, explicit flags win", func(t *testing.T) {
		t.Parallel()

		path := writeSurveyFile(t, "https://a.example.edu", "https://b.example.edu",
			"  concurrency: 2\n  max_subpages: 5")

		cmd := NewSurveyCmd()
		if err := cmd.ParseFlags([]string{"-c", path, "--max-subpages", "1", "--no-robots"}); err != nil {
			t.Fatal(err)
		}

		cfg, plan, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Timeout != 2*time.Second {
			t.Errorf("expected timeout from file, got %v", cfg.Timeout)
		}
		if cfg.RequestDelay != 0 {
			t.Errorf("expected zero delay from file, got %v", cfg.RequestDelay)
		}
		if cfg.Concurrency != 2 {
			t.Errorf("expected concurrency from file, got %d", cfg.Concurrency)
		}
		if cfg.MaxSubpages != 1 {
			t.Errorf("expected max subpages from flag, got %d", cfg.MaxSubpages)
		}
		if cfg.RespectRobots {
			t.Error("expected robots check disabled by flag")
		}
		if !cfg.SameHostOnly {
			t.Error("expected same-host restriction by default")
		}
		if cfg.Format != config.FormatXLSX {
			t.Errorf("expected default format, got %s", cfg.Format)
		}
		if len(plan.Institutions()) != 2 {
			t.Errorf("expected 2 institutions, got %d", len(plan.Institutions()))
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()

		cmd := NewSurveyCmd()
		if err := cmd.ParseFlags([]string{"-c", filepath.Join(t.TempDir(), "nope.yaml")}); err != nil {
			t.Fatal(err)
		}
		if _, _, err := buildConfig(cmd); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid survey file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		content := "institutions:\n  - name: \"\"\n    url: \"https://a.example.edu\"\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewSurveyCmd()
		if err := cmd.ParseFlags([]string{"-c", path}); err != nil {
			t.Fatal(err)
		}
		_, _, err := buildConfig(cmd)
		if !errors.Is(err, config.ErrEmptyName) {
			t.Errorf("expected ErrEmptyName, got %v", err)
		}
		var cfgErr *config.Error
		if !errors.As(err, &cfgErr) {
			t.Errorf("expected *config.Error, got %T", err)
		}
	})
}

func TestSurveyCmd(t *testing.T) {
	t.Parallel()

	t.Run("json report on stdout", func(t *testing.T) {
		t.Parallel()

		srv := newUniversityServer(t)
		path := writeSurveyFile(t, srv.URL, closedURL(t), "")

		stdout, stderr, err := runRoot(t, "survey", "-c", path, "--format", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, stderr)
		}

		var decoded struct {
			Result struct {
				RunID   string `json:"run_id"`
				Records []struct {
					Status   string `json:"status"`
					Language string `json:"language"`
					Coverage map[string]struct {
						Covered bool `json:"covered"`
						Count   int  `json:"count"`
					} `json:"coverage"`
					Pages []struct {
						URL string `json:"url"`
						OK  bool   `json:"ok"`
					} `json:"pages"`
				} `json:"records"`
				Summary struct {
					Total       int `json:"total"`
					Reachable   int `json:"reachable"`
					Unreachable int `json:"unreachable"`
				} `json:"summary"`
			} `json:"result"`
		}
		if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
			t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
		}

		res := decoded.Result
		if res.RunID == "" {
			t.Error("expected a run id")
		}
		if res.Summary.Total != 2 || res.Summary.Reachable != 1 || res.Summary.Unreachable != 1 {
			t.Errorf("unexpected summary %+v", res.Summary)
		}
		if len(res.Records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(res.Records))
		}

		ok := res.Records[0]
		if ok.Status != "reachable" || ok.Language != "es" {
			t.Errorf("unexpected first record status=%s language=%s", ok.Status, ok.Language)
		}
		for _, key := range []string{"open_science", "public_communication", "science_diplomacy"} {
			if !ok.Coverage[key].Covered {
				t.Errorf("expected %s covered", key)
			}
		}
		if len(ok.Pages) != 2 || !strings.HasSuffix(ok.Pages[1].URL, "/investigacion") {
			t.Errorf("expected homepage and the same-host research page, got %+v", ok.Pages)
		}

		if res.Records[1].Status != "unreachable" {
			t.Errorf("expected second record unreachable, got %s", res.Records[1].Status)
		}
		if !strings.Contains(stderr, "[2/2]") {
			t.Errorf("expected progress on stderr, got %q", stderr)
		}
	})

	t.Run("xlsx report file", func(t *testing.T) {
		t.Parallel()

		srv := newUniversityServer(t)
		path := writeSurveyFile(t, srv.URL, closedURL(t), "")
		out := filepath.Join(t.TempDir(), "reports", "relevamiento.xlsx")

		_, stderr, err := runRoot(t, "survey", "-c", path, "-o", out)
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, stderr)
		}
		if !strings.Contains(stderr, "Report written to "+out) {
			t.Errorf("expected report path on stderr, got %q", stderr)
		}

		f, err := excelize.OpenFile(out)
		if err != nil {
			t.Fatalf("failed to open workbook: %v", err)
		}
		defer f.Close()

		rows, err := f.GetRows(report.SheetSurvey)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected header and 2 rows, got %d", len(rows))
		}
		if rows[2][column(t, rows[0], "Ciencia Abierta")] != report.NoAccess {
			t.Errorf("expected unreachable institution flagged as %s", report.NoAccess)
		}
		if _, err := f.GetRows(report.SheetSummary); err != nil {
			t.Errorf("expected summary sheet: %v", err)
		}
	})

	t.Run("sqlite export", func(t *testing.T) {
		t.Parallel()

		srv := newUniversityServer(t)
		path := writeSurveyFile(t, srv.URL, closedURL(t), "")
		out := filepath.Join(t.TempDir(), "relevamiento.db")

		if _, stderr, err := runRoot(t, "survey", "-c", path, "--format", "sqlite", "-o", out); err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, stderr)
		}
		info, err := os.Stat(out)
		if err != nil {
			t.Fatalf("expected database file: %v", err)
		}
		if info.Size() == 0 {
			t.Error("expected a non-empty database")
		}
	})

	t.Run("several formats share one base name", func(t *testing.T) {
		t.Parallel()

		srv := newUniversityServer(t)
		path := writeSurveyFile(t, srv.URL, closedURL(t), "")
		base := filepath.Join(t.TempDir(), "out", "relevamiento")

		stdout, stderr, err := runRoot(t, "survey", "-c", path, "--format", "xlsx,json,sqlite", "-o", base)
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, stderr)
		}
		if stdout != "" {
			t.Errorf("expected nothing on stdout, got %q", stdout)
		}
		for _, ext := range []string{".xlsx", ".json", ".db"} {
			if _, err := os.Stat(base + ext); err != nil {
				t.Errorf("expected %s: %v", base+ext, err)
			}
			if !strings.Contains(stderr, "Report written to "+base+ext) {
				t.Errorf("expected %s reported on stderr", base+ext)
			}
		}

		data, err := os.ReadFile(base + ".json")
		if err != nil {
			t.Fatal(err)
		}
		if !json.Valid(data) {
			t.Error("expected valid JSON report")
		}
	})

	t.Run("several formats on stdout", func(t *testing.T) {
		t.Parallel()

		srv := newUniversityServer(t)
		path := writeSurveyFile(t, srv.URL, closedURL(t), "")

		stdout, stderr, err := runRoot(t, "survey", "-c", path, "--format", "text,markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, stderr)
		}
		text := strings.Index(stdout, "RELEVAMIENTO DE UNIVERSIDADES")
		md := strings.Index(stdout, "# Relevamiento de universidades")
		if text < 0 || md < 0 || text > md {
			t.Errorf("expected text then markdown report on stdout, got %q", stdout)
		}
	})

	t.Run("text report with verbose and json logs", func(t *testing.T) {
		t.Parallel()

		srv := newUniversityServer(t)
		path := writeSurveyFile(t, srv.URL, closedURL(t), "")

		stdout, stderr, err := runRoot(t, "-v", "--log-json", "survey", "-c", path, "--format", "text")
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, stderr)
		}
		if !strings.Contains(stdout, "RELEVAMIENTO DE UNIVERSIDADES") {
			t.Errorf("expected text report on stdout, got %q", stdout)
		}
		if !strings.Contains(stdout, "Universidad Caída") {
			t.Error("expected unreachable institution in report")
		}
		if !strings.Contains(stderr, `"msg":"institution surveyed"`) {
			t.Errorf("expected JSON logs on stderr, got %q", stderr)
		}
	})

	t.Run("unknown format is rejected before any request", func(t *testing.T) {
		t.Parallel()

		var hits int
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			hits++
		}))
		defer srv.Close()
		path := writeSurveyFile(t, srv.URL, closedURL(t), "")

		_, _, err := runRoot(t, "survey", "-c", path, "--format", "pdf")
		if !errors.Is(err, config.ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
		if hits != 0 {
			t.Errorf("expected no requests, got %d", hits)
		}
	})
}

func TestRunSurveyCancelled(t *testing.T) {
	t.Parallel()

	srv := newUniversityServer(t)
	path := writeSurveyFile(t, srv.URL, closedURL(t), "")
	out := filepath.Join(t.TempDir(), "partial.json")

	cmd := NewSurveyCmd()
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.ParseFlags([]string{"-c", path, "--format", "json", "-o", out}); err != nil {
		t.Fatal(err)
	}
	cfg, plan, err := buildConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = runSurvey(ctx, cmd, cfg, plan, setupLogger(cmd))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected the report to be written after cancellation: %v", err)
	}
	if strings.Count(string(data), `"status": "skipped"`) != 2 {
		t.Errorf("expected both institutions skipped, got %s", data)
	}
}

func TestDefaultReportFile(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 10, 4, 5, 0, time.UTC)
	if got := defaultReportFile(config.FormatXLSX, at); got != "relevamiento_20250301_100405.xlsx" {
		t.Errorf("unexpected xlsx name %q", got)
	}
	if got := defaultReportFile(config.FormatSQLite, at); got != "relevamiento_20250301_100405.db" {
		t.Errorf("unexpected sqlite name %q", got)
	}
}

func TestReportPath(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 10, 4, 5, 0, time.UTC)
	tests := []struct {
		name   string
		output string
		format string
		multi  bool
		want   string
	}{
		{"explicit file", "informe.xlsx", config.FormatXLSX, false, "informe.xlsx"},
		{"explicit file keeps any extension", "informe.out", config.FormatJSON, false, "informe.out"},
		{"base name per format", "out/informe.xlsx", config.FormatMarkdown, true, "out/informe.md"},
		{"base name without extension", "out/informe", config.FormatSQLite, true, "out/informe.db"},
		{"generated workbook name", "", config.FormatXLSX, true, "relevamiento_20250301_100405.xlsx"},
		{"text goes to stdout", "", config.FormatText, false, ""},
		{"json goes to stdout", "", config.FormatJSON, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := reportPath(tt.output, tt.format, tt.multi, at); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// column returns the index of name in header, failing the test when absent.
func column(t *testing.T, header []string, name string) int {
	t.Helper()
	for i, h := range header {
		if h == name {
			return i
		}
	}
	t.Fatalf("column %q not found in %v", name, header)
	return -1
}
