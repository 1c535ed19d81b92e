package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nao1215/relevador/internal/aggregate"
	"github.com/nao1215/relevador/internal/config"
	"github.com/nao1215/relevador/internal/database"
	"github.com/nao1215/relevador/internal/fetcher"
	"github.com/nao1215/relevador/internal/model"
	"github.com/nao1215/relevador/internal/report"
	"github.com/nao1215/relevador/internal/scanner"
	"github.com/nao1215/relevador/internal/survey"
)

// NewSurveyCmd creates the survey command.
func NewSurveyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Survey the configured institutions and write the report",
		Long: `Survey fetches the homepage of every institution in the survey file,
follows up to --max-subpages related links on the same site, and looks for
the keywords of each category on every fetched page.

The report has one row per institution (Relevamiento) and aggregate
statistics (Resumen). Institutions whose homepage could not be fetched are
reported as "Sin acceso", never as uncovered.

Interrupting the run (Ctrl+C) finishes the institution in progress, marks
the rest as skipped and still writes the report.

Examples:
  # Survey using .relevador.yaml from the current or home directory
  relevador survey

  # Write a Markdown report to stdout
  relevador survey --format markdown

  # Use another survey file and write a SQLite database
  relevador survey -c surveys/latam.yaml --format sqlite -o latam.db

  # Write the workbook and a JSON copy as out/latam.xlsx and out/latam.json
  relevador survey --format xlsx,json -o out/latam

  # Survey four institutions at a time, two seconds between requests
  relevador survey --concurrency 4 --delay 2s`,
		Args: cobra.NoArgs,
		RunE: runSurveyCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Survey file path (default: .relevador.yaml in current or home directory, or the XDG config dir)")

	// Report flags
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		"Report format: xlsx, markdown, text, json or sqlite; several separated by commas")
	cmd.Flags().StringP("output", "o", "",
		"Report file path, or base name when several formats are given (default: generated name for xlsx and sqlite, stdout otherwise)")

	// Request flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Duration("delay", config.DefaultRequestDelay,
		"Pause before each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Bool("no-robots", false,
		"Do not check robots.txt before fetching sub-pages")

	// Survey flags
	cmd.Flags().IntP("max-subpages", "s", config.DefaultMaxSubpages,
		"Maximum number of sub-pages fetched per institution")
	cmd.Flags().Bool("allow-external", false,
		"Follow sub-page links to other hosts")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of institutions surveyed at the same time")
	cmd.Flags().Int("snippet-radius", config.DefaultSnippetRadius,
		"Characters of context kept on each side of a keyword")
	cmd.Flags().Int("max-hits", config.DefaultMaxHitsPerPage,
		"Maximum hits per page and category (0 for no limit)")

	return cmd
}

// runSurveyCmd executes the survey command.
func runSurveyCmd(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(cmd)
	slog.SetDefault(logger)

	cfg, plan, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing the institution in progress")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runSurvey(ctx, cmd, cfg, plan, logger)
}

// buildConfig creates a Config from defaults, the survey file and the flags,
// in that order. Flags only override the file when given explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, *config.Survey, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, nil, err
	}

	plan, err := loadSurvey(cfg)
	if err != nil {
		return nil, nil, err
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, nil, err
		}
	}
	if flags.Changed("delay") {
		if cfg.RequestDelay, err = flags.GetDuration("delay"); err != nil {
			return nil, nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, nil, err
		}
	}
	if flags.Changed("no-robots") {
		noRobots, err := flags.GetBool("no-robots")
		if err != nil {
			return nil, nil, err
		}
		cfg.RespectRobots = !noRobots
	}
	if flags.Changed("max-subpages") {
		if cfg.MaxSubpages, err = flags.GetInt("max-subpages"); err != nil {
			return nil, nil, err
		}
	}
	if flags.Changed("allow-external") {
		external, err := flags.GetBool("allow-external")
		if err != nil {
			return nil, nil, err
		}
		cfg.SameHostOnly = !external
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, nil, err
		}
	}
	if flags.Changed("snippet-radius") {
		if cfg.SnippetRadius, err = flags.GetInt("snippet-radius"); err != nil {
			return nil, nil, err
		}
	}
	if flags.Changed("max-hits") {
		if cfg.MaxHitsPerPage, err = flags.GetInt("max-hits"); err != nil {
			return nil, nil, err
		}
	}

	if cfg.Format, err = flags.GetString("format"); err != nil {
		return nil, nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, nil, err
	}
	cfg.Verbose = getBoolFlag(cmd, "verbose")

	return cfg, plan, nil
}

// loadSurvey finds and loads the survey file and applies its settings to cfg.
// An explicit path that does not exist is an error, as is finding no file at all.
func loadSurvey(cfg *config.Config) (*config.Survey, error) {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil, fmt.Errorf("%w (run 'relevador init' to create %s)",
			config.ErrConfigNotFound, config.DefaultConfigFile)
	}

	file, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey file %s: %w", path, err)
	}
	cfg.ApplySettings(file.Settings)

	plan, err := file.Survey()
	if err != nil {
		return nil, fmt.Errorf("invalid survey file %s: %w", path, err)
	}
	return plan, nil
}

// keywordMap returns the keyword lists of plan by category.
func keywordMap(plan *config.Survey) map[model.Category][]string {
	keywords := make(map[model.Category][]string, len(model.AllCategories()))
	for _, c := range model.AllCategories() {
		keywords[c] = plan.Keywords(c)
	}
	return keywords
}

// newSurveyor wires the fetcher, the scanner and the surveyor from cfg.
func newSurveyor(cfg *config.Config, plan *config.Survey, logger *slog.Logger) *survey.Surveyor {
	f := fetcher.New(nil,
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithDelay(cfg.RequestDelay),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithHeaders(cfg.Headers),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithRobots(cfg.RespectRobots),
		fetcher.WithLogger(logger),
	)

	sc := scanner.New(
		scanner.WithSnippetRadius(cfg.SnippetRadius),
		scanner.WithMaxHitsPerPage(cfg.MaxHitsPerPage),
	)

	return survey.NewSurveyor(f, keywordMap(plan), plan.Hints(),
		survey.WithScanner(sc),
		survey.WithMaxSubpages(cfg.MaxSubpages),
		survey.WithSameHostOnly(cfg.SameHostOnly),
		survey.WithLogger(logger),
	)
}

// runSurvey surveys every institution and writes the report.
// The report is written even when the run was interrupted.
func runSurvey(ctx context.Context, cmd *cobra.Command, cfg *config.Config, plan *config.Survey, logger *slog.Logger) error {
	institutions := plan.Institutions()
	progress := cmd.ErrOrStderr()

	fmt.Fprintf(progress, "Surveying %d institution(s) for %d keywords (concurrency: %d, delay: %s)...\n\n",
		len(institutions), plan.KeywordCount(), cfg.Concurrency, cfg.RequestDelay)

	runner := survey.NewRunner(newSurveyor(cfg, plan, logger),
		survey.WithConcurrency(cfg.Concurrency),
		survey.WithRunnerLogger(logger),
		survey.WithProgress(func(done, total int, rec *model.InstitutionRecord) {
			fmt.Fprintf(progress, "[%d/%d] %s: %s (%d hits)\n",
				done, total, rec.Institution.Name, report.StatusText(rec.Status), rec.TotalHits())
		}),
	)

	started := time.Now()
	records, runErr := runner.Run(ctx, institutions)
	result := aggregate.NewSurveyResult(uuid.NewString(), started, time.Now(), records)

	fmt.Fprintf(progress, "\nSurvey completed in %s\n", result.Duration().Round(time.Millisecond))

	// The export must not be cut short by the cancellation that ended the run.
	paths, err := writeReports(context.WithoutCancel(ctx), cmd.OutOrStdout(), cfg, result)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintf(progress, "Report written to %s\n", path)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("survey interrupted, %d institution(s) skipped: %w", result.Summary.Skipped, runErr)
		}
		return runErr
	}
	return nil
}

// isFileFormat reports whether format cannot be written to a terminal.
func isFileFormat(format string) bool {
	return format == config.FormatXLSX || format == config.FormatSQLite
}

// reportExt returns the file extension of format.
func reportExt(format string) string {
	switch format {
	case config.FormatMarkdown:
		return ".md"
	case config.FormatText:
		return ".txt"
	case config.FormatJSON:
		return ".json"
	case config.FormatSQLite:
		return ".db"
	default:
		return ".xlsx"
	}
}

// defaultReportFile returns the generated report name for a run started at t.
func defaultReportFile(format string, t time.Time) string {
	return "relevamiento_" + t.Format("20060102_150405") + reportExt(format)
}

// reportPath returns where format is written, or "" for stdout.
// With several formats, output is a base name whose extension is replaced
// per format (-o out/relevamiento gives relevamiento.xlsx, relevamiento.json).
func reportPath(output, format string, multi bool, started time.Time) string {
	switch {
	case output != "" && multi:
		return strings.TrimSuffix(output, filepath.Ext(output)) + reportExt(format)
	case output != "":
		return output
	case isFileFormat(format):
		return defaultReportFile(format, started)
	default:
		return ""
	}
}

// newReportWriter returns the writer for format.
func newReportWriter(format string, verbose bool, out io.Writer) report.Writer {
	switch format {
	case config.FormatMarkdown:
		return report.NewMarkdownWriter(out)
	case config.FormatText:
		return report.NewSimpleWriter(out, report.WithVerbose(verbose))
	case config.FormatJSON:
		return report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	default:
		return report.NewXLSXWriter(out)
	}
}

// createReportFile creates path and its parent directory.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// writeReports writes result in every configured format and returns the
// files written. Formats without a file go to stdout, in the order given.
func writeReports(ctx context.Context, stdout io.Writer, cfg *config.Config, result *model.SurveyResult) (paths []string, err error) {
	formats := cfg.ReportFormats()
	multi := len(formats) > 1

	var (
		writers []report.Writer
		files   []*os.File
	)
	defer func() {
		for _, f := range files {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}
	}()

	for _, format := range formats {
		path := reportPath(cfg.ReportFile, format, multi, result.StartedAt)

		if format == config.FormatSQLite {
			if err := database.Export(ctx, path, result); err != nil {
				return nil, fmt.Errorf("failed to export database: %w", err)
			}
			paths = append(paths, path)
			continue
		}

		if path == "" {
			writers = append(writers, newReportWriter(format, cfg.Verbose, stdout))
			continue
		}

		f, err := createReportFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
		writers = append(writers, newReportWriter(format, cfg.Verbose, f))
		paths = append(paths, path)
	}

	if _, err := report.NewMultiWriter(writers...).Write(result); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return paths, nil
}
