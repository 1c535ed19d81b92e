package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/relevador/internal/config"
	"github.com/nao1215/relevador/internal/model"
)

// NewKeywordsCmd creates the keywords command.
func NewKeywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Print the keyword and hint lists a survey would use",
		Long: `Keywords prints, per category, the keywords searched on every page, and
the hints used to pick sub-pages. Lists come from the survey file when one
is found and from the built-in multilingual lists otherwise.

Examples:
  relevador keywords
  relevador keywords -c surveys/latam.yaml
  relevador keywords --category open_science`,
		Args: cobra.NoArgs,
		RunE: runKeywordsCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Survey file path (default: .relevador.yaml in current or home directory)")
	cmd.Flags().String("category", "",
		"Print only this category (open_science, public_communication, science_diplomacy)")

	return cmd
}

// runKeywordsCmd executes the keywords command.
func runKeywordsCmd(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	only, err := cmd.Flags().GetString("category")
	if err != nil {
		return err
	}

	categories := model.AllCategories()
	if only != "" {
		c, err := model.ParseCategory(only)
		if err != nil {
			return err
		}
		categories = []model.Category{c}
	}

	plan, source, err := keywordSource(configPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source: %s\n\n", source)
	for _, c := range categories {
		terms := plan.Keywords(c)
		fmt.Fprintf(out, "%s (%s, %s): %d keywords\n", c.Label(), c, c.Short(), len(terms))
		printList(out, terms)
	}
	if only == "" {
		fmt.Fprintf(out, "Total: %d keywords in %d categories\n\n", plan.KeywordCount(), len(categories))
		hints := plan.Hints()
		fmt.Fprintf(out, "Sub-page hints: %d\n", len(hints))
		printList(out, hints)
	}
	return nil
}

// keywordSource loads the survey file, or falls back to the built-in
// lists when no file is found and none was named.
func keywordSource(configPath string) (*config.Survey, string, error) {
	if config.FindConfigFile(configPath) == "" && configPath == "" {
		plan, err := config.NewSurvey(config.DefaultInstitutions(), config.DefaultKeywords(), config.DefaultHints())
		return plan, "built-in lists", err
	}

	cfg := config.NewConfig()
	cfg.ConfigFilePath = configPath
	plan, err := loadSurvey(cfg)
	if err != nil {
		return nil, "", err
	}
	return plan, config.FindConfigFile(configPath), nil
}

func printList(out io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
	fmt.Fprintln(out)
}
