package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/relevador/internal/config"
)

//go:embed templates/relevador.yaml
var configTemplate embed.FS

// templatePath is the template's path inside configTemplate.
const templatePath = "templates/relevador.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a survey file",
		Long: `Init writes a .relevador.yaml survey file to the current directory.

The generated file includes:
- The default run settings (timeout, delay, sub-pages, concurrency)
- The control institution
- Commented examples for custom keyword and hint lists

Examples:
  # Create .relevador.yaml in the current directory
  relevador init

  # Create the file at a specific path
  relevador init -o surveys/latam.yaml

  # Overwrite an existing file
  relevador init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the survey file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite an existing file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("survey file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read survey file template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write survey file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created survey file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to:")
	fmt.Fprintln(out, "  - List the institutions to survey")
	fmt.Fprintln(out, "  - Adjust the request delay and timeout")
	fmt.Fprintln(out, "  - Replace keyword or hint lists")
	fmt.Fprintln(out, "\nThen run: relevador survey")

	return nil
}
