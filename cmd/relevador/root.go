package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/relevador/internal/log"
)

// NewRootCmd creates the root command for relevador.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relevador",
		Short: "Survey university websites for science engagement keywords",
		Long: `relevador visits each configured university homepage and a few related
sub-pages, looks for multilingual keywords in three categories (Ciencia
Abierta, Comunicación Pública, Diplomacia Científica) and writes a report
with one row per institution plus aggregate statistics.

Requests are sequential by default and separated by a politeness delay.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewSurveyCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewKeywordsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags, false when neither defines it.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// setupLogger creates the secure logger selected by the global flags.
// Logs go to the command's stderr so that reports on stdout stay clean.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getBoolFlag(cmd, "verbose")
	if getBoolFlag(cmd, "log-json") {
		return log.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}
