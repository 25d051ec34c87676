package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/version"
)

// logger is the application-wide structured logger (writes to stderr)
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
	Prefix:          "jsboard",
})

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errorMessage(err))
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jsboard",
		Short: "jsboard - JavaScript/TypeScript code health dashboard",
		Long: `jsboard runs eslint, dependency-cruiser, knip and a line counter over a
JavaScript/TypeScript project and merges their reports into one snapshot:
largest files, complex functions, oversized files and functions, circular
dependencies, dead code and language composition.`,
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// exitCode maps errors to process exit codes: 2 for configuration and
// input problems, 3 when no snapshot exists yet, 1 otherwise
func exitCode(err error) int {
	var de domain.DomainError
	switch {
	case errors.Is(err, domain.ErrNotReady), errors.Is(err, domain.ErrNotFound):
		return 3
	case errors.As(err, &de) && isUsageError(de.Code):
		return 2
	default:
		return 1
	}
}

func isUsageError(code string) bool {
	switch code {
	case domain.ErrCodeConfigError, domain.ErrCodeInvalidInput, domain.ErrCodeUnsupportedFormat:
		return true
	}
	return false
}

func errorMessage(err error) string {
	if errors.Is(err, domain.ErrNotReady) {
		return "no snapshot for this project yet; run 'jsboard analyze' first"
	}
	return err.Error()
}

func versionCmd() *cobra.Command {
	var verbose, asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case verbose:
				fmt.Fprintln(out, info.Long())
			default:
				fmt.Fprintln(out, info.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed version information")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")
	return cmd
}
