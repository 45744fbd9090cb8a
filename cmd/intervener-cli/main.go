// Package main provides the InterveneR CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/roadwise-ai/intervener/internal/config"
	"github.com/roadwise-ai/intervener/internal/kb"
	"github.com/roadwise-ai/intervener/internal/observability"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "intervener",
	Short: "InterveneR CLI for road-safety intervention recommendations",
	Long: `InterveneR CLI recommends IRC-aligned road safety interventions for
free-text issue descriptions.

Use this tool to:
- Query the knowledge base for ranked intervention recommendations
- Inspect and administer the intervention catalogue
- Import the seed CSV catalogue into a SQLite database
- Generate plain-text or JSON recommendation reports

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logLevel := cfg.Observability.LogLevel
		if !verbose {
			logLevel = "warn"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       logLevel,
			Format:      logFormat,
			ServiceName: "intervener-cli",
		})

		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newKBCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore loads the knowledge base from the configured source.
func openStore(cmd *cobra.Command) (*kb.Store, error) {
	switch cfg.KB.Source {
	case "sqlite":
		return kb.LoadSQLite(cmd.Context(), cfg.KB.Path)
	default:
		return kb.LoadCSV(cfg.KB.Path)
	}
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				fmt.Println(`{"name":"intervener","version":"1.0.0"}`)
				return
			}
			fmt.Println("InterveneR v1.0")
		},
	}
}
