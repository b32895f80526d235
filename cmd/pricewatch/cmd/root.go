// Package cmd implements the pricewatch CLI commands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/pricewatch/pkg/logging"
)

// Version information set by main.
var (
	// Version is the build version.
	Version = "dev"
	// Commit is the build commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// SetVersion records the build information shown by the version command.
func SetVersion(version, commit, date string) {
	Version, Commit, Date = version, commit, date
}

var (
	configFile string
	formatFlag string
	outputFile string
	verbose    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pricewatch",
	Short: "Reconcile Poe model pricing against reference providers",
	Long: `Pricewatch reconciles the Poe model catalog against reference pricing
providers and tracks how the catalog changes release to release.

It classifies every provider's pricing per model as accepted, rejected,
missing, or disabled with machine-checkable reasons, derives MSRP fields
from the selected provider, and diffs catalog snapshots into changelog
entries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupEnv()
		setupLogging()
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		logging.Error().Err(err).Msg("command failed")
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default config/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
}

// setupEnv loads .env files and binds environment variables, mirroring the
// precedence flags > env > .env > defaults.
func setupEnv() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setupLogging configures the default logger from flags and environment.
func setupLogging() {
	level := zerolog.InfoLevel
	if envLevel := viper.GetString("log_level"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.WarnLevel
	}

	zerolog.SetGlobalLevel(level)

	if viper.GetString("log_format") == "json" {
		logging.SetDefault(logging.NewJSON(os.Stderr).Level(level))
		return
	}
	logging.SetDefault(logging.NewConsole().Level(level))
}

// outputWriter resolves the destination for command output.
func outputWriter() (*os.File, func(), error) {
	if outputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
