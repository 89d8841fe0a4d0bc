package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/termstore/internal/config"
	"github.com/joshuapare/termstore/internal/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "termctl",
	Short: "Exercise and inspect a hash-consed term store",
	Long: `termctl drives a termstore heap: it runs synthetic allocation
workloads against the generational collector, reports heap and collector
statistics, prints terms, and dumps the effective configuration.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a termctl.toml file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Enable collector logging at this level (debug, info, warn)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig returns the file named by --config, or the defaults, and
// initializes logging from it. --log-level overrides the file.
func loadConfig() (*config.File, error) {
	f := config.Default()
	if configPath != "" {
		var err error
		if f, err = config.Load(configPath); err != nil {
			return nil, err
		}
		printVerbose("Loaded config: %s\n", configPath)
	}
	if logLevel != "" {
		f.Log.Enabled = true
		f.Log.Level = logLevel
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	logger.Init(f.Log.LoggerOptions())
	return f, nil
}

// Helper functions for output

// stdout is where command output goes; tests swap it.
var stdout io.Writer = os.Stdout

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
