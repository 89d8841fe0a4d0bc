package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/termstore/internal/config"
)

func init() {
	rootCmd.AddCommand(newConfigCmd())
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `The config command prints the configuration termctl would run with:
the defaults, overlaid with the file given by --config.

Example:
  termctl config > termctl.toml
  termctl config --config termctl.toml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig()
		},
	}
	return cmd
}

func runConfig() error {
	f, err := loadConfig()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(f)
	}
	return config.Write(stdout, f)
}
