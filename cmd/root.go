package cmd

import (
	"fmt"
	"os"

	"secscan-go/internal/configuration"
	"secscan-go/pkg/log"

	"github.com/spf13/cobra"
)

const VERSION = "1.0.0"

// Constants for exit codes
const (
	ExitSuccess          = 0
	ExitErrorInvalidArgs = 1
	ExitErrorConnection  = 2
	ExitErrorConfig      = 3
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "secscan-go",
	Short: "A security assessment pipeline for dependencies and configuration",
	Long: `A service that runs periodic and on-demand security assessments of a
project: it scans dependencies and configuration for known vulnerabilities
and policy violations, scores the aggregate risk, raises alerts and tracks
incidents for significant findings.

Usage: secscan-go [--config=path/to/config.yml] run`,
	Version: VERSION,
	Args:    cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		reader := configuration.NewConfigReader()
		if err := reader.ReadConfig(configuration.Config.ConfigFile); err != nil {
			fmt.Fprintf(os.Stderr, "Could not read config file %s, using defaults: %v\n", configuration.Config.ConfigFile, err)
		}

		cfg, err := reader.Parse()
		if err != nil {
			return err
		}
		configuration.Config.Scan = *cfg

		log.InitLogger(cfg.Log.File)
		log.SetLogLevel(cfg.Log.Level)

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configuration.Config.ConfigFile, "config", "c", configuration.DefaultConfigPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&configuration.Config.DBFile, "database", "", configuration.DefaultDBPath, "Path to database file")
}
