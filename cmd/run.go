package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"secscan-go/internal/api"
	"secscan-go/internal/configuration"
	"secscan-go/internal/scheduler"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Starts the periodic assessment service and the API server",
	Long: `The 'run' command starts the assessment service.
It runs a full security assessment on the configured interval and serves
the HTTP API for on-demand scans, reports and incident management.

Example:
  secscan-go run --config /path/to/your/config.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &configuration.Config.Scan

		pipe, err := buildPipeline()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing pipeline: %v\n", err)
			os.Exit(ExitErrorConnection)
		}
		defer pipe.Close()

		sched := scheduler.NewScheduler(pipe.orch, pipe.target, cfg.ScanInterval())
		sched.Start()

		server := api.NewServer(api.ServerConfig{
			Bind:       cfg.API.Bind,
			Port:       cfg.API.Port,
			ConfigPath: configuration.Config.ConfigFile,
		}, pipe.service, pipe.orch, pipe.incidents, pipe.reports, pipe.dispatcher)

		go func() {
			if err := server.Start(); err != nil {
				log.Error().Err(err).Msg("api server error")
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		fmt.Println("\nShutting down gracefully...")
		sched.Stop()
		server.Shutdown()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
