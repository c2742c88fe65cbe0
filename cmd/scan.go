package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"secscan-go/internal/models"
	"secscan-go/internal/scanner"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var quietScan bool

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a one-shot security assessment and print the result",
	Long: `Runs every configured scan type once, waits for completion and prints
the assessment as JSON. Results are persisted like scheduled runs.

Example:
  secscan-go scan --config /path/to/your/config.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := buildPipeline()
		if err != nil {
			models.Response{
				Message: "failed to initialize assessment pipeline",
			}.Print()
			os.Exit(ExitErrorConnection)
		}
		defer pipe.Close()

		if !quietScan {
			bar := progressbar.NewOptions(
				len(pipe.orch.Plans()),
				progressbar.OptionSetDescription("running scans"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
			)
			pipe.orch.SetProgressFunc(func(scanner.ScanType) {
				bar.Add(1)
			})
		}

		assessment, err := pipe.orch.RunAssessment(context.Background(), pipe.target)
		if err != nil {
			models.Response{
				Message: fmt.Sprintf("assessment failed: %v", err),
			}.Print()
			os.Exit(1)
		}

		output, err := json.Marshal(assessment)
		if err != nil {
			models.Response{
				Message: "Error while encoding result",
			}.Print()
			os.Exit(1)
		}

		fmt.Println(string(output))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVarP(&quietScan, "quiet", "q", false, "hide progress output")
}
