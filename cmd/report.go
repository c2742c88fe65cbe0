package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"secscan-go/internal/configuration"
	"secscan-go/internal/database"
	"secscan-go/internal/models"

	"github.com/spf13/cobra"
)

var (
	reportLimit  int
	reportScanID string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print persisted assessment reports",
	Long: `Generate a JSON report from persisted assessment data.

Without flags it prints the most recent assessment reports.
With --scan it prints the full result of one scan, findings included.`,
	Run: func(cmd *cobra.Command, args []string) {
		db, err := database.InitializeDatabase(configuration.Config.DBFile)
		if err != nil {
			models.Response{
				Message: "failed to initialize sqlite database",
			}.Print()
			os.Exit(ExitErrorConnection)
		}

		if reportScanID != "" {
			result, err := db.GetScanResult(reportScanID)
			if err != nil || result == nil {
				models.Response{
					Message: "Record not found",
				}.Print()
				os.Exit(1)
			}

			output, err := json.Marshal(result)
			if err != nil {
				models.Response{
					Message: "Error while encoding result",
				}.Print()
				os.Exit(1)
			}

			fmt.Print(string(output))
			return
		}

		reports, err := db.GetReports(reportLimit)
		if err != nil {
			models.Response{
				Message: "Error while loading reports",
			}.Print()
			os.Exit(1)
		}

		output, err := json.Marshal(reports)
		if err != nil {
			models.Response{
				Message: "Error while serializing output",
			}.Print()
			os.Exit(1)
		}

		fmt.Print(string(output))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVarP(&reportLimit, "limit", "l", 10, "Maximum number of reports")
	reportCmd.Flags().StringVarP(&reportScanID, "scan", "s", "", "Scan ID")
}
