package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bbookman/mom0mind/internal/diagnose"
)

var diagnoseOperation string

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [error message]",
	Short: "Classify an error message and print recovery guidance",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report := diagnose.Diagnose(diagnose.Signal{
			ErrorMessage: strings.Join(args, " "),
			Operation:    diagnoseOperation,
			Timestamp:    time.Now(),
		})

		fmt.Printf("Classification: %s", report.Classification)
		if report.LowConfidence {
			fmt.Print(" (low confidence)")
		}
		fmt.Println()
		fmt.Println("\nLikely causes:")
		for _, cause := range report.RootCauses {
			fmt.Printf("  - %s\n", cause)
		}
		fmt.Printf("\nImpact: %s\n", report.Impact)
		fmt.Println("\nResolution steps:")
		for i, step := range report.ResolutionSteps {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
		fmt.Println("\nPrevention:")
		for _, tip := range report.Prevention {
			fmt.Printf("  - %s\n", tip)
		}
		return nil
	},
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseOperation, "operation", "", "operation that produced the error")
	rootCmd.AddCommand(diagnoseCmd)
}
