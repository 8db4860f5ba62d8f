package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bbookman/mom0mind/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directories...]",
	Short: "Extract and store facts from markdown directories",
	Long: `Walks the given directories (or markdown_directories from the config
when none are given), extracts facts from each matching file, and stores
the ones that pass validation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfgFile)
		if err != nil {
			return err
		}
		defer a.close()

		dirs := args
		if len(dirs) == 0 {
			dirs = a.cfg.MarkdownDirectories
		}
		if len(dirs) == 0 {
			return fmt.Errorf("no directories given and markdown_directories is empty")
		}

		ingestor := ingest.New(a.memoryService, a.dedupe, a.cfg.Processing, a.log)
		report, err := ingestor.Run(ctx, dirs)
		if err != nil {
			return err
		}

		fmt.Printf("Scanned %d files: %d stored, %d skipped, %d failed, %d facts added\n",
			report.FilesScanned, report.FilesStored, report.FilesSkipped, report.FilesFailed, report.FactsStored)
		if report.InvalidFacts > 0 {
			fmt.Printf("%d facts were rejected by validation; see the logs for reasons\n", report.InvalidFacts)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
