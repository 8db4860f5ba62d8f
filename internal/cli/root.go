package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mom0mind",
	Short: "A memory system that extracts and recalls facts from markdown notes",
	Long: `mom0mind ingests markdown files, extracts atomic facts about the user,
validates them, and stores them in a vector store. The stored memories
back a chat interface that answers questions about the user.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "path to the configuration file")
}
