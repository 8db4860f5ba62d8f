package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bbookman/mom0mind/internal/models"
)

var (
	memoriesUser  string
	resetUser     string
	resetConfirm  bool
	memoriesQuery string
)

var memoriesCmd = &cobra.Command{
	Use:   "memories",
	Short: "List stored memories, optionally filtered by a search query",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfgFile)
		if err != nil {
			return err
		}
		defer a.close()

		user := memoriesUser
		if user == "" {
			user = a.cfg.Processing.UserID
		}

		records, err := listRecords(cmd, a, user)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Printf("No memories stored for %s.\n", user)
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%s  %s  (%s)\n", rec.CreatedAt.Format("2006-01-02"), rec.Text, rec.Source)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every memory stored for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirm {
			return fmt.Errorf("reset deletes all memories for the user; re-run with --yes to confirm")
		}

		ctx := cmd.Context()
		a, err := buildApp(ctx, cfgFile)
		if err != nil {
			return err
		}
		defer a.close()

		user := resetUser
		if user == "" {
			user = a.cfg.Processing.UserID
		}

		if err := a.memoryService.Reset(ctx, user); err != nil {
			return err
		}
		fmt.Printf("All memories for %s have been removed.\n", user)
		return nil
	},
}

func listRecords(cmd *cobra.Command, a *app, user string) ([]models.MemoryRecord, error) {
	if memoriesQuery != "" {
		return a.memoryService.Search(cmd.Context(), memoriesQuery, user, a.cfg.Chat.MaxContextMemories)
	}
	return a.memoryService.GetAll(cmd.Context(), user)
}

func init() {
	memoriesCmd.Flags().StringVar(&memoriesUser, "user", "", "user to list memories for")
	memoriesCmd.Flags().StringVarP(&memoriesQuery, "query", "q", "", "relevance search instead of a full listing")
	resetCmd.Flags().StringVar(&resetUser, "user", "", "user whose memories are removed")
	resetCmd.Flags().BoolVar(&resetConfirm, "yes", false, "confirm the deletion")
	rootCmd.AddCommand(memoriesCmd)
	rootCmd.AddCommand(resetCmd)
}
