package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bbookman/mom0mind/internal/chat"
)

var chatUser string

var chatCmd = &cobra.Command{
	Use:   "chat [query]",
	Short: "Ask a question answered from stored memories",
	Long: `With a query argument, answers once and exits. Without one, starts an
interactive session; exit with "quit" or Ctrl-D.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfgFile)
		if err != nil {
			return err
		}
		defer a.close()

		user := chatUser
		if user == "" {
			user = a.cfg.Processing.UserID
		}

		ask := func(query string) {
			answer, err := a.chatService.Chat(ctx, user, query)
			switch {
			case errors.Is(err, chat.ErrEmptyQuery):
				fmt.Println("Please enter a question.")
			case errors.Is(err, chat.ErrTimeout):
				fmt.Println(answer)
			case err != nil:
				fmt.Printf("Something went wrong: %s\n", err)
			default:
				fmt.Println(answer)
			}
		}

		if len(args) > 0 {
			ask(strings.Join(args, " "))
			return nil
		}

		fmt.Printf("Chatting as %s. Type your question, or \"quit\" to leave.\n", user)
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "quit" || line == "exit" {
				return nil
			}
			ask(line)
		}
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatUser, "user", "", "user to chat as (defaults to processing_options.user_id)")
	rootCmd.AddCommand(chatCmd)
}
