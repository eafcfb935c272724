package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askInteractive bool

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask a question about the website's content",
	Long: `Ask a question answered from the registered website's content.

With --interactive the command keeps the conversation open: follow-up
questions share one conversation so the assistant remembers what was
already said.

Examples:
  siteassist ask "What services do you offer?"
  siteassist ask -i "Tell me about your pricing"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askInteractive, "interactive", "i", false, "keep the conversation open for follow-ups")
}

func runAsk(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	ctx := context.Background()
	conversationID := ""

	if len(args) > 0 {
		result, err := api.Query(ctx, user, args[0], conversationID)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		fmt.Println(result.Response)
		conversationID = result.ConversationID
		if !askInteractive {
			return nil
		}
	} else if !askInteractive {
		return fmt.Errorf("provide a query or use --interactive")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" || query == "exit" || query == "quit" {
			break
		}

		result, err := api.Query(ctx, user, query, conversationID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println(result.Response)
		conversationID = result.ConversationID
	}
	return scanner.Err()
}
