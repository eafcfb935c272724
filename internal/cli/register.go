package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siteassist/siteassist/internal/client"
)

var (
	registerName  string
	registerEmail string
)

var registerCmd = &cobra.Command{
	Use:   "register <feed-url>",
	Short: "Register a feed and build its index",
	Long: `Register a new user for a website feed. The server fetches every
published post, chunks and embeds the content and builds the search
index before returning. Keep the printed user ID and API key; every
other command needs them.

Examples:
  siteassist register https://example.com/wp-json/wp/v2/posts --name "Jane" --email jane@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "display name (required)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "email address (required)")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")
}

func runRegister(cmd *cobra.Command, args []string) error {
	result, err := api.Register(context.Background(), client.RegisterInput{
		Name:    registerName,
		Email:   registerEmail,
		FeedURL: args[0],
	})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	fmt.Printf("Registered %s (%s)\n", result.Name, result.Email)
	fmt.Printf("  user ID: %s\n", result.UserID)
	fmt.Printf("  API key: %s\n", result.APIKey)
	if result.Sync != nil {
		fmt.Printf("  indexed: %d documents, %d chunks\n", result.Sync.DocumentsTotal, result.Sync.ChunksTotal)
	}
	return nil
}
