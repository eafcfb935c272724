package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var syncFeedURL string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-sync the website's content",
	Long: `Trigger a background re-sync of the registered feed. Only new or
changed posts are fetched, chunked and indexed.

Use --feed-url to switch the registered feed address at the same time.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncFeedURL, "feed-url", "", "change the registered feed URL before syncing")
}

func runSync(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	if err := api.Update(context.Background(), user, syncFeedURL); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	fmt.Println("Sync started. New content will be searchable shortly.")
	return nil
}

// requireUser resolves the user ID from the flag or environment.
func requireUser() (string, error) {
	if userID != "" {
		return userID, nil
	}
	if id := os.Getenv("SITEASSIST_USER_ID"); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("user ID required: pass --user or set SITEASSIST_USER_ID")
}
