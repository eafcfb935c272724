package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var purgeForce bool

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete the user and all indexed content",
	Long: `Delete the registered user: the account record, the cached feed
snapshots and the vector index. This cannot be undone.`,
	Args: cobra.NoArgs,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().BoolVarP(&purgeForce, "force", "f", false, "skip confirmation")
}

func runPurge(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	if !purgeForce {
		fmt.Printf("Delete user %s and all indexed content? [y/N] ", user)
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() || strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := api.Delete(context.Background(), user); err != nil {
		return fmt.Errorf("purge: %w", err)
	}

	fmt.Println("User deleted.")
	return nil
}
