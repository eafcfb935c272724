// Package cli provides the command-line interface for siteassist.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/siteassist/siteassist/internal/client"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	apiKey    string
	userID    string

	api *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "siteassist",
	Short: "Chat with a website's content",
	Long: `Siteassist turns a website's published feed into a conversational
assistant. Register a feed once, keep it synced, and ask questions that
are answered from the site's own content.

All commands talk to a running siteassist server.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if apiKey == "" {
			apiKey = os.Getenv("SITEASSIST_API_KEY")
		}
		api = client.New(serverURL, apiKey)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (default $SITEASSIST_SERVER_URL or http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key from registration (or $SITEASSIST_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user ID from registration (or $SITEASSIST_USER_ID)")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(statsCmd)
}
