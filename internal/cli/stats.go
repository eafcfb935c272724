package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/siteassist/siteassist/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server runtime statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	snap, err := api.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	fmt.Printf("Uptime: %s\n", time.Duration(snap.UptimeSeconds*float64(time.Second)).Round(time.Second))
	printOp("feed fetch", snap.FeedFetch)
	printOp("embedding", snap.Embedding)
	printOp("generation", snap.Generation)
	printOp("sync", snap.Sync)
	printOp("vector search", snap.VectorSearch)
	return nil
}

func printOp(name string, op *metrics.OperationSnapshot) {
	if op == nil {
		return
	}
	fmt.Printf("%-14s count=%d avg=%.1fms min=%dms max=%dms", name, op.Count, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	if op.TotalItems != nil {
		fmt.Printf(" items=%d", *op.TotalItems)
	}
	fmt.Println()
}
