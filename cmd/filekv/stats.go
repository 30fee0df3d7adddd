package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print entry counts for each on-disk area",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	root, err := storeRoot(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(root)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("collecting stats: %w", err)
	}

	fmt.Printf("objects:      %d\n", stats.Objects)
	fmt.Printf("namespace:    %d\n", stats.Namespace)
	fmt.Printf("transactions: %d\n", stats.Transactions)
	fmt.Printf("commits:      %d\n", stats.Commits)
	fmt.Printf("purges:       %d\n", stats.Purges)
	return nil
}
