package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Drain any in-flight commits or purges left by a crashed process",
	Long: `recover opens the store, which runs Store.Recover before
returning, then exits. It exists as an explicit operator-facing entry
point even though every Open already recovers automatically.`,
	RunE: runRecover,
}

func runRecover(cmd *cobra.Command, args []string) error {
	root, err := storeRoot(cmd)
	if err != nil {
		return err
	}

	if _, err := openStore(root); err != nil {
		return fmt.Errorf("recovering store: %w", err)
	}

	fmt.Println("recovery complete")
	return nil
}
