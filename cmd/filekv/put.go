package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put <key> <value>",
	Short: "Write a key/value pair in its own transaction",
	Long: `put opens a transaction, stages one write, and commits it
immediately. There is no separate "commit" subcommand: the CLI's unit
of work is always a single put committed on success.`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

func runPut(cmd *cobra.Command, args []string) error {
	root, err := storeRoot(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(root)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	tx, err := store.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Close()

	if err := tx.Put([]byte(args[0]), []byte(args[1])); err != nil {
		return fmt.Errorf("staging put: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	fmt.Printf("put %q\n", args[0])
	return nil
}
