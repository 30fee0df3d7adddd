package main

import (
	"errors"
	"fmt"

	"github.com/cuemby/filekv/pkg/storage"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read the committed value for a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	root, err := storeRoot(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(root)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	value, err := store.Get([]byte(args[0]))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("key %q not found", args[0])
		}
		return fmt.Errorf("reading key %q: %w", args[0], err)
	}

	fmt.Println(string(value))
	return nil
}
