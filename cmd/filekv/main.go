// Command filekv is a thin operator CLI over pkg/storage: every subcommand
// opens a store and performs one operation against it (put commits a
// single-write transaction, get reads a committed value), so a
// deployment embedding the library directly has no dependency on this
// binary at all.
package main

import (
	"fmt"
	"os"

	"github.com/cuemby/filekv/pkg/config"
	"github.com/cuemby/filekv/pkg/log"
	"github.com/cuemby/filekv/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// loadedConfig holds the result of --config, if given. Persistent flags
// still take precedence over it: a flag the user actually set on the
// command line always wins.
var loadedConfig *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "filekv",
	Short: "filekv - a transactional, content-addressed key-value store",
	Long: `filekv is a transactional key-value store built entirely on
POSIX filesystem primitives: renames, hard links, and symbolic links.
There is no database file and no write-ahead log; the commit pipeline
and the directory layout on disk are the durability mechanism.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"filekv version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("root", "./filekv-data", "Store root directory")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (store.root, store.buckets, logging.level, logging.json)")

	cobra.OnInitialize(loadConfigFile, initLogging)

	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfigFile() {
	path, _ := rootCmd.PersistentFlags().GetString("config")
	if path == "" {
		return
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config %s: %v\n", path, err)
		os.Exit(1)
	}
	loadedConfig = &cfg
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	cfg := log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	}
	if loadedConfig != nil {
		fromFile := loadedConfig.LogConfig()
		if !rootCmd.PersistentFlags().Changed("log-level") {
			cfg.Level = fromFile.Level
		}
		if !rootCmd.PersistentFlags().Changed("log-json") {
			cfg.JSONOutput = fromFile.JSONOutput
		}
	}
	log.Init(cfg)
}

// storeRoot resolves the store root: an explicit --root flag wins, then a
// loaded --config file's store.root, then the flag's own default.
func storeRoot(cmd *cobra.Command) (string, error) {
	if loadedConfig != nil && !cmd.Flags().Changed("root") {
		return loadedConfig.Store.Root, nil
	}
	return cmd.Flags().GetString("root")
}

// openStore opens the store at root, applying store.buckets from a loaded
// --config file if one was given.
func openStore(root string) (*storage.Store, error) {
	if loadedConfig != nil && loadedConfig.Store.Buckets > 0 {
		return storage.Open(root, storage.WithBucketCount(loadedConfig.Store.Buckets))
	}
	return storage.Open(root)
}
