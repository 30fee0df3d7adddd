package main

import (
	"fmt"
	"net/http"

	"github.com/cuemby/filekv/pkg/metrics"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Open the store and expose its metrics and health endpoints",
	Long: `serve opens the store (running Recover) and blocks, serving
Prometheus metrics and health/readiness/liveness endpoints. It does not
expose the store over the network: there is no put/get API here, since
network access to the engine is out of scope by design.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:9090", "Metrics listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	root, err := storeRoot(cmd)
	if err != nil {
		return err
	}
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	store, err := openStore(root)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	metrics.SetVersion(Version)
	metrics.RegisterComponent("storage", true, "recovered")

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Stats()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "objects %d\nnamespace %d\ntransactions %d\ncommits %d\npurges %d\n",
			stats.Objects, stats.Namespace, stats.Transactions, stats.Commits, stats.Purges)
	})

	fmt.Printf("listening on http://%s\n", addr)
	return http.ListenAndServe(addr, mux)
}
