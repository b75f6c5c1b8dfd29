package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/rsdoc/internal/config"
	"github.com/jcdickinson/rsdoc/internal/daemon"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cached crates and cache counters",
	Run:   runStatus,
}

var (
	statusJSON    bool
	statusMetrics bool
)

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	statusCmd.Flags().BoolVar(&statusMetrics, "metrics", false, "print the daemon's prometheus metrics")
}

func runStatus(cmd *cobra.Command, args []string) {
	client := daemon.NewClient(config.SocketPath())
	if !client.IsAvailable() {
		fmt.Println("daemon is not running")
		return
	}

	if statusMetrics {
		text, err := client.Metrics(context.Background())
		if err != nil {
			fatal("metrics failed", err)
		}
		fmt.Print(text)
		return
	}

	resp, err := client.Status(context.Background())
	if err != nil {
		fatal("status failed", err)
	}

	if statusJSON {
		out, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(out))
		return
	}

	ttl := time.Duration(resp.TTLSeconds * float64(time.Second))
	fmt.Printf("cache: %d/%d crates, ttl %s\n", len(resp.Crates), resp.MaxEntries, ttl)
	fmt.Printf("  hits %d, misses %d, evictions %d, expirations %d\n",
		resp.Hits, resp.Misses, resp.Evictions, resp.Expirations)
	for _, c := range resp.Crates {
		fmt.Printf("  %s@%s\n", c.Name, c.Version)
	}
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop every crate from the daemon's cache",
	Run:   runClearCache,
}

func runClearCache(cmd *cobra.Command, args []string) {
	client := daemon.NewClient(config.SocketPath())
	if !client.IsAvailable() {
		fmt.Println("daemon is not running")
		return
	}

	if err := client.ClearCache(context.Background()); err != nil {
		fatal("failed to clear cache", err)
	}
	fmt.Println("crate cache cleared")
}
