package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/rsdoc/internal/config"
	"github.com/jcdickinson/rsdoc/internal/docs"
	"github.com/jcdickinson/rsdoc/internal/rpc"
)

var docsCmd = &cobra.Command{
	Use:   "docs <crate[@version]> [module-path]",
	Short: "List the public items of a crate or module",
	Example: `  rsdoc docs serde
  rsdoc docs serde@1.0.210 de
  rsdoc docs tokio sync::mpsc`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runDocs,
}

func runDocs(cmd *cobra.Command, args []string) {
	spec := config.ParseCrateSpec(args[0])
	req := rpc.CrateDocsRequest{Name: spec.Name, Version: spec.Version}
	if len(args) == 2 {
		req.ModulePath = args[1]
	}

	client, err := connectDaemon()
	if err != nil {
		fatal("failed to connect to daemon", err)
	}

	text, err := client.CrateDocs(context.Background(), req)
	if err != nil {
		fatal("get docs failed", err)
	}
	fmt.Print(text)
}

var searchCmd = &cobra.Command{
	Use:   "search <crate[@version]> <query>",
	Short: "Find items in a crate by name",
	Example: `  rsdoc search serde deserial
  rsdoc search --limit 5 tokio spawn`,
	Args: cobra.ExactArgs(2),
	Run:  runSearch,
}

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", docs.DefaultSearchLimit, "max results")
}

func runSearch(cmd *cobra.Command, args []string) {
	spec := config.ParseCrateSpec(args[0])

	client, err := connectDaemon()
	if err != nil {
		fatal("failed to connect to daemon", err)
	}

	text, err := client.SearchDocs(context.Background(), rpc.SearchDocsRequest{
		Name:    spec.Name,
		Version: spec.Version,
		Query:   args[1],
		Limit:   searchLimit,
	})
	if err != nil {
		fatal("search failed", err)
	}
	fmt.Println(text)
}

var searchCratesCmd = &cobra.Command{
	Use:   "search-crates <query>",
	Short: "Search crates.io for Rust crates",
	Example: `  rsdoc search-crates serde
  rsdoc search-crates "async http client"
  rsdoc search-crates --limit 5 tokio`,
	Args: cobra.ExactArgs(1),
	Run:  runSearchCrates,
}

var searchCratesLimit int

func init() {
	searchCratesCmd.Flags().IntVar(&searchCratesLimit, "limit", 20, "max results")
}

func runSearchCrates(cmd *cobra.Command, args []string) {
	client, err := connectDaemon()
	if err != nil {
		fatal("failed to connect to daemon", err)
	}

	results, err := client.SearchCrates(context.Background(), rpc.SearchCratesRequest{
		Query: args[0],
		Limit: searchCratesLimit,
	})
	if err != nil {
		fatal("search failed", err)
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return
	}

	for _, r := range results {
		v := r.MaxStableVersion
		if v == "" {
			v = r.MaxVersion
		}
		fmt.Printf("  %-30s %s  (%d downloads)\n", r.Name, v, r.Downloads)
		if r.Description != "" {
			fmt.Printf("    %s\n", r.Description)
		}
	}
}
