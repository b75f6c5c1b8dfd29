package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/rsdoc/internal/config"
	"github.com/jcdickinson/rsdoc/internal/rpc"
)

var itemCmd = &cobra.Command{
	Use:     "item <crate[@version]> <item-path>",
	Aliases: []string{"get"},
	Short:   "Show the documentation of one item",
	Example: `  rsdoc item serde Serialize
  rsdoc item tokio@1.40.0 sync::Mutex
  rsdoc item --resolve-links serde de::Deserializer`,
	Args: cobra.ExactArgs(2),
	Run:  runItem,
}

var itemResolveLinks bool

func init() {
	itemCmd.Flags().BoolVar(&itemResolveLinks, "resolve-links", false, "rewrite intra-doc links to docs.rs URLs")
}

func runItem(cmd *cobra.Command, args []string) {
	spec := config.ParseCrateSpec(args[0])

	client, err := connectDaemon()
	if err != nil {
		fatal("failed to connect to daemon", err)
	}

	text, err := client.DocItem(context.Background(), rpc.DocItemRequest{
		Name:         spec.Name,
		Version:      spec.Version,
		ItemPath:     args[1],
		ResolveLinks: itemResolveLinks,
	})
	if err != nil {
		fatal("get item failed", err)
	}
	fmt.Print(text)
}
