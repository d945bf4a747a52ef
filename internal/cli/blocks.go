package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/loomworks/loom/internal/block"
)

// newBlocksCmd creates the blocks command
func newBlocksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks [query]",
		Short: "List toolbar blocks",
		Long: `List block definitions available in the toolbar.

With a query, blocks are matched by name and description across all
categories. Without one, --category filters the list.

Example:
  loom blocks
  loom blocks snow
  loom blocks --category trigger`,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			query := strings.Join(args, " ")

			registry := block.NewRegistry()
			defs := registry.Search(query, category)

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(defs)
			}

			if len(defs) == 0 {
				fmt.Println("No blocks found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tNAME\tCATEGORY\tDESCRIPTION")
			for _, d := range defs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Kind, d.Name, d.Category, d.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringP("category", "c", "", "filter by category when no query is given")

	return cmd
}
