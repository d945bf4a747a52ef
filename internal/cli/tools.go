package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/loomworks/loom/internal/block"
	"github.com/loomworks/loom/internal/tools"
)

// newToolsCmd creates the tools command
func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List registered tools",
		Long: `List the tools blocks can execute.

Example:
  loom tools
  loom tools --block snowflake`,
		RunE: func(cmd *cobra.Command, args []string) error {
			blockKind, _ := cmd.Flags().GetString("block")

			registry := tools.NewRegistry()
			var descriptors []*tools.Descriptor
			if blockKind != "" {
				descriptors = registry.ForBlock(block.Kind(blockKind))
			} else {
				descriptors = registry.List()
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(descriptors)
			}

			if len(descriptors) == 0 {
				fmt.Println("No tools found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBLOCK\tMETHOD\tDESCRIPTION")
			for _, d := range descriptors {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.BlockKind, d.Method, d.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringP("block", "b", "", "filter by block kind")

	return cmd
}
