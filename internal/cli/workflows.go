package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/loomworks/loom/internal/config"
	"github.com/loomworks/loom/internal/db"
)

// newWorkflowsCmd creates the workflows command
func newWorkflowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "workflows",
		Aliases: []string{"wf"},
		Short:   "List stored workflows",
		Long: `List workflows persisted in the project database.

Example:
  loom workflows`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				cfg = config.Default()
			}

			database, err := db.Open(cfg.DatabasePath(cwd))
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			workflows, err := database.LoadWorkflows(context.Background())
			if err != nil {
				return fmt.Errorf("load workflows: %w", err)
			}
			sort.Slice(workflows, func(i, j int) bool {
				return workflows[i].Name < workflows[j].Name
			})

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(workflows)
			}

			if len(workflows) == 0 {
				fmt.Println("No workflows found. Create one with the canvas UI or 'loom serve'.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBLOCKS\tUPDATED")
			for _, wf := range workflows {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					wf.ID, wf.Name, len(wf.Blocks), wf.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}
