package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/loomworks/loom/internal/config"
	loomerrors "github.com/loomworks/loom/internal/errors"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize loom in current project",
		Long: `Initialize loom in the current directory.

This creates the .loom directory with:
  • config.yaml with default settings
  • workflows/ directory for workflow YAML definitions

Examples:
  loom init           # Initialize with defaults
  loom init --force   # Reinitialize existing project`,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}

			loomDir := filepath.Join(cwd, config.LoomDir)
			configPath := filepath.Join(loomDir, config.ConfigFileName)

			if _, err := os.Stat(configPath); err == nil && !force {
				return loomerrors.ErrAlreadyInitialized(loomDir)
			}

			if err := os.MkdirAll(loomDir, 0755); err != nil {
				return fmt.Errorf("create %s: %w", loomDir, err)
			}
			if err := os.MkdirAll(filepath.Join(loomDir, config.WorkflowsDirName), 0755); err != nil {
				return fmt.Errorf("create workflows directory: %w", err)
			}

			cfg := config.Default()
			if err := cfg.Save(configPath); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			if !quiet {
				fmt.Printf("Initialized loom in %s\n", loomDir)
				fmt.Println("Next: run 'loom serve' to start the API server")
			}
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite existing configuration")

	return cmd
}
