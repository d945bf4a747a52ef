package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/loomworks/loom/internal/api"
	"github.com/loomworks/loom/internal/config"
)

// newServeCmd creates the serve command for the API server
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the loom API server for the canvas UI.

The API server provides REST endpoints and a WebSocket stream for:
  • Workflow and block management
  • Toolbar block search
  • Sub-block value updates with credential handling
  • Live canvas events

Example:
  loom serve              # Start on the configured address
  loom serve --port 3000  # Start on a custom port`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loomCfg, err := config.Load()
			if err != nil {
				loomCfg = config.Default()
			}

			addr := loomCfg.Server.Addr
			if cmd.Flags().Changed("port") {
				port, _ := cmd.Flags().GetInt("port")
				addr = fmt.Sprintf(":%d", port)
			}

			server, err := api.New(&api.Config{
				Addr:   addr,
				Logger: serveLogger(),
			})
			if err != nil {
				return err
			}
			defer func() { _ = server.Close() }()

			if !quiet {
				fmt.Printf("Starting API server on %s...\n", addr)
				fmt.Println("Press Ctrl+C to stop")
			}

			// Handle graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				<-sigCh
				if !quiet {
					fmt.Println("\nShutting down...")
				}
				cancel()
			}()

			return server.StartContext(ctx)
		},
	}

	cmd.Flags().IntP("port", "p", 3080, "port to listen on")

	return cmd
}

// serveLogger builds the server logger. Interactive terminals get text
// output; pipes and service managers get JSON.
func serveLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
