package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/augesrob/Badger-sub000/internal/agent"
	"github.com/augesrob/Badger-sub000/internal/api"
)

const shutdownTimeout = 5 * time.Second

// NewAgentCommand runs one terminal's sync engine and serves its local API
// until interrupted. Pending edits are pushed before it exits.
func NewAgentCommand(rootOpts *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:          "agent",
		Short:        "Run a terminal agent",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				rootOpts.Config.Agent.ListenPort = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runAgent(ctx, rootOpts)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "terminal API port (overrides agent.listen_port)")
	return cmd
}

func runAgent(ctx context.Context, opts *RootOptions) error {
	cfg := opts.Config.Agent

	client, err := opts.client()
	if err != nil {
		return err
	}

	engine, err := agent.NewEngine(agent.Config{
		PullInterval: cfg.PullInterval,
		Debounce:     cfg.Debounce,
	}, client, opts.layout(), nil)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ListenPort),
		Handler: api.NewTerminalRouter(engine),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		engine.Run(ctx)
		return nil
	})

	g.Go(func() error {
		log.Printf("Terminal API listening on port %d, store %s", cfg.ListenPort, cfg.ServerURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("terminal API: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutdown signal received, flushing pending edits...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := engine.Flush(shutdownCtx); err != nil {
			log.Printf("Error flushing pending edits: %v", err)
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
