package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/reactron/cmd/reactron/internal/config"
	"github.com/go-drift/reactron/pkg/devserver"
	"github.com/go-drift/reactron/pkg/host/dom"
)

const shutdownTimeout = 2 * time.Second

func (c *cli) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo live in the browser",
		Long: `Start the frame loop and the development server. Open the printed
address in a browser: DOM events are forwarded to the engine over a
websocket and the page is patched after every commit.

Endpoints:
  /            live page
  /fiber-tree  committed fiber tree (JSON)
  /frames      frame trace (JSON, ?limit=N, ?committed=1)
  /health      health check
  /ws          websocket session`,
		Args: cobra.NoArgs,
		RunE: c.runServe,
	}
	cmd.Flags().String("addr", config.DefaultServerAddr, "listen address")
	cmd.Flags().Duration("interval", config.DefaultFrameInterval, "frame interval while work is pending")
	c.bind(cmd.Flags(), map[string]string{
		config.KeyServerAddr:    "addr",
		config.KeyFrameInterval: "interval",
	})
	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	d, err := c.newDemo(dom.WithNodeIDs())
	if err != nil {
		return err
	}
	s := c.settings

	srv := devserver.New(d.sched, d.doc, devserver.Config{
		Addr:   s.ServerAddr,
		Title:  s.AppName,
		Logger: c.logger,
	})
	addr, err := srv.Start()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "serving %s at http://%s\n", s.AppName, addr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d.sched.Dispatch(func() {
		if err := d.sched.Context().Render(d.root, d.doc.Container()); err != nil {
			c.logger.Error("render failed", slog.Any("error", err))
		}
	})
	// Run only returns once ctx is done.
	_ = d.sched.Run(ctx, s.FrameInterval)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("devserver shutdown: %w", err)
	}
	c.logger.Info("stopped", slog.Int("commits", d.sched.Context().Stats().Commits))
	return nil
}
