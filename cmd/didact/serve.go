package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/didact/internal/demo"
	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/fiber"
	"github.com/vango-dev/didact/pkg/host/memhost"
	"github.com/vango-dev/didact/pkg/live"
	"github.com/vango-dev/didact/pkg/scheduler"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr  string
		title string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo app live in the browser",
		Long: `Start the live server. The demo app runs on a frame loop; the
browser mirrors the document over a websocket and sends events back.

Examples:
  didact serve
  didact serve --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			loop := scheduler.NewFrameLoop(
				scheduler.WithFrameInterval(cfg.Scheduler.FrameInterval),
				scheduler.WithFrameBudget(cfg.Scheduler.FrameBudget),
				scheduler.WithLoopLogger(logger.With("component", "frameloop")),
			)

			opts := []fiber.Option{
				fiber.WithLogger(logger.With("component", "fiber")),
				fiber.WithYieldThreshold(cfg.Scheduler.YieldThreshold),
				fiber.WithErrorHandler(func(err error) {
					logger.Error("render failed", "error", err)
				}),
			}
			if cfg.MetricsEnabled() {
				opts = append(opts, fiber.WithMetrics(fiber.NewMetrics(
					fiber.WithNamespace(cfg.Metrics.Namespace),
					fiber.WithRegistry(prometheus.DefaultRegisterer),
				)))
			}

			doc := memhost.New(memhost.WithLogger(logger.With("component", "memhost")))
			rt := fiber.New(doc, loop, opts...)
			srv := live.New(doc, loop, live.Config{
				Title:  title,
				Logger: logger.With("component", "live"),
			})

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return loop.Run(ctx)
			})
			g.Go(func() error {
				if err := waitLoop(ctx, loop); err != nil {
					return err
				}
				if err := loop.Call(ctx, func() { rt.Render(demo.Root(title), doc.Root()) }); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  Serving on http://%s\n", cfg.Server.Addr)
				return srv.ListenAndServe(ctx, cfg.Server.Addr)
			})

			err = g.Wait()
			if err == nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from didact.yaml)")
	cmd.Flags().StringVar(&title, "title", "didact", "Page title and heading")

	return cmd
}

// waitLoop blocks until loop accepts work.
func waitLoop(ctx context.Context, loop *scheduler.FrameLoop) error {
	for {
		err := loop.Submit(func() {})
		if err == nil {
			return nil
		}
		if err == scheduler.ErrLoopTerminated {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}
