package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/grapes/internal/server"
	"github.com/matzehuels/grapes/pkg/config"
	"github.com/matzehuels/grapes/pkg/service"
)

type serveOpts struct {
	addr        string
	responseTTL time.Duration
}

// serveCommand creates the serve command running the HTTP API until the
// context is cancelled.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Long: `Serve the catalog over HTTP.

Graph queries (dependencies, ancestors, module licenses) can be cached in
the configured cache backend with --response-ttl. Prometheus metrics are
exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withService(ctx, func(cfg *config.Config, svc *service.Service) error {
				addr := cfg.Server.Addr
				if opts.addr != "" {
					addr = opts.addr
				}

				respCache, err := newCache(ctx, cfg, opts.responseTTL == 0)
				if err != nil {
					return err
				}
				defer respCache.Close()

				metrics := server.NewMetrics()
				metrics.Install()

				srv := server.New(svc, server.Options{
					Community: cfg.Community,
					Logger:    c.Logger,
					Metrics:   metrics,
					Cache:     respCache,
					CacheTTL:  opts.responseTTL,
				})
				c.Logger.Info("serving catalog", "driver", cfg.Database.Driver, "addr", addr)
				return srv.ListenAndServe(ctx, addr)
			})
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default server.addr)")
	cmd.Flags().DurationVar(&opts.responseTTL, "response-ttl", 0, "cache graph query responses for this long (0 disables)")

	return cmd
}
