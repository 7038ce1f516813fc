package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/possible/pkg/api"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph API over HTTP",
		Long: `Serve the graph API over HTTP until interrupted.

Every graph in the configured storage is available under /api/graphs.
Pending saves are flushed on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			st, closeStore, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			srv := api.NewServer(st, api.Config{
				Layout:         c.cfg.Layout,
				AllowedOrigins: c.cfg.Server.AllowedOrigins,
				Logger:         logger,
			})
			printInfo("Serving %d graphs on %s", len(st.Graphs()), StyleHighlight.Render(addr))
			return srv.ListenAndServe(ctx, addr, c.cfg.Server.ReadTimeout.Duration, c.cfg.Server.WriteTimeout.Duration)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
