package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineageview/internal/server"
	"github.com/matzehuels/lineageview/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		src    sourceFlags
		addr   string
		watch  bool
		origin string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lineage views over HTTP",
		Long: `Serve the lineage API.

  GET    /healthz
  GET    /api/graph?column=&search=&tags=[&format=svg]
  GET    /api/suggest?q=&limit=
  GET    /api/tags
  GET    /api/tables/{id}
  POST   /api/sessions?column=&search=&tags=
  GET    /api/sessions/{id}
  POST   /api/sessions/{id}/actions
  DELETE /api/sessions/{id}

Sessions are kept in the backend named by [session] in the config file.
With --watch the metadata is reloaded whenever a source file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings()

			var opts pipeline.Options
			c.viewDefaults(&opts)
			if err := src.apply(c, &opts); err != nil {
				return err
			}
			if err := opts.ValidateForLoad(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, src.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			sessions, err := c.newSessionStore(ctx)
			if err != nil {
				return fmt.Errorf("initialize session store: %w", err)
			}
			defer sessions.Close()

			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("watch") {
				watch = cfg.Server.Watch
			}

			srv := server.New(server.Config{
				Runner:        runner,
				Options:       opts,
				Sessions:      sessions,
				SessionTTL:    cfg.Session.TTL,
				Addr:          addr,
				Watch:         watch,
				AllowedOrigin: origin,
				Logger:        c.Logger,
			})
			return srv.Serve(ctx)
		},
	}

	src.bind(cmd)
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload metadata when source files change")
	cmd.Flags().StringVar(&origin, "cors-origin", "", "value for Access-Control-Allow-Origin (disabled if empty)")

	return cmd
}
