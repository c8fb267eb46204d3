package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cpanmap/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noWatch bool
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve the catalog over a JSON HTTP API",
		Long: `Serve the catalog over a JSON HTTP API. The data file defaults to the
data_file config value. Unless --no-watch is set, the file is reloaded when
it changes; a failed reload keeps the previous catalog.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := c.cfg.DataFile
			if len(args) == 1 {
				path = args[0]
			}
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			cat, err := c.loadCatalog(ctx, path)
			if err != nil {
				return err
			}

			opts := server.Options{Logger: c.Logger, Strict: c.cfg.Strict, Enrich: c.enrichOptions()}
			var srv *server.Server
			if offline {
				srv = server.New(cat, nil, opts)
			} else {
				reg, closeFn, err := c.newRegistry(ctx)
				if err != nil {
					return err
				}
				defer closeFn()
				srv = server.New(cat, reg, opts)
			}

			g, ctx := errgroup.WithContext(ctx)
			if c.cfg.Server.Watch && !noWatch {
				g.Go(func() error {
					return srv.Watch(ctx, path, c.cfg.Server.Debounce)
				})
			}
			g.Go(func() error {
				return srv.ListenAndServe(ctx, addr)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the data file on change")
	cmd.Flags().BoolVar(&offline, "offline", false, "serve catalog routes only, without the registry")
	return cmd
}
