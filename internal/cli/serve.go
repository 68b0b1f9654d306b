package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/verdantlabs/verdant/pkg/api"
	"github.com/verdantlabs/verdant/pkg/layout"
)

const defaultServeAddr = ":8080"

// serveCommand creates the serve command exposing layouts over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var layoutPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest layout and run status over HTTP",
		Long: `Serve starts an HTTP server exposing the garden layout as JSON.

Endpoints:
  GET /healthz     liveness check
  GET /api/layout  the loaded layout (404 until one is set)
  GET /api/status  current run status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, layoutPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "listen address")
	cmd.Flags().StringVarP(&layoutPath, "layout", "l", "", "layout file to serve")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, layoutPath string) error {
	srv := api.NewServer(c.Logger)

	if layoutPath != "" {
		l, err := layout.Load(layoutPath)
		if err != nil {
			return err
		}
		srv.SetLayout(l)
		printInfo("Serving layout %s (%d plants)", layoutPath, len(l.Plants))
	}

	printInfo("Listening on %s", addr)
	return srv.ListenAndServe(ctx, addr)
}
