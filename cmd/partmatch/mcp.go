package main

import (
	"context"
	"crypto/tls"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/partmatch/pkg/api"
	"github.com/hazyhaar/partmatch/pkg/chassis"
	"github.com/hazyhaar/partmatch/pkg/mcpquic"
)

func newMCPCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio or QUIC",
		Long: `Serve the MCP tools on stdin/stdout. With --listen the tools are served over
QUIC instead, using server.tls_cert/server.tls_key or a self-signed certificate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, ex, err := a.loadCatalog(cmd.Context(), nil)
			if err != nil {
				return err
			}
			a.logger.Info("components loaded", "count", cat.Count(), "dir", cat.Dir())
			srv := api.NewMCPServer(api.Service{Catalog: cat, Extractor: ex, Logger: a.logger}, version)
			if listen == "" {
				return server.ServeStdio(srv)
			}
			return a.serveMCPQUIC(cmd.Context(), listen, srv)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "serve MCP over QUIC on this address instead of stdio")
	return cmd
}

func (a *app) serveMCPQUIC(ctx context.Context, addr string, srv *server.MCPServer) error {
	var (
		tlsCfg *tls.Config
		err    error
	)
	if sc := a.cfg.Server; sc.TLSCert != "" {
		tlsCfg, err = chassis.ProductionTLSConfig(sc.TLSCert, sc.TLSKey)
	} else {
		tlsCfg, err = chassis.DevelopmentTLSConfig()
	}
	if err != nil {
		return err
	}
	ln, err := mcpquic.Listen(addr, tlsCfg, mcpquic.NewHandler(srv, a.logger))
	if err != nil {
		return err
	}
	defer ln.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return ln.Serve(ctx)
}
