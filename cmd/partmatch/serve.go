package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/partmatch/pkg/api"
	"github.com/hazyhaar/partmatch/pkg/chassis"
	"github.com/hazyhaar/partmatch/pkg/metrics"
	"github.com/hazyhaar/partmatch/pkg/sources"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		http3 bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP query server",
		Long: `Serve extraction and compatibility queries over HTTP. SIGHUP reloads the
component library; SIGINT or SIGTERM shuts the server down gracefully.

With server.http3 (or --http3) the same port serves TLS over TCP and HTTP/3
over QUIC; server.mcp_quic also exposes the MCP tools on the QUIC socket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.raiseLogLevel()
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			if http3 {
				a.cfg.Server.HTTP3 = true
			}
			logger := a.logger

			m := metrics.New()
			cat, ex, err := a.loadCatalog(cmd.Context(), m)
			if err != nil {
				return err
			}
			logger.Info("components loaded", "count", cat.Count(), "dir", cat.Dir())

			svc := api.Service{Catalog: cat, Extractor: ex, Metrics: m, Logger: logger}

			// SIGHUP: hot reload the library.
			// SIGINT/SIGTERM: graceful shutdown.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sighup := make(chan os.Signal, 1)
			signal.Notify(sighup, syscall.SIGHUP)
			defer signal.Stop(sighup)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-sighup:
						logger.Info("SIGHUP received, reloading components")
						if err := cat.Reload(ctx); err != nil {
							logger.Error("reload failed", "error", err)
						} else {
							logger.Info("components reloaded", "count", cat.Count())
						}
					}
				}
			}()

			if a.cfg.Sources.CheckInterval > 0 {
				if _, err := os.Stat(a.cfg.Sources.DB); err == nil {
					sdb, err := a.openSources()
					if err != nil {
						return err
					}
					defer sdb.Close()
					go sources.NewChecker(sdb, logger, a.cfg.Sources.CheckInterval).Start(ctx)
				}
			}

			srv, err := a.newHTTPServer(addr, svc)
			if err != nil {
				return err
			}

			errc := make(chan error, 1)
			go func() {
				errc <- srv.serve(ctx)
			}()

			select {
			case err := <-errc:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config server.addr)")
	cmd.Flags().BoolVar(&http3, "http3", false, "serve TLS and HTTP/3 (default from config server.http3)")
	return cmd
}

// httpServer is either a plain net/http server or the TLS + QUIC chassis.
type httpServer struct {
	serve    func(context.Context) error
	shutdown func(context.Context) error
}

func (a *app) newHTTPServer(addr string, svc api.Service) (*httpServer, error) {
	router := api.NewRouter(svc)
	sc := a.cfg.Server

	if !sc.HTTP3 {
		srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
		return &httpServer{
			serve: func(context.Context) error {
				a.logger.Info("partmatch listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			shutdown: srv.Shutdown,
		}, nil
	}

	cfg := chassis.Config{
		Addr:     addr,
		CertFile: sc.TLSCert,
		KeyFile:  sc.TLSKey,
		Handler:  router,
		Logger:   a.logger,
	}
	if sc.MCPQUIC {
		cfg.MCPServer = api.NewMCPServer(svc, version)
	}
	srv, err := chassis.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := srv.Listen(); err != nil {
		return nil, err
	}
	return &httpServer{serve: srv.Serve, shutdown: srv.Stop}, nil
}
