// Package chassis runs the partmatch HTTP API on one port over two
// transports:
//
//   - TCP: TLS with HTTP/1.1 and HTTP/2
//   - UDP: QUIC, demultiplexed by ALPN into HTTP/3 ("h3") and, when an MCP
//     server is configured, MCP sessions ("partmatch-mcp-v1")
//
// TCP responses advertise the HTTP/3 endpoint with Alt-Svc. Without a
// certificate pair the server generates a self-signed one at startup.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"

	"github.com/hazyhaar/partmatch/pkg/mcpquic"
)

// Config describes a chassis server.
type Config struct {
	Addr      string            // host:port shared by TCP and UDP; port 0 picks one
	TLS       *tls.Config       // overrides CertFile/KeyFile
	CertFile  string            // PEM certificate; empty generates a dev cert
	KeyFile   string            // PEM key
	Handler   http.Handler      // served on TCP and HTTP/3
	MCPServer *server.MCPServer // nil refuses MCP connections
	Logger    *slog.Logger
}

// Server is a dual-transport server. Listen binds both sockets, Serve runs
// them, Stop shuts them down.
type Server struct {
	cfg    Config
	tlsCfg *tls.Config
	logger *slog.Logger
	mcp    *mcpquic.Handler

	mu      sync.Mutex
	quicLn  *quic.Listener
	tcpLn   net.Listener
	h3      *http3.Server
	tcp     *http.Server
	closing atomic.Bool
}

func New(cfg Config) (*Server, error) {
	if cfg.Handler == nil {
		return nil, errors.New("chassis: handler required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	tlsCfg := cfg.TLS
	switch {
	case tlsCfg != nil:
	case cfg.CertFile != "" && cfg.KeyFile != "":
		var err error
		if tlsCfg, err = ProductionTLSConfig(cfg.CertFile, cfg.KeyFile); err != nil {
			return nil, fmt.Errorf("load certificate: %w", err)
		}
		cfg.Logger.Info("tls certificate loaded", "cert", cfg.CertFile)
	default:
		var err error
		if tlsCfg, err = DevelopmentTLSConfig(); err != nil {
			return nil, fmt.Errorf("generate certificate: %w", err)
		}
		cfg.Logger.Warn("no tls certificate configured, using a self-signed one")
	}

	s := &Server{cfg: cfg, tlsCfg: tlsCfg, logger: cfg.Logger}
	if cfg.MCPServer != nil {
		s.mcp = mcpquic.NewHandler(cfg.MCPServer, cfg.Logger)
	}
	return s, nil
}

// Listen binds the UDP socket, then the TCP socket on the same port.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	host, _, err := net.SplitHostPort(s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("chassis addr %q: %w", s.cfg.Addr, err)
	}
	qln, err := quic.ListenAddr(s.cfg.Addr, s.tlsCfg, mcpquic.QUICConfig())
	if err != nil {
		return fmt.Errorf("quic listen: %w", err)
	}
	port := qln.Addr().(*net.UDPAddr).Port

	tcpTLS := s.tlsCfg.Clone()
	tcpTLS.NextProtos = []string{"h2", "http/1.1"}
	tln, err := tls.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)), tcpTLS)
	if err != nil {
		qln.Close()
		return fmt.Errorf("tcp listen: %w", err)
	}

	handler := securityHeaders(altSvc(port, s.cfg.Handler))
	s.quicLn, s.tcpLn = qln, tln
	s.h3 = &http3.Server{Handler: handler}
	s.tcp = &http.Server{Handler: handler, TLSConfig: tcpTLS, ReadHeaderTimeout: 10 * time.Second}
	return nil
}

// Addr is the bound address; TCP and UDP share its port. Nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quicLn == nil {
		return nil
	}
	return s.quicLn.Addr()
}

// Serve runs both transports until ctx is done or one of them fails.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	qln, tln, tcp := s.quicLn, s.tcpLn, s.tcp
	s.mu.Unlock()
	if qln == nil {
		return errors.New("chassis: Serve before Listen")
	}

	s.logger.Info("chassis listening", "addr", qln.Addr().String(),
		"tcp", "HTTP/1.1+HTTP/2", "udp", "HTTP/3", "mcp", s.mcp != nil)

	errc := make(chan error, 2)
	go func() {
		if err := tcp.Serve(tln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("tcp: %w", err)
		}
	}()
	go func() {
		if err := s.acceptQUIC(ctx, qln); err != nil {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		return err
	}
}

// Start is Listen followed by Serve.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

func (s *Server) acceptQUIC(ctx context.Context, ln *quic.Listener) error {
	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || s.closing.Load() {
				return nil
			}
			return fmt.Errorf("quic accept: %w", err)
		}
		switch proto := conn.ConnectionState().TLS.NegotiatedProtocol; proto {
		case "h3":
			go func() {
				if err := s.h3.ServeQUICConn(conn); err != nil {
					s.logger.Debug("http3 connection closed", "remote", conn.RemoteAddr().String(), "error", err)
				}
			}()
		case mcpquic.ALPN:
			if s.mcp == nil {
				conn.CloseWithError(mcpquic.ConnErrorMCPDisabled, "mcp not enabled")
				continue
			}
			go s.mcp.ServeConn(ctx, conn)
		default:
			s.logger.Warn("unsupported alpn", "alpn", proto, "remote", conn.RemoteAddr().String())
			conn.CloseWithError(mcpquic.ConnErrorUnsupportedALPN, "unsupported ALPN "+proto)
		}
	}
}

// Stop shuts TCP down gracefully and closes the QUIC side.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closing.Store(true)

	var errs []error
	if s.tcp != nil {
		errs = append(errs, s.tcp.Shutdown(ctx))
	}
	if s.quicLn != nil {
		errs = append(errs, s.quicLn.Close())
	}
	if s.h3 != nil {
		errs = append(errs, s.h3.Close())
	}
	s.logger.Info("chassis stopped")
	return errors.Join(errs...)
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// altSvc advertises HTTP/3 on port for a day.
func altSvc(port int, next http.Handler) http.Handler {
	value := fmt.Sprintf(`h3=":%d"; ma=86400`, port)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", value)
		next.ServeHTTP(w, r)
	})
}
