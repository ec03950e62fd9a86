package mcpquic

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"

	"github.com/quic-go/quic-go"
)

// Listener is a QUIC socket dedicated to MCP, for deployments that do not
// run the HTTP chassis.
type Listener struct {
	ln      *quic.Listener
	handler *Handler
	logger  *slog.Logger
	closed  atomic.Bool
}

// Listen binds addr. tlsCfg must carry a certificate; its ALPN list is
// replaced by the MCP protocol.
func Listen(addr string, tlsCfg *tls.Config, h *Handler) (*Listener, error) {
	ln, err := quic.ListenAddr(addr, ServerTLSConfig(tlsCfg), QUICConfig())
	if err != nil {
		return nil, fmt.Errorf("mcp listen %s: %w", addr, err)
	}
	return &Listener{ln: ln, handler: h, logger: h.logger}, nil
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Serve accepts connections until ctx is done or the listener is closed.
func (l *Listener) Serve(ctx context.Context) error {
	l.logger.Info("mcp quic listening", "addr", l.Addr().String(), "alpn", ALPN)
	for {
		conn, err := l.ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || l.closed.Load() {
				return nil
			}
			return fmt.Errorf("mcp accept: %w", err)
		}
		if proto := conn.ConnectionState().TLS.NegotiatedProtocol; proto != ALPN {
			conn.CloseWithError(ConnErrorUnsupportedALPN, "unsupported ALPN "+proto)
			continue
		}
		go l.handler.ServeConn(ctx, conn)
	}
}

func (l *Listener) Close() error {
	l.closed.Store(true)
	return l.ln.Close()
}
