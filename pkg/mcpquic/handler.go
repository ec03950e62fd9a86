package mcpquic

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"

	"github.com/hazyhaar/partmatch/pkg/kit"
)

// Handler serves MCP sessions on QUIC connections it does not own. The
// chassis hands it connections that negotiated ALPN; Listener does the same
// for a dedicated socket.
type Handler struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

func NewHandler(srv *server.MCPServer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{mcp: srv, logger: logger}
}

// ServeConn runs one MCP session on the first stream the peer opens and
// returns when the stream or ctx ends.
func (h *Handler) ServeConn(ctx context.Context, conn *quic.Conn) {
	remote := conn.RemoteAddr().String()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		h.logger.Warn("mcp stream not opened", "remote", remote, "error", err)
		conn.CloseWithError(ConnErrorProtocolViolation, "no stream")
		return
	}
	if err := ReadMagic(stream); err != nil {
		h.logger.Warn("mcp preamble rejected", "remote", remote, "error", err)
		stream.CancelRead(StreamErrorBadMagic)
		stream.CancelWrite(StreamErrorBadMagic)
		conn.CloseWithError(ConnErrorProtocolViolation, "bad magic")
		return
	}

	sess := &session{
		id:            "quic_" + uuid.NewString()[:8],
		notifications: make(chan mcp.JSONRPCNotification, 64),
		w:             stream,
	}
	if err := h.mcp.RegisterSession(ctx, sess); err != nil {
		h.logger.Error("mcp session not registered", "session", sess.id, "error", err)
		stream.Close()
		return
	}
	defer h.mcp.UnregisterSession(ctx, sess.id)

	ctx, cancel := context.WithCancel(kit.WithTransport(ctx, "mcp_quic"))
	defer cancel()
	ctx = h.mcp.WithContext(ctx, sess)
	go sess.forwardNotifications(ctx)

	h.logger.Info("mcp session started", "session", sess.id, "remote", remote)
	defer h.logger.Info("mcp session ended", "session", sess.id, "remote", remote)

	sc := bufio.NewScanner(stream)
	sc.Buffer(make([]byte, 0, 64<<10), MaxMessageSize)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := h.mcp.HandleMessage(ctx, json.RawMessage(line))
		if resp == nil {
			continue
		}
		if err := sess.send(resp); err != nil {
			h.logger.Warn("mcp write failed", "session", sess.id, "error", err)
			return
		}
	}
	switch err := sc.Err(); {
	case errors.Is(err, bufio.ErrTooLong):
		h.logger.Warn("mcp message too large", "session", sess.id, "limit", MaxMessageSize)
		stream.CancelRead(StreamErrorMessageTooLarge)
		stream.CancelWrite(StreamErrorMessageTooLarge)
	case err != nil && ctx.Err() == nil:
		h.logger.Warn("mcp read failed", "session", sess.id, "error", err)
	default:
		stream.Close()
	}
}

// session is the server.ClientSession of one QUIC connection. Responses and
// notifications share the stream, so writes are serialised.
type session struct {
	id            string
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool

	mu sync.Mutex
	w  io.Writer
}

func (s *session) SessionID() string                                   { return s.id }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

func (s *session) send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(append(data, '\n'))
	return err
}

func (s *session) forwardNotifications(ctx context.Context) {
	for {
		select {
		case n := <-s.notifications:
			if err := s.send(n); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
