package mcpquic_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/partmatch/pkg/chassis"
	"github.com/hazyhaar/partmatch/pkg/kit"
	"github.com/hazyhaar/partmatch/pkg/mcpquic"
)

func startListener(t *testing.T, srv *server.MCPServer) string {
	t.Helper()
	tlsCfg, err := chassis.DevelopmentTLSConfig()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ln, err := mcpquic.Listen("127.0.0.1:0", tlsCfg, mcpquic.NewHandler(srv, logger))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ln.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		ln.Close()
		<-done
	})
	return ln.Addr().String()
}

func transportServer() *server.MCPServer {
	srv := server.NewMCPServer("partmatch-test", "test", server.WithToolCapabilities(false))
	kit.RegisterMCPTool(srv,
		mcp.NewTool("transport", mcp.WithDescription("Report the calling transport")),
		func(ctx context.Context, _ any) (any, error) {
			return map[string]string{"transport": kit.GetTransport(ctx)}, nil
		},
		func(mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
			return &kit.MCPDecodeResult{}, nil
		})
	return srv
}

func TestListener_Session(t *testing.T) {
	addr := startListener(t, transportServer())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c := mcpquic.NewClient(addr, nil)
	require.NoError(t, c.Connect(ctx, "partmatch-test-client", "test"))
	defer c.Close()

	require.NoError(t, c.Ping(ctx))

	tools, err := c.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, "transport", tools.Tools[0].Name)

	res, err := c.CallTool(ctx, "transport", nil)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.JSONEq(t, `{"transport":"mcp_quic"}`, res.Content[0].(mcp.TextContent).Text)
}

func TestClient_NotConnected(t *testing.T) {
	c := mcpquic.NewClient("127.0.0.1:1", nil)
	_, err := c.CallTool(context.Background(), "transport", nil)
	assert.ErrorIs(t, err, mcpquic.ErrNotConnected)
	assert.NoError(t, c.Close())
}

func TestClient_WrongALPN(t *testing.T) {
	addr := startListener(t, transportServer())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cfg := mcpquic.ClientTLSConfig(true)
	cfg.NextProtos = []string{"h3"}
	err := mcpquic.NewClient(addr, cfg).Connect(ctx, "partmatch-test-client", "test")
	assert.Error(t, err, "a listener without h3 must refuse the handshake")
}
