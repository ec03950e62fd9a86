package kit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}
	ep := Chain(mark("a"), mark("b"), mark("c"))(func(context.Context, any) (any, error) {
		order = append(order, "endpoint")
		return nil, nil
	})
	if _, err := ep(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(order, ","); got != "a,b,c,endpoint" {
		t.Errorf("order = %s", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	ep := RequestID()(func(ctx context.Context, _ any) (any, error) {
		seen = GetRequestID(ctx)
		return nil, nil
	})

	ep(context.Background(), nil)
	if len(seen) != 36 {
		t.Errorf("generated id = %q, want a uuid", seen)
	}

	ep(WithRequestID(context.Background(), "fixed"), nil)
	if seen != "fixed" {
		t.Errorf("existing id overwritten: %q", seen)
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ok := Logging(logger, "list")(func(context.Context, any) (any, error) { return 1, nil })
	fail := Logging(logger, "extract")(func(context.Context, any) (any, error) { return nil, errors.New("boom") })

	ok(WithTransport(context.Background(), "mcp"), nil)
	if _, err := fail(context.Background(), nil); err == nil {
		t.Fatal("error swallowed")
	}

	out := buf.String()
	for _, want := range []string{"endpoint=list", "transport=mcp", "endpoint=extract", "level=WARN", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestGetTransport_Default(t *testing.T) {
	if got := GetTransport(context.Background()); got != "http" {
		t.Errorf("GetTransport = %q", got)
	}
}

func TestMCPHandler(t *testing.T) {
	echo := func(ctx context.Context, req any) (any, error) {
		if req == "fail" {
			return nil, errors.New("endpoint failed")
		}
		return map[string]string{"got": req.(string), "transport": GetTransport(ctx)}, nil
	}
	decode := func(req mcp.CallToolRequest) (*MCPDecodeResult, error) {
		v, ok := req.GetArguments()["value"].(string)
		if !ok {
			return nil, errors.New("value required")
		}
		return &MCPDecodeResult{Request: v}, nil
	}
	h := MCPHandler(echo, decode)

	call := func(args map[string]any) *mcp.CallToolResult {
		t.Helper()
		var req mcp.CallToolRequest
		req.Params.Arguments = args
		res, err := h(context.Background(), req)
		if err != nil {
			t.Fatalf("protocol error: %v", err)
		}
		return res
	}

	res := call(map[string]any{"value": "x"})
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res)
	}
	text := res.Content[0].(mcp.TextContent).Text
	if text != `{"got":"x","transport":"mcp"}` {
		t.Errorf("result = %s", text)
	}

	if res := call(map[string]any{}); !res.IsError {
		t.Error("decode error not reported")
	}
	if res := call(map[string]any{"value": "fail"}); !res.IsError {
		t.Error("endpoint error not reported")
	}

	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]any{"value": "y"}
	res, err := h(WithTransport(context.Background(), "mcp_quic"), req)
	if err != nil {
		t.Fatalf("protocol error: %v", err)
	}
	if text := res.Content[0].(mcp.TextContent).Text; text != `{"got":"y","transport":"mcp_quic"}` {
		t.Errorf("session transport not kept: %s", text)
	}
}
