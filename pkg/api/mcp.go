package api

import (
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/partmatch/pkg/kit"
	"github.com/hazyhaar/partmatch/pkg/parts"
)

type mcpTool struct {
	tool     mcp.Tool
	endpoint kit.Endpoint
	decode   func(mcp.CallToolRequest) (*kit.MCPDecodeResult, error)
}

// NewMCPServer returns an MCP server with all partmatch tools registered.
func NewMCPServer(svc Service, version string) *server.MCPServer {
	srv := server.NewMCPServer("partmatch", version, server.WithToolCapabilities(false))
	RegisterMCPTools(srv, svc)
	return srv
}

// RegisterMCPTools registers the partmatch MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, svc Service) {
	for _, t := range mcpTools(svc) {
		kit.RegisterMCPTool(srv, t.tool, t.endpoint, t.decode)
	}
}

func mcpTools(svc Service) []mcpTool {
	return []mcpTool{
		extractRangesTool(svc),
		findCompatibleTool(svc),
		listComponentsTool(svc),
	}
}

func extractRangesTool(svc Service) mcpTool {
	return mcpTool{
		tool: mcp.NewTool("extract_ranges",
			mcp.WithDescription("Extract operating voltage and temperature ranges from datasheet text."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Datasheet text")),
			mcp.WithString("name", mcp.Description("Component name for the result (default: document)")),
		),
		endpoint: svc.wrap("extract", extractEndpoint(svc.Extractor)),
		decode: func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
			args := req.GetArguments()
			text, ok := args["text"].(string)
			if !ok {
				return nil, fmt.Errorf("text is required")
			}
			name, _ := args["name"].(string)
			return &kit.MCPDecodeResult{Request: &extractReq{Name: name, Text: text}}, nil
		},
	}
}

func findCompatibleTool(svc Service) mcpTool {
	return mcpTool{
		tool: mcp.NewTool("find_compatible",
			mcp.WithDescription("List library components whose voltage and temperature ranges both contain the operating point."),
			mcp.WithNumber("voltage", mcp.Required(), mcp.Description("Operating voltage in volts")),
			mcp.WithNumber("temperature", mcp.Required(), mcp.Description("Operating temperature in degrees Celsius")),
		),
		endpoint: svc.wrap("compatible", compatibleEndpoint(svc.Catalog, svc.Metrics)),
		decode: func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
			args := req.GetArguments()
			q, err := parts.ParseQuery(numberArg(args["voltage"]), numberArg(args["temperature"]))
			if err != nil {
				if svc.Metrics != nil {
					svc.Metrics.ObserveQuery(0, err)
				}
				return nil, err
			}
			return &kit.MCPDecodeResult{Request: &q}, nil
		},
	}
}

func listComponentsTool(svc Service) mcpTool {
	return mcpTool{
		tool: mcp.NewTool("list_components",
			mcp.WithDescription("List loaded components with their candidate and authoritative ranges."),
		),
		endpoint: svc.wrap("list_components", listComponentsEndpoint(svc.Catalog)),
		decode: func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
			return &kit.MCPDecodeResult{Request: nil}, nil
		},
	}
}

// numberArg accepts JSON numbers and numeric strings; anything else is
// rendered so that ParseQuery rejects it with the field name.
func numberArg(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	case string:
		return n
	case nil:
		return ""
	default:
		return fmt.Sprint(n)
	}
}
