// Package mcpserver exposes the tool catalog over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/trip-dining/agent/tool"
)

const (
	DefaultName    = "trip-dining"
	DefaultVersion = "1.0.0"
)

type Server struct {
	mcp  *server.MCPServer
	exec tool.Executor
}

// New registers every tool in infos, dispatching calls to exec.
func New(name, version string, infos []*schema.ToolInfo, exec tool.Executor) (*Server, error) {
	if name == "" {
		name = DefaultName
	}
	if version == "" {
		version = DefaultVersion
	}

	s := &Server{
		mcp:  server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
		exec: exec,
	}
	for _, info := range infos {
		t, err := toMCPTool(info)
		if err != nil {
			return nil, err
		}
		s.mcp.AddTool(t, s.handler(info.Name))
	}
	return s, nil
}

// ServeStdio blocks serving JSON-RPC over stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Info().Msg("mcp server listening on stdio")
	return server.ServeStdio(s.mcp)
}

// toMCPTool publishes the eino parameter description as the tool's input
// JSON schema.
func toMCPTool(info *schema.ToolInfo) (mcp.Tool, error) {
	if info == nil || info.Name == "" {
		return mcp.Tool{}, fmt.Errorf("tool info without a name")
	}

	params, err := info.ParamsOneOf.ToOpenAPIV3()
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("tool %s schema: %w", info.Name, err)
	}
	raw := json.RawMessage(`{"type":"object","properties":{}}`)
	if params != nil {
		raw, err = json.Marshal(params)
		if err != nil {
			return mcp.Tool{}, fmt.Errorf("encode tool %s schema: %w", info.Name, err)
		}
	}
	return mcp.NewToolWithRawSchema(info.Name, info.Desc, raw), nil
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := s.exec(ctx, name, req.GetArguments())
		if err != nil {
			return nil, err
		}
		if res.Error != "" {
			log.Debug().Str("tool", name).Str("error", res.Error).Msg("tool call returned an error")
			return mcp.NewToolResultError(res.Error), nil
		}
		return toolResultContent(res.Result)
	}
}

// toolResultContent keeps rendered restaurant text as is and encodes any
// other result as JSON.
func toolResultContent(result any) (*mcp.CallToolResult, error) {
	if out, ok := result.(tool.TopRestaurantOutput); ok {
		return mcp.NewToolResultText(out.Text), nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
