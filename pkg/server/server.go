package server

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DirectTool is a tool that can also be called without an MCP session,
// straight from a decoded tools/call request.
type DirectTool interface {
	Definition() *mcp.Tool
	CallRaw(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error)
}

type Server struct {
	mcp.Server
	impl   *mcp.Implementation
	direct []DirectTool
}

func NewServer(impl *mcp.Implementation) *Server {
	return &Server{
		Server: *mcp.NewServer(impl, nil),
		impl:   impl,
	}
}

// Implementation returns the name and version the server was created with.
func (s *Server) Implementation() *mcp.Implementation {
	return s.impl
}

// AddDirectTool exposes a tool to callers that bypass the MCP server.
// Tools must be added before the server starts handling requests.
func (s *Server) AddDirectTool(tool DirectTool) {
	s.direct = append(s.direct, tool)
}

// DirectTools returns the tools in registration order.
func (s *Server) DirectTools() []DirectTool {
	return s.direct
}

func (s *Server) Shutdown(_ context.Context) error {
	return nil
}
