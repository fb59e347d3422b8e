// Package dispatch answers the MCP methods that can be served without a
// session: initialize, tools/list and tools/call.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/httpx-mcp/pkg/jsonrpc"
	"github.com/tb0hdan/httpx-mcp/pkg/server"
	"github.com/tb0hdan/httpx-mcp/pkg/tools"
)

// ProtocolVersion is reported in initialize results.
const ProtocolVersion = "2025-03-26"

const (
	MethodInitialize = "initialize"
	MethodToolsList  = "tools/list"
	MethodToolsCall  = "tools/call"
)

// Reply is a response together with the HTTP status it is sent with.
type Reply struct {
	Status int
	Body   *jsonrpc.Response
}

// MethodFunc answers one method. It returns false when the request is not
// its concern and should be left to the MCP server.
type MethodFunc func(ctx context.Context, req *jsonrpc.Request) (*Reply, bool)

// Table maps method names to their handlers.
type Table struct {
	logger  zerolog.Logger
	impl    *mcp.Implementation
	tools   []server.DirectTool
	methods map[string]MethodFunc
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// New builds the table from the tools already registered on srv.
func New(srv *server.Server, logger zerolog.Logger) *Table {
	table := &Table{
		logger: logger.With().Str("component", "dispatch").Logger(),
		impl:   srv.Implementation(),
		tools:  srv.DirectTools(),
	}
	table.methods = map[string]MethodFunc{
		MethodInitialize: table.initialize,
		MethodToolsList:  table.listTools,
		MethodToolsCall:  table.callTool,
	}
	return table
}

// Lookup returns the handler registered for method.
func (t *Table) Lookup(method string) (MethodFunc, bool) {
	fn, ok := t.methods[method]
	return fn, ok
}

// Dispatch answers req, or returns false when no handler takes it.
func (t *Table) Dispatch(ctx context.Context, req *jsonrpc.Request) (*Reply, bool) {
	fn, ok := t.Lookup(req.Method)
	if !ok {
		return nil, false
	}
	return fn(ctx, req)
}

func (t *Table) initialize(_ context.Context, req *jsonrpc.Request) (*Reply, bool) {
	result := &mcp.InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: true},
		},
		ServerInfo: t.impl,
	}
	return success(req, result), true
}

func (t *Table) listTools(_ context.Context, req *jsonrpc.Request) (*Reply, bool) {
	defs := make([]*mcp.Tool, 0, len(t.tools))
	for _, tool := range t.tools {
		defs = append(defs, tool.Definition())
	}
	return success(req, &mcp.ListToolsResult{Tools: defs}), true
}

func (t *Table) callTool(ctx context.Context, req *jsonrpc.Request) (*Reply, bool) {
	var params callParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		t.logger.Debug().Err(err).Msg("tools/call params not understood")
		return nil, false
	}

	tool := t.find(params.Name)
	if tool == nil {
		return nil, false
	}

	result, err := tool.CallRaw(ctx, params.Arguments)
	switch {
	case errors.Is(err, tools.ErrInvalidParams):
		return &Reply{
			Status: http.StatusBadRequest,
			Body:   jsonrpc.NewErrorResponse(req.ID, jsonrpc.InvalidParams, err.Error()),
		}, true
	case err != nil:
		t.logger.Error().Err(err).Str("tool", params.Name).Msg("tool call failed")
		result = &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
			IsError: true,
		}
	}
	return success(req, result), true
}

func (t *Table) find(name string) server.DirectTool {
	for _, tool := range t.tools {
		if tool.Definition().Name == name {
			return tool
		}
	}
	return nil
}

func success(req *jsonrpc.Request, result any) *Reply {
	return &Reply{
		Status: http.StatusOK,
		Body:   jsonrpc.NewResponse(req.ID, result),
	}
}
