package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// WrapToolHandler wraps a tool handler to add execution logging.
func WrapToolHandler[In, Out any](
	logger zerolog.Logger,
	toolName string,
	handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error),
) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error) {
		startTime := time.Now()

		// Get session ID from request
		sessionID := ""
		if req != nil && req.Session != nil {
			sessionID = req.Session.ID()
		}

		result, output, err := handler(ctx, req, input)

		event := logger.Info()
		if err != nil {
			event = logger.Warn().Err(err)
		}
		event.
			Str("tool", toolName).
			Str("session_id", sessionID).
			Dur("duration", time.Since(startTime)).
			Bool("success", err == nil).
			Msg("tool executed")

		return result, output, err
	}
}
