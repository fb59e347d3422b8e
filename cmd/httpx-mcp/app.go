package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/httpx-mcp/pkg/config"
	"github.com/tb0hdan/httpx-mcp/pkg/dispatch"
	"github.com/tb0hdan/httpx-mcp/pkg/server"
	"github.com/tb0hdan/httpx-mcp/pkg/shim"
	"github.com/tb0hdan/httpx-mcp/pkg/tools"
	"github.com/tb0hdan/httpx-mcp/pkg/tools/httpx"
)

const readHeaderTimeout = 10 * time.Second

// newApp wires the MCP server, its tools and the HTTP routes.
func newApp(cfg *config.Config, version string, logger zerolog.Logger) (*server.Server, http.Handler, error) {
	impl := &mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}
	srv := server.NewServer(impl)

	toolList := []tools.Tool{
		httpx.New(logger),
	}
	for _, tool := range toolList {
		if err := tool.Register(srv); err != nil {
			return nil, nil, fmt.Errorf("failed to register tool: %w", err)
		}
	}

	// Stateless mode avoids "session not found" errors after server restart
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return &srv.Server
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})

	router := mux.NewRouter()
	router.Handle(cfg.Route, shim.New(dispatch.New(srv, logger), mcpHandler, logger, cfg.MaxBodyBytes)).
		Methods(http.MethodGet, http.MethodPost, http.MethodDelete)
	router.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"service": ServiceName,
			"version": version,
			"endpoints": map[string]string{
				"mcp": cfg.Route,
			},
		})
	}).Methods(http.MethodGet)

	return srv, router, nil
}
