package tools

import (
	"github.com/tb0hdan/httpx-mcp/pkg/server"
)

type Tool interface {
	Register(srv *server.Server) error
}
