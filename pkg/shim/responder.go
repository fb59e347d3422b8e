package shim

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tb0hdan/httpx-mcp/pkg/dispatch"
	"github.com/tb0hdan/httpx-mcp/pkg/jsonrpc"
)

// Responder answers a request whose body has already been read. It returns
// false when it wrote nothing and the next responder should try.
type Responder interface {
	Respond(w http.ResponseWriter, r *http.Request, body []byte) bool
}

// DirectResponder answers JSON-RPC calls from the dispatch table without the
// MCP server.
type DirectResponder struct {
	table *dispatch.Table
}

func NewDirectResponder(table *dispatch.Table) *DirectResponder {
	return &DirectResponder{table: table}
}

func (d *DirectResponder) Respond(w http.ResponseWriter, r *http.Request, body []byte) bool {
	if r.Method != http.MethodPost {
		return false
	}

	logger := zerolog.Ctx(r.Context())

	req, err := jsonrpc.Decode(body)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to parse JSON-RPC body")
		return false
	}
	if req.IsNotification() {
		logger.Debug().Str("rpc_method", req.Method).Msg("notification left to the MCP handler")
		return false
	}

	reply, handled := d.table.Dispatch(r.Context(), req)
	if !handled {
		logger.Debug().Str("rpc_method", req.Method).Msg("not answered directly")
		return false
	}

	logger.Debug().Str("rpc_method", req.Method).Int("status", reply.Status).Msg("answered directly")
	w.Header().Set("Content-Type", mimeJSON)
	w.WriteHeader(reply.Status)
	if err := json.NewEncoder(w).Encode(reply.Body); err != nil {
		logger.Error().Err(err).Msg("failed to write response")
	}
	return true
}

// ForwardResponder hands the request to the MCP handler with an Accept
// header it will take.
type ForwardResponder struct {
	next http.Handler
}

func NewForwardResponder(next http.Handler) *ForwardResponder {
	return &ForwardResponder{next: next}
}

func (f *ForwardResponder) Respond(w http.ResponseWriter, r *http.Request, body []byte) bool {
	forwarded := r.Clone(r.Context())
	forwarded.Header.Set("Accept", NegotiatedAccept)
	forwarded.Body = io.NopCloser(bytes.NewReader(body))
	forwarded.ContentLength = int64(len(body))
	forwarded.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	f.next.ServeHTTP(w, forwarded)
	return true
}
