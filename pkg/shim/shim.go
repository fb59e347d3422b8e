// Package shim sits in front of the MCP streamable HTTP handler. Clients
// that do not accept both JSON and event stream responses get initialize,
// tools/list and tools/call answered directly; everything else is forwarded
// with a corrected Accept header.
package shim

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/httpx-mcp/pkg/dispatch"
)

// DefaultMaxBodyBytes bounds the request body read into memory.
const DefaultMaxBodyBytes = 1 << 20

type Shim struct {
	logger       zerolog.Logger
	direct       Responder
	forward      Responder
	maxBodyBytes int64
}

// New returns a shim answering from table and forwarding to next.
func New(table *dispatch.Table, next http.Handler, logger zerolog.Logger, maxBodyBytes int64) *Shim {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Shim{
		logger:       logger.With().Str("component", "shim").Logger(),
		direct:       NewDirectResponder(table),
		forward:      NewForwardResponder(next),
		maxBodyBytes: maxBodyBytes,
	}
}

func (s *Shim) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With().
		Str("request_id", uuid.NewString()).
		Str("http_method", r.Method).
		Logger()
	r = r.WithContext(logger.WithContext(r.Context()))

	accept := r.Header.Get("Accept")
	logger.Debug().Str("accept", accept).Msg("incoming request")

	body, err := s.readBody(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn().Int64("limit", tooLarge.Limit).Msg("request body too large")
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		logger.Warn().Err(err).Msg("failed to read request body")
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	for _, responder := range s.responders(accept) {
		if responder.Respond(w, r, body) {
			return
		}
	}
}

// responders picks the chain for a request: direct answers first unless the
// client negotiated what the MCP handler expects.
func (s *Shim) responders(accept string) []Responder {
	if Negotiated(accept) {
		return []Responder{s.forward}
	}
	return []Responder{s.direct, s.forward}
}

func (s *Shim) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
}
