package shim

import (
	"mime"
	"strings"
)

const (
	mimeJSON        = "application/json"
	mimeEventStream = "text/event-stream"

	// NegotiatedAccept is the Accept value the MCP handler insists on.
	NegotiatedAccept = mimeJSON + ", " + mimeEventStream
)

// Negotiated reports whether an Accept header lists both the JSON and the
// event stream media types. Parameters such as q are ignored.
func Negotiated(accept string) bool {
	var hasJSON, hasEventStream bool
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case mimeJSON:
			hasJSON = true
		case mimeEventStream:
			hasEventStream = true
		}
	}
	return hasJSON && hasEventStream
}
