// Package jsonrpc holds the JSON-RPC 2.0 envelopes answered outside the MCP
// server.
package jsonrpc

import "encoding/json"

// Version is the only protocol version accepted on the wire.
const Version = "2.0"

// InvalidParams is the JSON-RPC 2.0 code for bad method parameters.
const InvalidParams = -32602

// Request is an incoming call. ID and Params are kept raw so the id can be
// echoed byte for byte.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Error is the error member of a response.
type Error struct {
	// The error type that occurred.
	Code int `json:"code"`
	// A short description of the error.
	Message string `json:"message"`
	// Additional information about the error, defined by the sender.
	Data any `json:"data,omitempty"`
}

// Response carries either Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Decode parses a single request. It does not check the method set.
func Decode(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// NewResponse creates a successful response.
func NewResponse(id json.RawMessage, result any) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      nullID(id),
		Result:  result,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      nullID(id),
		Error:   &Error{Code: code, Message: message},
	}
}

func nullID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}
