// Package protocol defines the JSON-RPC 2.0 wire types spoken by the WiRE
// externally controlled measurement API.
package protocol

import "encoding/json"

// Version is the fixed jsonrpc member carried by every request.
const Version = "2.0"

// Request is one JSON-RPC call. IDs are assigned by the client, starting at
// zero and increasing by one per call for the lifetime of a connection.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// Response carries either a result or an error, never both. Result stays raw
// so arbitrary JSON shapes pass through to the caller untouched.
type Response struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the server-reported error member of a response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
