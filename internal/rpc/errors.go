package rpc

import "fmt"

// TransportError reports an HTTP-level failure: the connection could not be
// made, the request timed out, or the server answered with a non-2xx status.
type TransportError struct {
	Status int    // HTTP status code, zero when the request never completed
	Body   string // raw response body for status failures
	Err    error  // underlying network error, nil for status failures
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rpc transport: %v", e.Err)
	}
	return fmt.Sprintf("rpc transport: status %d: %s", e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a successful HTTP exchange whose body does not parse
// as a JSON-RPC response.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("rpc protocol: %v", e.Err) }

func (e *ProtocolError) Unwrap() error { return e.Err }

// Error is a well-formed JSON-RPC error reported by the server. Its message
// is surfaced verbatim.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }
