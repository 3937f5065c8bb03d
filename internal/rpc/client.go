// Package rpc implements the one-shot JSON-RPC 2.0 over HTTP client used to
// drive the WiRE externally controlled measurement API. Each call is an
// independent POST; there is no persistent connection or dispatch loop.
package rpc

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aviva-bulow/renishaw-ecm/internal/logger"
	"github.com/aviva-bulow/renishaw-ecm/pkg/protocol"
)

// DefaultTimeout bounds each HTTP round trip. It is kept well under the
// 250ms polling interval so a stalled server cannot starve the wait loop.
const DefaultTimeout = 200 * time.Millisecond

// stateMethod is polled continuously and would drown the debug log.
const stateMethod = "Queue.GetMeasurementState"

// Client issues calls against a single endpoint. It owns the request id
// counter: ids start at 0 and increase by one per call, never reused within
// the Client's lifetime. Not safe for concurrent use; a session is a single
// sequential thread of control.
type Client struct {
	url        string
	httpClient *http.Client
	nextID     int64
	log        *slog.Logger
}

// NewClient returns a client for the given endpoint URL. A non-positive
// timeout means DefaultTimeout. The HTTP transport carries no proxy: the
// instrument lives on the lab network and must be reached directly.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Transport: &http.Transport{Proxy: nil},
			Timeout:   timeout,
		},
		log: logger.ForComponent("rpc"),
	}
}

// NextID reports the id the next call will carry.
func (c *Client) NextID() int64 { return c.nextID }

// Call performs one JSON-RPC exchange and returns the decoded result value
// (scalar, map, or slice depending on the method); interpreting its shape is
// the caller's job. A nil params map is sent as an empty object.
//
// Failures map onto the error taxonomy in this package: *TransportError for
// network errors and non-2xx statuses, *ProtocolError for bodies that do not
// parse, *Error for server-reported errors.
func (c *Client) Call(method string, params map[string]any) (any, error) {
	if params == nil {
		params = map[string]any{}
	}
	req := protocol.Request{
		JSONRPC: protocol.Version,
		ID:      c.nextID,
		Method:  method,
		Params:  params,
	}
	c.nextID++

	if method != stateMethod {
		c.log.Debug("sent command", "method", method, "id", req.ID)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ProtocolError{Err: err}
	}
	resp, err := c.httpClient.Post(c.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Status: resp.StatusCode, Body: string(raw)}
	}

	var rpcResp protocol.Response
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return nil, &ProtocolError{Err: err}
	}
	if rpcResp.Error != nil {
		return nil, &Error{Code: rpcResp.Error.Code, Message: rpcResp.Error.Message}
	}
	if len(rpcResp.Result) == 0 {
		return nil, nil
	}
	var result any
	if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
		return nil, &ProtocolError{Err: err}
	}
	return result, nil
}
