package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aviva-bulow/renishaw-ecm/pkg/protocol"
)

// newStubServer records every decoded request and answers with whatever the
// handler returns.
func newStubServer(t *testing.T, handler func(req protocol.Request) (status int, body string)) (*Client, *[]protocol.Request) {
	t.Helper()
	requests := &[]protocol.Request{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		var req protocol.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		*requests = append(*requests, req)
		status, body := handler(req)
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 0), requests
}

func TestCallAssignsSequentialIDs(t *testing.T) {
	client, requests := newStubServer(t, func(req protocol.Request) (int, string) {
		return http.StatusOK, fmt.Sprintf(`{"id":%d,"result":true}`, req.ID)
	})

	const n = 5
	for i := 0; i < n; i++ {
		if got := client.NextID(); got != int64(i) {
			t.Errorf("NextID before call %d = %d", i, got)
		}
		if _, err := client.Call("Queue.GetState", nil); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	if len(*requests) != n {
		t.Fatalf("server saw %d requests, want %d", len(*requests), n)
	}
	for i, req := range *requests {
		if req.ID != int64(i) {
			t.Errorf("request %d carried id %d", i, req.ID)
		}
		if req.JSONRPC != protocol.Version {
			t.Errorf("request %d jsonrpc = %q", i, req.JSONRPC)
		}
		if req.Method != "Queue.GetState" {
			t.Errorf("request %d method = %q", i, req.Method)
		}
		if req.Params == nil {
			t.Errorf("request %d carried no params object", i)
		}
	}
}

func TestCallSendsNamedParams(t *testing.T) {
	client, requests := newStubServer(t, func(req protocol.Request) (int, string) {
		return http.StatusOK, `{"id":0,"result":true}`
	})

	params := map[string]any{"handle": 7, "exposure": 500}
	if _, err := client.Call("Measurement.SetExposure", params); err != nil {
		t.Fatal(err)
	}

	// Numbers come back as float64 after the JSON round trip.
	want := map[string]any{"handle": 7.0, "exposure": 500.0}
	if diff := cmp.Diff(want, (*requests)[0].Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestCallResultRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		body string
		want any
	}{
		{"integer", `{"id":0,"result":42}`, 42.0},
		{"string", `{"id":0,"result":"COMPLETE"}`, "COMPLETE"},
		{"bool", `{"id":0,"result":true}`, true},
		{"null", `{"id":0,"result":null}`, nil},
		{"absent", `{"id":0}`, nil},
		{"sequence", `{"id":0,"result":[10.5,25.0,50.0]}`, []any{10.5, 25.0, 50.0}},
		{"mapping", `{"id":0,"result":{"path":"run1.wdf","ok":true}}`, map[string]any{"path": "run1.wdf", "ok": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newStubServer(t, func(protocol.Request) (int, string) {
				return http.StatusOK, tt.body
			})
			got, err := client.Call("Queue.GetState", nil)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCallServerError(t *testing.T) {
	client, _ := newStubServer(t, func(protocol.Request) (int, string) {
		return http.StatusOK, `{"id":0,"error":{"code":-32000,"message":"no such handle"}}`
	})

	result, err := client.Call("Queue.Remove", map[string]any{"handle": 99})
	if result != nil {
		t.Errorf("result = %v, want nil", result)
	}
	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("error = %T(%v), want *rpc.Error", err, err)
	}
	if rpcErr.Error() != "no such handle" {
		t.Errorf("message = %q, want %q", rpcErr.Error(), "no such handle")
	}
	if rpcErr.Code != -32000 {
		t.Errorf("code = %d, want -32000", rpcErr.Code)
	}
}

func TestCallHTTPStatusFailure(t *testing.T) {
	// A failing status always raises, even when the body would parse as a
	// valid result.
	client, _ := newStubServer(t, func(protocol.Request) (int, string) {
		return http.StatusInternalServerError, `{"id":0,"result":true}`
	})

	result, err := client.Call("Queue.GetState", nil)
	if result != nil {
		t.Errorf("result = %v, want nil", result)
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %T(%v), want *rpc.TransportError", err, err)
	}
	if transportErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", transportErr.Status)
	}
	if transportErr.Body != `{"id":0,"result":true}` {
		t.Errorf("body = %q", transportErr.Body)
	}
}

func TestCallMalformedBody(t *testing.T) {
	client, _ := newStubServer(t, func(protocol.Request) (int, string) {
		return http.StatusOK, `<html>not json</html>`
	})

	_, err := client.Call("Queue.GetState", nil)
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("error = %T(%v), want *rpc.ProtocolError", err, err)
	}
}

func TestCallConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, 0)
	_, err := client.Call("Queue.GetState", nil)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %T(%v), want *rpc.TransportError", err, err)
	}
	if transportErr.Err == nil {
		t.Error("transport error carries no underlying network error")
	}
}
