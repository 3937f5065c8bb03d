package ecm

import (
	"testing"
	"time"

	"github.com/aviva-bulow/renishaw-ecm/internal/rpc"
)

// call records one RPC issued through the fake caller.
type call struct {
	method string
	params map[string]any
}

// scriptCaller satisfies Caller, recording every call and delegating to
// handler for the answer.
type scriptCaller struct {
	calls   []call
	handler func(method string, params map[string]any) (any, error)
}

func (s *scriptCaller) Call(method string, params map[string]any) (any, error) {
	s.calls = append(s.calls, call{method, params})
	return s.handler(method, params)
}

func (s *scriptCaller) methods() []string {
	names := make([]string, len(s.calls))
	for i, c := range s.calls {
		names[i] = c.method
	}
	return names
}

// newTestSession wires a session to a scripted caller with a recording sleep
// so no test waits on real time.
func newTestSession(handler func(method string, params map[string]any) (any, error)) (*Session, *scriptCaller, *[]time.Duration) {
	caller := &scriptCaller{handler: handler}
	s := NewSession(caller)
	sleeps := &[]time.Duration{}
	s.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return s, caller, sleeps
}

func TestWaitCompletes(t *testing.T) {
	statuses := []string{"RUNNING", "RUNNING", "RUNNING", "COMPLETE"}
	queries := 0
	s, _, sleeps := newTestSession(func(method string, params map[string]any) (any, error) {
		status := statuses[queries]
		queries++
		return status, nil
	})

	state, status, err := s.Wait(1, 1000*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if state != WaitComplete {
		t.Errorf("state = %v, want complete", state)
	}
	if status != "COMPLETE" {
		t.Errorf("status = %q, want COMPLETE", status)
	}
	if queries != 4 {
		t.Errorf("queries = %d, want 4", queries)
	}
	if len(*sleeps) != 3 {
		t.Fatalf("sleeps = %d, want 3", len(*sleeps))
	}
	for _, d := range *sleeps {
		if d != 250*time.Millisecond {
			t.Errorf("slept %v, want 250ms", d)
		}
	}
}

func TestWaitTimesOut(t *testing.T) {
	queries := 0
	s, _, sleeps := newTestSession(func(method string, params map[string]any) (any, error) {
		queries++
		return "RUNNING", nil
	})

	state, status, err := s.Wait(1, 500*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if state != WaitTimedOut {
		t.Errorf("state = %v, want timed-out", state)
	}
	if status != "RUNNING" {
		t.Errorf("status = %q, want RUNNING", status)
	}
	if queries != 2 {
		t.Errorf("queries = %d, want 2", queries)
	}
	if len(*sleeps) != 1 {
		t.Errorf("sleeps = %d, want 1", len(*sleeps))
	}
}

func TestWaitSurvivesRPCError(t *testing.T) {
	queries := 0
	s, _, _ := newTestSession(func(method string, params map[string]any) (any, error) {
		queries++
		if queries == 1 {
			return nil, &rpc.Error{Code: -32000, Message: "queue busy"}
		}
		return "COMPLETE", nil
	})

	state, _, err := s.Wait(1, 1000*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if state != WaitComplete {
		t.Errorf("state = %v, want complete", state)
	}
	if queries != 2 {
		t.Errorf("queries = %d, want 2", queries)
	}
}

func TestWaitPropagatesTransportError(t *testing.T) {
	s, _, _ := newTestSession(func(method string, params map[string]any) (any, error) {
		return nil, &rpc.TransportError{Status: 502, Body: "bad gateway"}
	})

	state, _, err := s.Wait(1, 1000*time.Millisecond)
	if err == nil {
		t.Fatal("transport error did not propagate")
	}
	if state != WaitNone {
		t.Errorf("state = %v, want none alongside the error", state)
	}
}
