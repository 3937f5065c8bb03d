package ecm

import (
	"errors"
	"time"

	"github.com/aviva-bulow/renishaw-ecm/internal/rpc"
)

// WaitState is the terminal state of a completion wait.
type WaitState int

const (
	// WaitNone accompanies a propagated error: no terminal state was reached.
	WaitNone WaitState = iota
	WaitComplete
	WaitTimedOut
)

func (w WaitState) String() string {
	switch w {
	case WaitComplete:
		return "complete"
	case WaitTimedOut:
		return "timed-out"
	default:
		return "none"
	}
}

const statusComplete = "COMPLETE"

// Wait polls the measurement state every poll interval until it reads
// COMPLETE or the timeout budget is exhausted. A server-reported RPC error
// on an individual query is non-fatal: it is logged and the iteration
// consumes budget as if the measurement were still running. Transport and
// protocol errors propagate. Returns the terminal state and the last status
// observed, which callers use to decide whether to abort before removal.
func (s *Session) Wait(handle any, timeout time.Duration) (WaitState, string, error) {
	return s.pollUntilComplete(func() (string, error) {
		return s.State(handle)
	}, timeout)
}

func (s *Session) pollUntilComplete(query func() (string, error), timeout time.Duration) (WaitState, string, error) {
	status := ""
	for {
		st, err := query()
		if err != nil {
			var rpcErr *rpc.Error
			if !errors.As(err, &rpcErr) {
				return WaitNone, status, err
			}
			s.log.Warn("state query failed", "err", rpcErr)
		} else {
			status = st
			s.log.Debug("status", "status", status)
			if status == statusComplete {
				return WaitComplete, status, nil
			}
		}
		timeout -= s.interval
		if timeout <= 0 {
			return WaitTimedOut, status, nil
		}
		s.sleep(s.interval)
	}
}
