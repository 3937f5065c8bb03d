// Package ecm drives one externally controlled measurement through its
// remote lifecycle: create paused, configure, release, wait for completion,
// remove.
package ecm

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aviva-bulow/renishaw-ecm/internal/config"
	"github.com/aviva-bulow/renishaw-ecm/internal/logger"
	"github.com/aviva-bulow/renishaw-ecm/internal/whitelight"
)

// TriggerModeTCP arms a map measurement for triggers sent over TCP/IP.
const TriggerModeTCP = "TCP_IP"

const (
	pollInterval = 250 * time.Millisecond
	abortGrace   = 500 * time.Millisecond
)

// Caller is the one-shot RPC surface the session needs. *rpc.Client
// implements it.
type Caller interface {
	Call(method string, params map[string]any) (any, error)
}

// Session wraps the remote measurement queue API. The handle returned by
// Create identifies one queued measurement; it is opaque (the server may
// assign a number or a string) and is threaded through every other call
// unchanged. A created handle must always be handed back via Remove.
type Session struct {
	caller   Caller
	interval time.Duration       // polling interval
	grace    time.Duration       // delay between abort and remove
	sleep    func(time.Duration) // injectable so tests run without real time
	log      *slog.Logger
}

// NewSession returns a session issuing calls through caller.
func NewSession(caller Caller) *Session {
	return &Session{
		caller:   caller,
		interval: pollInterval,
		grace:    abortGrace,
		sleep:    time.Sleep,
		log:      logger.ForComponent("ecm"),
	}
}

// Create queues a new paused, non-monitored measurement built from the given
// template text and returns its handle.
func (s *Session) Create(template string) (any, error) {
	return s.caller.Call("Queue.Add", map[string]any{
		"paused":    true,
		"monitor":   false,
		"wxmString": template,
	})
}

// SetExposure sets the exposure time in milliseconds.
func (s *Session) SetExposure(handle any, exposure int) error {
	_, err := s.caller.Call("Measurement.SetExposure", map[string]any{
		"handle":   handle,
		"exposure": exposure,
	})
	return err
}

// SetFilename sets the data filename on the remote end.
func (s *Session) SetFilename(handle any, filename string) error {
	_, err := s.caller.Call("Measurement.SetFilename", map[string]any{
		"handle":   handle,
		"filename": filename,
	})
	return err
}

// SetAccumulations sets the number of accumulations.
func (s *Session) SetAccumulations(handle any, accumulations int) error {
	_, err := s.caller.Call("Measurement.SetAccumulations", map[string]any{
		"handle":        handle,
		"accumulations": accumulations,
	})
	return err
}

// SetLaserPower sets the laser power as a percentage.
func (s *Session) SetLaserPower(handle any, power float64) error {
	_, err := s.caller.Call("Measurement.SetLaserPower", map[string]any{
		"handle": handle,
		"power":  power,
	})
	return err
}

// LaserPowers reports the laser power settings available to the queued
// measurement. Valid only while the measurement exists; it never runs it.
func (s *Session) LaserPowers(handle any) ([]float64, error) {
	result, err := s.caller.Call("Measurement.GetLaserPowers", map[string]any{
		"handle": handle,
	})
	if err != nil {
		return nil, err
	}
	values, ok := result.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected laser power list %T", result)
	}
	powers := make([]float64, 0, len(values))
	for _, v := range values {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("unexpected laser power value %T", v)
		}
		powers = append(powers, f)
	}
	return powers, nil
}

// SetImage attaches a whitelight image and its sample geometry.
func (s *Session) SetImage(handle any, img *whitelight.Image) error {
	params := img.Params()
	params["handle"] = handle
	_, err := s.caller.Call("Measurement.SetImage", params)
	return err
}

// SetMapArea configures the measurement as a rectangular map.
func (s *Session) SetMapArea(handle any, area *config.MapArea) error {
	_, err := s.caller.Call("Measurement.SetMap", map[string]any{
		"handle":         handle,
		"rectangleParam": area.Params(),
	})
	return err
}

// SetMapSeries configures the measurement as a series.
func (s *Session) SetMapSeries(handle any, series *config.Series) error {
	_, err := s.caller.Call("Measurement.SetMap", map[string]any{
		"handle":      handle,
		"seriesParam": series.Params(),
	})
	return err
}

// SetMapCustomAxis adds a custom data origin to a map or series.
func (s *Session) SetMapCustomAxis(handle any, axis *config.CustomAxis) error {
	_, err := s.caller.Call("Measurement.SetMapCustomAxis", map[string]any{
		"handle":      handle,
		"custom_axes": axis.Params(),
	})
	return err
}

// SetMapUseStage selects the WiRE stage (true) or the client stage (false)
// for mapping modes.
func (s *Session) SetMapUseStage(handle any, useStage bool) error {
	_, err := s.caller.Call("Measurement.SetMapUseStage", map[string]any{
		"handle":    handle,
		"use_stage": useStage,
	})
	return err
}

// SetMapTriggerMode arms the map for out-of-band triggers.
func (s *Session) SetMapTriggerMode(handle any, mode string) error {
	_, err := s.caller.Call("Measurement.SetMapTriggerMode", map[string]any{
		"handle": handle,
		"mode":   mode,
	})
	return err
}

// Trigger sends the out-of-band trigger signal for a trigger-armed map. It
// stands apart from the create/release/remove lifecycle.
func (s *Session) Trigger(handle any) error {
	_, err := s.caller.Call("Measurement.Trigger", map[string]any{
		"handle": handle,
	})
	return err
}

// Release lets the paused measurement run. Irreversible.
func (s *Session) Release(handle any) error {
	_, err := s.caller.Call("Queue.Continue", map[string]any{
		"handle": handle,
	})
	return err
}

// State reports the current measurement status string. Only "COMPLETE" means
// anything to this client; the server may report arbitrary other values.
func (s *Session) State(handle any) (string, error) {
	result, err := s.caller.Call("Queue.GetMeasurementState", map[string]any{
		"handle": handle,
	})
	if err != nil {
		return "", err
	}
	status, _ := result.(string)
	return status, nil
}

// Abort requests early termination of an in-progress measurement. Best
// effort: the server may take a moment to honor it, so Run waits a grace
// period before removing.
func (s *Session) Abort(handle any) error {
	_, err := s.caller.Call("Queue.Abort", map[string]any{
		"handle": handle,
	})
	return err
}

// Remove releases the server-side resource. The handle must not be used
// afterwards.
func (s *Session) Remove(handle any) error {
	_, err := s.caller.Call("Queue.Remove", map[string]any{
		"handle": handle,
	})
	return err
}
