package ecm

import (
	"fmt"
	"io"

	"github.com/aviva-bulow/renishaw-ecm/internal/config"
)

// Run executes one full client invocation: either the standalone
// trigger-send action, or the create → configure → release → wait → remove
// lifecycle. Listing laser powers short-circuits before release: the
// measurement is created, queried, and removed without ever running. out
// receives user-facing output.
//
// A failure during create or configuration propagates immediately without
// cleanup, so an already-created handle may be leaked server-side. On
// timeout the measurement is aborted and, after a grace period, removed;
// removal is the unconditional terminal step of every completed wait.
func (s *Session) Run(cfg *config.Config, out io.Writer) error {
	if cfg.SendTrigger != nil {
		return s.Trigger(*cfg.SendTrigger)
	}

	handle, err := s.Create(cfg.Template)
	if err != nil {
		return err
	}

	if cfg.Exposure != nil {
		if err := s.SetExposure(handle, *cfg.Exposure); err != nil {
			return err
		}
	}
	if cfg.Filename != nil {
		if err := s.SetFilename(handle, *cfg.Filename); err != nil {
			return err
		}
	}
	if cfg.Accumulations != nil {
		if err := s.SetAccumulations(handle, *cfg.Accumulations); err != nil {
			return err
		}
	}
	if cfg.LaserPower != nil {
		if err := s.SetLaserPower(handle, *cfg.LaserPower); err != nil {
			return err
		}
	}

	if cfg.QueryLaserPowers {
		powers, err := s.LaserPowers(handle)
		if err != nil {
			return err
		}
		for _, p := range powers {
			fmt.Fprintf(out, "%.3g\n", p)
		}
		return s.Remove(handle)
	}

	if cfg.Whitelight != nil {
		if err := s.SetImage(handle, cfg.Whitelight); err != nil {
			return err
		}
	}
	if cfg.MapArea != nil {
		if err := s.SetMapArea(handle, cfg.MapArea); err != nil {
			return err
		}
	}
	if cfg.Series != nil {
		if err := s.SetMapSeries(handle, cfg.Series); err != nil {
			return err
		}
	}
	if cfg.CustomAxis != nil {
		if err := s.SetMapCustomAxis(handle, cfg.CustomAxis); err != nil {
			return err
		}
	}
	if cfg.UseWiREStage != nil {
		if err := s.SetMapUseStage(handle, *cfg.UseWiREStage); err != nil {
			return err
		}
	}
	if cfg.EnableTriggers {
		if err := s.SetMapTriggerMode(handle, TriggerModeTCP); err != nil {
			return err
		}
	}

	if err := s.Release(handle); err != nil {
		return err
	}

	state, status, err := s.Wait(handle, cfg.Timeout)
	if err != nil {
		return err
	}
	if state != WaitComplete {
		s.log.Error("timed out waiting, aborting", "status", status)
		if err := s.Abort(handle); err != nil {
			return err
		}
		s.sleep(s.grace)
	}
	return s.Remove(handle)
}
