// Package config holds everything one ecm invocation collects from the
// command line, plus the parsers for the JSON parameter blobs.
package config

import (
	"time"

	"github.com/aviva-bulow/renishaw-ecm/internal/whitelight"
)

const (
	// DefaultURL is the WiRE ECM endpoint on the local machine.
	DefaultURL = "http://localhost:9880/api/"
	// DefaultTimeout bounds the wait for measurement completion.
	DefaultTimeout = 60 * time.Second
)

// Config describes one measurement run. Pointer fields are optional: nil
// means the flag was not supplied and the corresponding configuration call
// is skipped.
type Config struct {
	URL      string
	Template string // template document text, passed through verbatim

	Filename         *string
	Exposure         *int // milliseconds
	Accumulations    *int
	LaserPower       *float64 // percentage
	QueryLaserPowers bool     // list available powers and exit without running

	Whitelight *whitelight.Image
	MapArea    *MapArea
	Series     *Series
	CustomAxis *CustomAxis

	UseWiREStage   *bool // nil: leave stage selection untouched
	EnableTriggers bool
	SendTrigger    *int // standalone trigger-send mode, no lifecycle

	Timeout time.Duration
}

// Default returns a Config with the endpoint and timeout defaults filled in.
func Default() *Config {
	return &Config{URL: DefaultURL, Timeout: DefaultTimeout}
}
