// Command ecm runs a local measurement template on a remote WiRE system
// through the externally controlled measurement JSON-RPC API.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/aviva-bulow/renishaw-ecm/internal/config"
	"github.com/aviva-bulow/renishaw-ecm/internal/ecm"
	"github.com/aviva-bulow/renishaw-ecm/internal/logger"
	"github.com/aviva-bulow/renishaw-ecm/internal/rpc"
	"github.com/aviva-bulow/renishaw-ecm/internal/whitelight"
)

func main() {
	// Interruption exits quietly; no cleanup is attempted, matching the
	// accepted limitation that a killed session may leak its handle.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		os.Exit(0)
	}()

	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	app := kingpin.New("ecm", "Run a WiRE measurement using the JSON-RPC API.")

	var (
		exposureSet, accumulationsSet, powerSet, filenameSet bool
		clientStageSet, wireStageSet, sendTriggerSet         bool
	)
	url := app.Flag("url", "URL for the API endpoint, eg http://hostname:9880/api/.").
		Default(config.DefaultURL).String()
	template := app.Flag("template", "Path of the measurement template to run.").String()
	filename := app.Flag("filename", "Filename for the data file (on the remote end).").
		IsSetByUser(&filenameSet).String()
	exposure := app.Flag("exposure", "Exposure time in milliseconds.").
		IsSetByUser(&exposureSet).Int()
	accumulations := app.Flag("accumulations", "Number of accumulations for the measurement.").
		IsSetByUser(&accumulationsSet).Int()
	getLaserPowers := app.Flag("get-laserpowers", "List the available laser power settings for the measurement.").Bool()
	laserPower := app.Flag("laser-power", "Measurement laser power as a percentage. See also --get-laserpowers.").
		IsSetByUser(&powerSet).Float64()
	whitelightPath := app.Flag("whitelight", "Set the whitelight image from a JPEG file.").String()
	mapArea := app.Flag("map-area", `Configure the measurement as a map, eg {"xStart":0,"yStart":0,"xStep":1.5,"yStep":1.5,"xCount":10,"yCount":10,"row_major":true,"snake":false}.`).String()
	series := app.Flag("series", `Configure the measurement as a series, eg {"count":10,"start":0,"step":1,"units":"s","label":"Time"}.`).String()
	custom := app.Flag("custom", `Add a custom data origin to the map or series, eg {"index":0,"type":"Custom","units":"V","label":"Bias"}.`).String()
	app.Flag("use-client-stage", "Use the client stage for mapping modes.").
		IsSetByUser(&clientStageSet).Bool()
	app.Flag("use-wire-stage", "Use the WiRE stage for mapping modes.").
		IsSetByUser(&wireStageSet).Bool()
	triggers := app.Flag("enable-triggers", "Enable trigger mode.").Bool()
	sendTrigger := app.Flag("send-trigger", "Send a trigger over TCP/IP to the given measurement handle.").
		IsSetByUser(&sendTriggerSet).Int()
	timeoutMS := app.Flag("timeout", "Measurement timeout in milliseconds.").Default("60000").Int()
	debug := app.Flag("debug", "Enable additional debugging output.").Bool()

	if _, err := app.Parse(args); err != nil {
		return fail(err)
	}

	logger.Init(nil, *debug)

	cfg := config.Default()
	cfg.URL = *url
	cfg.Timeout = msToDuration(*timeoutMS)
	cfg.QueryLaserPowers = *getLaserPowers
	cfg.EnableTriggers = *triggers
	if filenameSet {
		cfg.Filename = filename
	}
	if exposureSet {
		cfg.Exposure = exposure
	}
	if accumulationsSet {
		cfg.Accumulations = accumulations
	}
	if powerSet {
		cfg.LaserPower = laserPower
	}
	if sendTriggerSet {
		cfg.SendTrigger = sendTrigger
	}
	switch {
	case wireStageSet:
		cfg.UseWiREStage = boolPtr(true)
	case clientStageSet:
		cfg.UseWiREStage = boolPtr(false)
	}

	if *whitelightPath != "" {
		img, err := whitelight.Load(*whitelightPath)
		if err != nil {
			return fail(err)
		}
		cfg.Whitelight = img
	}
	if *mapArea != "" {
		m, err := config.ParseMapArea(*mapArea)
		if err != nil {
			return fail(err)
		}
		cfg.MapArea = m
	}
	if *series != "" {
		s, err := config.ParseSeries(*series)
		if err != nil {
			return fail(err)
		}
		cfg.Series = s
	}
	if *custom != "" {
		c, err := config.ParseCustomAxis(*custom)
		if err != nil {
			return fail(err)
		}
		cfg.CustomAxis = c
	}

	// The template is only needed when a measurement is actually created;
	// the trigger-send action stands alone.
	if cfg.SendTrigger == nil {
		if *template == "" {
			return fail(fmt.Errorf("--template is required"))
		}
		text, err := os.ReadFile(*template)
		if err != nil {
			return fail(err)
		}
		cfg.Template = string(text)
	}

	session := ecm.NewSession(rpc.NewClient(cfg.URL, 0))
	if err := session.Run(cfg, os.Stdout); err != nil {
		return fail(err)
	}
	return 0
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
	return 1
}

func boolPtr(v bool) *bool { return &v }

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
