// Command streetlight drives a lighting relay from an ambient light sensor:
// it samples the sensor, smooths the signal, applies ON/OFF hysteresis, and
// exposes a line CLI, an MQTT surface, and an HTTP status page.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/streetlight/internal/command"
	"github.com/sweeney/streetlight/internal/config"
	"github.com/sweeney/streetlight/internal/gpio"
	"github.com/sweeney/streetlight/internal/logic"
	"github.com/sweeney/streetlight/internal/mqtt"
	"github.com/sweeney/streetlight/internal/settings"
	"github.com/sweeney/streetlight/internal/status"
	"github.com/sweeney/streetlight/internal/web"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config, "off" disables)`)
	dbPath := flag.String("db", "", "Settings database path (overrides config)")
	printValue := flag.Bool("print-value", false, "Read the sensor once, print the raw value, and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *broker != "" {
		cfg.Telemetry.Broker = *broker
	}
	if *httpAddr != "" {
		if *httpAddr == "off" {
			cfg.HTTP.Addr = ""
		} else {
			cfg.HTTP.Addr = *httpAddr
		}
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger := newLogger(cfg.Logging)

	if err := run(cfg, logger, *printValue); err != nil {
		logger.Fatal().Err(err).Msg("fatal")
	}
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var w io.Writer = os.Stdout
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func run(cfg *config.Config, logger zerolog.Logger, printValue bool) error {
	// Initialize sensor
	sensor, err := gpio.NewIIOSensor(cfg.Sensor.Device)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer sensor.Close()

	// Print value mode
	if printValue {
		raw, err := sensor.Read()
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		fmt.Printf("RAW: %d\n", raw)
		return nil
	}

	// Initialize relay, lights out until the controller decides otherwise
	relay, err := gpio.NewRealRelay(cfg.Relay.Pin, cfg.Relay.IndicatorPin, !cfg.Relay.ActiveLow)
	if err != nil {
		return fmt.Errorf("init relay: %w", err)
	}
	defer relay.Close()
	if err := relay.Set(false); err != nil {
		logger.Warn().Err(err).Msg("initial relay off failed")
	}

	// Load persisted thresholds; invalid or absent means config defaults
	store, err := settings.NewSQLiteStore(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}
	defer store.Close()

	thresholds := logic.Thresholds{On: cfg.Thresholds.On, Off: cfg.Thresholds.Off}
	if saved, ok, err := store.Load(); err != nil {
		logger.Warn().Err(err).Msg("settings load failed, using defaults")
	} else if ok {
		thresholds = saved
		logger.Info().Int("on", saved.On).Int("off", saved.Off).Msg("thresholds restored")
	}

	startTime := time.Now()

	ctrlCfg := logic.ControllerConfig{
		Thresholds: thresholds,
		MinGap:     cfg.Thresholds.MinGap,
		Window:     cfg.Sensor.Window,
	}
	if cfg.Calibration.Enabled {
		ctrlCfg.Calibration = &logic.CalibratorConfig{
			Window:      cfg.Calibration.Window,
			OnFraction:  cfg.Calibration.OnFraction,
			OffFraction: cfg.Calibration.OffFraction,
			MinRange:    cfg.Calibration.MinRange,
		}
	}
	ctrl := logic.NewController(ctrlCfg, startTime)

	tracker := status.NewTracker(startTime, status.Config{
		SampleMs:    cfg.Sensor.SampleInterval.Milliseconds(),
		TelemetryMs: cfg.Telemetry.Interval.Milliseconds(),
		Window:      cfg.Sensor.Window,
		MinGap:      cfg.Thresholds.MinGap,
		Broker:      cfg.Telemetry.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
		DBPath:      cfg.Database.Path,
		Device:      cfg.Sensor.Device,
	})

	// Command lines arrive from stdin and, when MQTT is up, the command
	// topic. Both feed the same channel; the loop is the only consumer.
	commands := make(chan string, 16)
	go readLines(os.Stdin, commands)

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.Telemetry.Broker != "" {
		client, err := mqtt.NewRealClient(cfg.Telemetry.Broker, logger)
		if err != nil {
			return fmt.Errorf("connect mqtt: %w", err)
		}
		defer client.Close()
		publisher = client
		mqttStatus = client
		go forward(client.Commands(), commands)
	}

	d := &daemon{
		sensor:     sensor,
		relay:      relay,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		store:      store,
		tracker:    tracker,
		ctrl:       ctrl,
		logger:     logger,
		telemetry:  cfg.Telemetry.Interval,
		now:        time.Now,
	}
	d.respond = func(line string) {
		fmt.Println(line)
		if publisher != nil {
			if err := publisher.PublishResponse(line); err != nil {
				logger.Warn().Err(err).Msg("response publish failed")
			}
		}
	}
	d.updateTracker()

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			logger.Warn().Err(err).Msg("startup publish failed")
		} else {
			logger.Info().Msg("published startup event")
		}
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		d.web = srv
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http status server listening")
	}

	fmt.Println("streetlight: boot")
	fmt.Println(command.HelpText())

	logger.Info().
		Dur("sample", cfg.Sensor.SampleInterval).
		Dur("telemetry", cfg.Telemetry.Interval).
		Int("window", cfg.Sensor.Window).
		Int("on", thresholds.On).
		Int("off", thresholds.Off).
		Bool("calibration", cfg.Calibration.Enabled).
		Str("broker", cfg.Telemetry.Broker).
		Msg("started")

	ticker := time.NewTicker(cfg.Sensor.SampleInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return d.runLoop(ticker.C, commands, sigCh)
}

// daemon bundles the loop's collaborators. All mutable controller state is
// touched only from runLoop.
type daemon struct {
	sensor     gpio.Sensor
	relay      gpio.Relay
	publisher  mqtt.Publisher        // nil when MQTT is disabled
	mqttStatus mqtt.ConnectionStatus // nil when MQTT is disabled
	store      settings.Store
	tracker    *status.Tracker
	web        *web.Server // nil when the HTTP server is disabled
	ctrl       *logic.Controller
	logger     zerolog.Logger
	telemetry  time.Duration
	now        func() time.Time
	respond    func(string)
}

func (d *daemon) runLoop(tick <-chan time.Time, commands <-chan string, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			d.logger.Info().Str("signal", signalName).Msg("shutting down")

			d.updateTracker()
			event := mqtt.SystemEvent{
				Timestamp:  d.now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(d.tracker.Snapshot(), "SHUTDOWN", signalName),
			}
			if err := d.publishSystem(event); err != nil {
				d.logger.Warn().Err(err).Msg("shutdown publish failed")
			}
			return nil

		case line := <-commands:
			d.handleCommand(line)

		case <-tick:
			d.handleTick()
		}
	}
}

func (d *daemon) handleTick() {
	now := d.now()

	raw, err := d.sensor.Read()
	if err != nil {
		d.logger.Error().Err(err).Msg("sensor read error")
		return
	}

	events := d.ctrl.Process(logic.Input{Raw: raw, Time: now})
	for _, e := range events {
		switch e.Type {
		case logic.EventLightOn, logic.EventLightOff:
			on := e.State == logic.StateOn
			if err := d.relay.Set(on); err != nil {
				d.logger.Error().Err(err).Msg("relay set error")
				// Keep going; the next transition retries the hardware
			}
			d.logger.Info().
				Str("event", string(e.Type)).
				Int("smoothed", e.Smoothed).
				Int("raw", e.Raw).
				Msg("light transition")
		case logic.EventCalibrated:
			d.logger.Info().
				Int("on", e.Thresholds.On).
				Int("off", e.Thresholds.Off).
				Msg("auto-calibration completed")
		}
		if err := d.publishEvent(e); err != nil {
			d.logger.Warn().Err(err).Msg("event publish failed")
		}
	}

	d.updateTracker()

	if td := d.ctrl.CheckTelemetry(now, d.telemetry); td != nil {
		d.logger.Info().
			Int("raw", td.Raw).
			Int("smoothed", td.Smoothed).
			Str("state", string(td.State)).
			Int("on", td.Thresholds.On).
			Int("off", td.Thresholds.Off).
			Msg("telemetry")
		if err := d.publishTelemetry(*td); err != nil {
			d.logger.Warn().Err(err).Msg("telemetry publish failed")
		}
		if d.web != nil {
			d.web.Broadcast(d.tracker.Snapshot())
		}
	}
}

func (d *daemon) handleCommand(line string) {
	cmd := command.Parse(line)
	switch cmd.Kind {
	case command.Status:
		th := d.ctrl.Thresholds()
		if min, max, ok := d.ctrl.RawExtrema(); ok {
			d.respondf("ON=%d OFF=%d STATE=%s VAL=%d RAWMIN=%d RAWMAX=%d",
				th.On, th.Off, d.ctrl.State(), d.ctrl.Smoothed(), min, max)
		} else {
			d.respondf("ON=%d OFF=%d STATE=%s", th.On, th.Off, d.ctrl.State())
		}

	case command.SetOn:
		th := d.ctrl.SetOn(cmd.Value)
		d.logger.Info().Int("on", th.On).Int("off", th.Off).Msg("on threshold set")
		d.respond("OK")

	case command.SetOff:
		th := d.ctrl.SetOff(cmd.Value)
		d.logger.Info().Int("on", th.On).Int("off", th.Off).Msg("off threshold set")
		d.respond("OK")

	case command.Save:
		if err := d.store.Save(d.ctrl.Thresholds()); err != nil {
			d.logger.Error().Err(err).Msg("settings save failed")
			d.respond("ERR: save failed")
			return
		}
		d.respond("SAVED")

	case command.Help:
		d.respond(command.HelpText())

	default:
		d.respond("ERR: unknown command, type HELP")
	}
}

func (d *daemon) respondf(format string, args ...any) {
	d.respond(fmt.Sprintf(format, args...))
}

func (d *daemon) updateTracker() {
	min, max, ok := d.ctrl.RawExtrema()
	d.tracker.Update(status.Reading{
		State:       d.ctrl.State(),
		Raw:         d.ctrl.LastRaw(),
		Smoothed:    d.ctrl.Smoothed(),
		Thresholds:  d.ctrl.Thresholds(),
		RawMin:      min,
		RawMax:      max,
		HaveSamples: ok,
		Calibrated:  d.ctrl.Calibrated(),
		Counts:      d.ctrl.Counts(),
	})
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
}

func (d *daemon) publishEvent(e logic.Event) error {
	if d.publisher == nil {
		return nil
	}
	return d.publisher.PublishEvent(e)
}

func (d *daemon) publishTelemetry(td logic.TelemetryData) error {
	if d.publisher == nil {
		return nil
	}
	return d.publisher.PublishTelemetry(td)
}

func (d *daemon) publishSystem(e mqtt.SystemEvent) error {
	if d.publisher == nil {
		return nil
	}
	return d.publisher.PublishSystem(e)
}

// readLines feeds text lines from r into out. Returns on EOF; a closed
// stdin just means no more local commands.
func readLines(r io.Reader, out chan<- string) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out <- sc.Text()
	}
}

func forward(in <-chan string, out chan<- string) {
	for line := range in {
		out <- line
	}
}
