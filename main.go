package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"beacon-alarm.klederson.com/internal/alarm"
	"beacon-alarm.klederson.com/internal/api"
	"beacon-alarm.klederson.com/internal/app"
	"beacon-alarm.klederson.com/internal/beacon"
	"beacon-alarm.klederson.com/internal/config"
	"beacon-alarm.klederson.com/internal/events"
	"beacon-alarm.klederson.com/internal/notify"
)

var (
	flagConfig        string
	flagDemo          bool
	flagAdapter       string
	flagWindow        time.Duration
	flagAlarmDistance float64
	flagAlarmSound    string
	flagListen        string
	flagNATSURL       string
	flagLogFile       string
	flagLogLevel      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "beacon-alarm",
		Short:   "Beacon Alarm - Terminal BLE beacon ranging with a proximity alarm",
		Version: config.AppVersion,
		Long: `Beacon Alarm ranges nearby Bluetooth Low Energy beacons, smooths out
missed detections and sounds an alarm when a beacon moves too far away.
It also monitors a beacon region and reports when you enter or leave it.

Requires sudo or CAP_NET_ADMIN capability for real Bluetooth scanning.
Use --demo flag for demonstration mode without Bluetooth hardware.`,
		SilenceUsage: true,
		RunE:         run,
	}

	f := rootCmd.Flags()
	f.StringVarP(&flagConfig, "config", "c", "", "Path to a YAML config file (reloaded on change)")
	f.BoolVar(&flagDemo, "demo", false, "Run in demo mode with fake beacons (no Bluetooth required)")
	f.StringVar(&flagAdapter, "adapter", config.DefaultAdapter, "Bluetooth adapter to use")
	f.DurationVar(&flagWindow, "window", config.SmoothingWindow, "Keep showing a beacon this long after it was last seen")
	f.Float64Var(&flagAlarmDistance, "alarm-distance", config.AlarmDistance, "Sound the alarm when a beacon is farther than this (meters)")
	f.StringVar(&flagAlarmSound, "alarm-sound", "", "Audio file to loop while the alarm plays (default: terminal bell)")
	f.StringVar(&flagListen, "listen", "", "Serve the status API and metrics on this address (e.g. :9110)")
	f.StringVar(&flagNATSURL, "nats-url", "", "Publish beacon events to this NATS server")
	f.StringVar(&flagLogFile, "log-file", config.DefaultLogFile, "Log file")
	f.StringVar(&flagLogLevel, "log-level", config.DefaultLogLevel, "Log level (trace, debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logFile, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := log.WithField("component", "main")
	logger.WithFields(log.Fields{
		"demo":    cfg.Demo,
		"adapter": cfg.Adapter,
		"window":  cfg.SmoothingWindow,
	}).Info("starting beacon alarm")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var source beacon.Source
	if cfg.Demo {
		source = beacon.NewMockScanner(cfg.ScanPeriod, cfg.MeasuredPower, cfg.PathLossExp)
	} else {
		source = beacon.NewBLEScanner(cfg.ScanPeriod, cfg.MeasuredPower, cfg.PathLossExp)
	}

	region := beacon.Region{ID: cfg.Region.ID, CompanyIDs: cfg.Region.CompanyIDs}
	cache := beacon.NewVisibilityCache(beacon.WithWindow(cfg.SmoothingWindow))
	manager := beacon.NewManager(source, region, cfg.ExitPeriod)

	logSub := manager.Subscribe(app.LogObserver(config.StaleRangeAge, time.Now))
	defer logSub.Close()

	if cfg.NATS.URL != "" {
		pub, err := events.Connect(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return err
		}
		defer pub.Close()
		natsSub := manager.Subscribe(pub.Handle)
		defer natsSub.Close()
	}

	if cfg.Listen != "" {
		srv, err := api.Listen(cfg.Listen, api.NewHandler(cache, manager))
		if err != nil {
			return fmt.Errorf("status API: %w", err)
		}
		go func() {
			if err := srv.Serve(); err != nil {
				logger.WithError(err).Error("status API stopped")
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	model := app.New(app.Options{
		Config:   cfg,
		Cache:    cache,
		Manager:  manager,
		Alarm:    alarm.New(cfg.Alarm.Sound, alarm.DetectPlayer(cfg.Alarm.Player)),
		Notifier: notify.New(config.AppName),
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithFPS(30),
	)

	if flagConfig != "" {
		go func() {
			err := config.Watch(ctx, flagConfig, func(c *config.Config) {
				p.Send(app.ConfigReloadedMsg{Config: c})
			})
			if err != nil {
				logger.WithError(err).Warn("config watch stopped")
			}
		}()
	}

	// Start scanners with reference to the tea program
	if err := model.StartScanners(p); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
		fmt.Fprintln(os.Stderr, "Bluetooth scanning requires elevated permissions.")
		fmt.Fprintln(os.Stderr, "Try one of:")
		fmt.Fprintln(os.Stderr, "  sudo ./beacon-alarm")
		fmt.Fprintln(os.Stderr, "  sudo setcap cap_net_admin+ep ./beacon-alarm")
		fmt.Fprintln(os.Stderr, "  ./beacon-alarm --demo    (demo mode, no hardware needed)")
		return err
	}
	defer model.Shutdown()

	_, err = p.Run()
	return err
}

// loadConfig reads the config file, if any, and applies flags the user set
// explicitly on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("demo") {
		cfg.Demo = flagDemo
	}
	if f.Changed("adapter") {
		cfg.Adapter = flagAdapter
	}
	if f.Changed("window") {
		cfg.SmoothingWindow = flagWindow
	}
	if f.Changed("alarm-distance") {
		cfg.Alarm.Distance = flagAlarmDistance
	}
	if f.Changed("alarm-sound") {
		cfg.Alarm.Sound = flagAlarmSound
	}
	if f.Changed("listen") {
		cfg.Listen = flagListen
	}
	if f.Changed("nats-url") {
		cfg.NATS.URL = flagNATSURL
	}
	if f.Changed("log-file") {
		cfg.Log.File = flagLogFile
	}
	if f.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging sends logrus output to a file; the TUI owns the terminal.
func setupLogging(lc config.LogConfig) (*os.File, error) {
	level, err := log.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(file)
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
	return file, nil
}
