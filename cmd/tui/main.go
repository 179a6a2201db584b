package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	_ "time/tzdata" // zone data for coordinate time of day on hosts without it

	"current-weather/internal/app"
	"current-weather/internal/config"
	"current-weather/internal/permission"
	"current-weather/internal/pipeline"
	"current-weather/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultLogFile = "current-weather.log"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "config file (default is ./config.yaml or $HOME/.current-weather/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg *config.Config) error {
	// The terminal belongs to the program, so logs go to a file
	logPath := cfg.Log.File
	if logPath == "" {
		logPath = defaultLogFile
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger := cfg.NewLoggerTo(logFile)

	var gate permission.Gate
	var consentGate *tui.ConsentGate
	if cfg.Location.Consent == "prompt" {
		consentGate = tui.NewConsentGate()
		gate = consentGate
	} else {
		gate, err = app.NewStaticGate(cfg)
		if err != nil {
			return err
		}
	}

	components, err := app.Build(cfg, gate, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	orch := components.Orchestrator
	defer orch.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresher := pipeline.NewRefresher(ctx, orch, components.Store, components.Clock, logger)
	updates, unsubscribe := components.Store.Subscribe()
	defer unsubscribe()

	model := tui.NewModel(components.Store, updates, refresher.TriggerRefresh, components.Backdrops)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if consentGate != nil {
		consentGate.Attach(p.Send)
	}

	// Initial run, as on first mount
	go orch.Run(ctx)

	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	logger.Info("terminal client exited")
	return nil
}
