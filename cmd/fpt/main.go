// Package main is the entry point for the FleetPulse TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roelvg/fleetpulse-tui/internal/app"
	"github.com/roelvg/fleetpulse-tui/internal/config"
	"github.com/roelvg/fleetpulse-tui/internal/services"
	"github.com/roelvg/fleetpulse-tui/internal/ui/tabs/dashboard"
	"github.com/roelvg/fleetpulse-tui/internal/ui/tabs/devices"
	"github.com/roelvg/fleetpulse-tui/internal/ui/tabs/history"
	"github.com/roelvg/fleetpulse-tui/internal/ui/tabs/info"
	"github.com/roelvg/fleetpulse-tui/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	// Run the application
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize the service manager
	// This starts all background services: registry, status polling,
	// trajectory analysis and retention sweeps
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	// Ensure cleanup on exit
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 3. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 4. Initialize tabs with shared state and services
	// Each tab receives the shared application state for consistent data access
	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state),           // Tab 0: Dashboard - fleet battery overview
		devices.New(state),             // Tab 1: Devices - registry management
		history.New(state, svcManager), // Tab 2: History - cached readings and forecasts
		info.New(state, cfg),           // Tab 3: Info - configuration and app info
	}
	model.SetTabs(tabs)

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 6. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer (full terminal)
		tea.WithMouseCellMotion(), // Enable mouse support for selection
	)

	// 7. Handle signals in a separate goroutine
	go func() {
		<-sigChan
		// Send quit message to the program
		p.Send(tea.Quit())
	}()

	// 8. Run the TUI program
	// This blocks until the user quits or an error occurs
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`FleetPulse - Remote device battery health monitor

Usage:
  fpt [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-4             Switch between tabs (Dashboard, Devices, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  Enter           Select/confirm
  r               Refresh status
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  FLEET_API_URL            Device management API base URL (required)
  FLEET_API_TOKEN          API bearer token
  DATABASE_PATH            SQLite cache path
  DEVICES_PATH             Devices registry JSON file path
  STATUS_REFRESH_INTERVAL  Status polling interval (default: 60s)
  RETENTION_SWEEP_INTERVAL Stale-history sweep interval (default: 6h)
  CHARGE_JUMP_THRESHOLD    Charging-event detection delta (default: 50)
  STALE_AFTER_DAYS         History staleness cutoff in days (default: 183)
  FORECAST_HORIZON_DAYS    Depletion forecast horizon in days (default: 1825)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/fleetpulse/.env
  - ~/.fleetpulse/.env

For more information, visit: https://github.com/roelvg/fleetpulse-tui`)
}
