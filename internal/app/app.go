package app

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/atomicstack/popup-launcher/internal/apps"
	"github.com/atomicstack/popup-launcher/internal/backend"
	"github.com/atomicstack/popup-launcher/internal/config"
	"github.com/atomicstack/popup-launcher/internal/desktop"
	"github.com/atomicstack/popup-launcher/internal/icons"
	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/toggle"
	"github.com/atomicstack/popup-launcher/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// Options carries per-invocation switches that are not part of the
// persisted configuration.
type Options struct {
	// Show opens the launcher immediately instead of waiting for a toggle.
	Show bool
	// Dial overrides the session bus dialer.
	Dial toggle.Dialer
}

// Run bootstraps the backend driver and the toggle listener, then executes
// the Bubble Tea program until it quits.
func Run(ctx context.Context, cfg config.Config, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resolver, err := icons.NewResolver(desktop.DataDirs(), cfg.Icons.CacheSize)
	if err != nil {
		return fmt.Errorf("icon cache: %w", err)
	}

	driver := backend.NewDriver(Connector(cfg.Backend), backend.WithRequestBuffer(cfg.App.RequestBuffer))
	driver.Start(ctx)
	defer func() {
		driver.Stop()
		driver.Wait()
	}()

	listener := toggle.NewListener(BusConfig(cfg.Bus), opts.Dial)
	go listener.Run(ctx)

	model := ui.NewModel(ui.Options{
		Events:     driver.Events(),
		Toggles:    listener.Events(),
		Launcher:   desktop.NewLauncher(),
		Icons:      resolver,
		IconTheme:  cfg.Icons.Theme,
		Host:       listener,
		HostHide:   cfg.Bus.HostHide,
		Width:      cfg.App.Width,
		BaseHeight: cfg.App.BaseHeight,
		UnitHeight: cfg.App.UnitHeight,
	})
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithReportFocus())
	if opts.Show {
		go program.Send(ui.Toggle())
	}
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Connector picks the backend for cfg. A missing backend executable falls
// back to the builtin application search.
func Connector(cfg config.Backend) backend.Connector {
	builtin := &apps.Connector{Index: apps.NewIndex(desktop.ApplicationDirs()), MaxResults: cfg.MaxResults}
	if cfg.Builtin() {
		return builtin
	}
	if _, err := exec.LookPath(cfg.Command); err != nil {
		logging.Warn(fmt.Sprintf("backend %q unavailable, using builtin", cfg.Command), err)
		return builtin
	}
	return backend.Process{Path: cfg.Command, Args: cfg.Args}
}

// BusConfig converts the bus section into the listener endpoint.
func BusConfig(cfg config.Bus) toggle.Config {
	return toggle.Config{Name: cfg.Name, Path: cfg.Path, Interface: cfg.Interface}
}
