package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/atomicstack/popup-launcher/internal/app"
	"github.com/atomicstack/popup-launcher/internal/config"
	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/toggle"
	"github.com/spf13/cobra"
)

const toggleTimeout = 3 * time.Second

var errConfiguration = errors.New("configuration error")

func newRootCommand() *cobra.Command {
	var show bool
	root := &cobra.Command{
		Use:   "popup-launcher",
		Short: "Pop-up application launcher backed by pop-launcher",
		Long: `popup-launcher waits for Toggle calls on the session bus and shows a
search field whose results come from a pop-launcher compatible backend.
Without a backend on PATH it searches installed desktop entries itself.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logging.Configure(cfg.Logging.File)
			logging.SetLevel(cfg.Logging.Level)
			logging.SetTraceEnabled(cfg.Logging.Trace)
			traceStartup(cfg)
			return app.Run(cmd.Context(), cfg, app.Options{Show: show})
		},
	}
	config.RegisterFlags(root.PersistentFlags())
	root.Flags().BoolVar(&show, "show", false, "open the launcher immediately")
	root.AddCommand(newToggleCommand(), newConfigCommand())
	return root
}

func newToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Show or hide the running launcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), toggleTimeout)
			defer cancel()
			conn, err := toggle.SessionDialer(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()
			return toggle.Call(ctx, conn, app.BusConfig(cfg.Bus))
		},
	}
}

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := cfg.TOML()
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			if cfg.File != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", cfg.File)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// loadConfig resolves the configuration against the flags cobra parsed for cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Resolve(cmd.Flags(), os.Args[1:], os.Environ())
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: %w", errConfiguration, err)
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("%w: %w", errConfiguration, err)
	}
	return cfg, nil
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, errConfiguration):
		return 2
	case errors.Is(err, toggle.ErrNotRunning):
		return 3
	default:
		return 1
	}
}
