package toggle

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// ErrNotRunning means no launcher owns the configured name.
var ErrNotRunning = errors.New("launcher not running")

const serviceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"

// Call invokes Toggle on a running launcher.
func Call(ctx context.Context, conn Conn, cfg Config) error {
	obj := conn.Object(cfg.Name, dbus.ObjectPath(cfg.Path))
	err := obj.CallWithContext(ctx, cfg.Interface+".Toggle", 0).Err
	if err == nil {
		return nil
	}
	var derr dbus.Error
	if errors.As(err, &derr) && derr.Name == serviceUnknown {
		return fmt.Errorf("%s: %w", cfg.Name, ErrNotRunning)
	}
	return fmt.Errorf("toggle %s: %w", cfg.Name, err)
}
