package desktop

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
	"github.com/atomicstack/popup-launcher/internal/protocol"
)

// Launcher spawns desktop entries as detached processes.
type Launcher struct {
	open  func(path string) (io.ReadCloser, error)
	start func(cmd *exec.Cmd) error
}

func NewLauncher() *Launcher {
	return &Launcher{
		open:  func(path string) (io.ReadCloser, error) { return os.Open(path) },
		start: startDetached,
	}
}

// Launch runs the entry at path with the requested GPU. The child is reaped
// in the background and not supervised.
func (l *Launcher) Launch(path string, gpu protocol.GpuPreference) error {
	f, err := l.open(path)
	if err != nil {
		return fmt.Errorf("open desktop entry: %w", err)
	}
	entry, err := Parse(f, path)
	f.Close()
	if err != nil {
		return err
	}
	argv, err := entry.Command()
	if err != nil {
		return err
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), GpuEnv(gpu)...)
	cmd.Dir = entry.WorkDir
	events.Action.Spawn(path, gpu.String())
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("spawn %s: %w", argv[0], err)
	}
	return nil
}

// GpuEnv returns the environment selecting the preferred GPU.
func GpuEnv(gpu protocol.GpuPreference) []string {
	switch gpu.Kind {
	case protocol.GpuNonDefault:
		return []string{"DRI_PRIME=1"}
	case protocol.GpuSpecific:
		return []string{"DRI_PRIME=" + strconv.FormatUint(uint64(gpu.Index), 10)}
	default:
		return nil
	}
}

func startDetached(cmd *exec.Cmd) error {
	setProcAttr(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			l := logging.Component("desktop")
			l.Debug().Err(err).Str("cmd", cmd.Path).Msg("child exited")
		}
	}()
	return nil
}
