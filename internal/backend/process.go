package backend

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const exitGrace = 2 * time.Second

// Process launches the backend as a child speaking JSON lines on stdio.
type Process struct {
	Path string
	Args []string
	Env  []string
}

func (p Process) String() string {
	return strings.TrimSpace(p.Path + " " + strings.Join(p.Args, " "))
}

// Connect starts the child. Its lifetime is bound to the returned Conn, not
// to ctx: Close closes stdin and kills the child only after exitGrace, which
// leaves room for the Exit request written on shutdown.
func (p Process) Connect(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := exec.LookPath(p.Path)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(path, p.Args...)
	cmd.Env = append(os.Environ(), p.Env...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", path, err)
	}
	return &processConn{cmd: cmd, stdin: stdin, stdout: stdout}, nil
}

type processConn struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser

	once sync.Once
	err  error
}

func (c *processConn) Read(p []byte) (int, error) {
	return c.stdout.Read(p)
}

func (c *processConn) Write(p []byte) (int, error) {
	return c.stdin.Write(p)
}

// Close shuts stdin, gives the child a grace period to exit, then kills it.
func (c *processConn) Close() error {
	c.once.Do(func() {
		c.stdin.Close()
		waited := make(chan error, 1)
		go func() { waited <- c.cmd.Wait() }()
		select {
		case err := <-waited:
			c.err = err
		case <-time.After(exitGrace):
			c.cmd.Process.Kill()
			c.err = <-waited
		}
	})
	return c.err
}
