// Package process runs the external collaborators of sigcrypt: the agent key
// lister, the signer and the cipher engine.
//
// A Spec describes a child as an argument vector plus a table of descriptor
// numbers. Each entry is either an inherited file or a byte string, which is
// loaded into a one-shot anonymous pipe (see package channel) and handed to
// the child under that descriptor number.
//
// Two ways to run a prepared Command exist. Capture reads the child's stdout
// to EOF and returns it. Relinquish gives the child the caller's own stdin and
// stdout, then only waits for its exit code; no bytes pass through sigcrypt.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/PolarWolf314/sigcrypt/internal/channel"
	kerrors "github.com/PolarWolf314/sigcrypt/internal/errors"
)

// Source is what a child descriptor is connected to.
type Source struct {
	file *os.File
	data []byte
}

// Inherit connects a descriptor to an existing file.
func Inherit(f *os.File) Source {
	return Source{file: f}
}

// Bytes connects a descriptor to a fresh one-shot pipe holding b.
func Bytes(b []byte) Source {
	if b == nil {
		b = []byte{}
	}
	return Source{data: b}
}

// Spec describes a child process.
type Spec struct {
	// Argv is the program followed by its arguments.
	Argv []string

	// Files maps child descriptor numbers to their sources. Descriptor 0 is
	// /dev/null and descriptor 2 is the caller's stderr unless mapped here.
	Files map[int]Source

	// Env is the child's environment. Nil inherits the caller's.
	Env []string
}

// ExitError reports a child that ran but exited unsuccessfully.
type ExitError struct {
	Name string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

// Command is a prepared child process. Run it once with Capture or Relinquish.
type Command struct {
	cmd    *exec.Cmd
	name   string
	opened []*os.File
}

// Prepare resolves the program and opens the one-shot channels of spec.
//
// A missing program is reported here, before anything has been written on
// the caller's behalf.
func Prepare(ctx context.Context, spec Spec) (*Command, error) {
	if len(spec.Argv) == 0 {
		return nil, fmt.Errorf("%w: empty command", kerrors.ErrSubprocessLaunchFailed)
	}

	name := filepath.Base(spec.Argv[0])
	// LookPath also checks programs given by path, which exec.Command does not.
	path, err := exec.LookPath(spec.Argv[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrSubprocessLaunchFailed, name, err)
	}
	cmd := exec.CommandContext(ctx, path, spec.Argv[1:]...)
	cmd.Args[0] = spec.Argv[0]
	cmd.Env = spec.Env
	cmd.Stderr = os.Stderr

	c := &Command{cmd: cmd, name: name}

	highest := 2
	for fd := range spec.Files {
		if fd < 0 {
			return nil, fmt.Errorf("%w: invalid descriptor %d", kerrors.ErrSubprocessLaunchFailed, fd)
		}
		highest = max(highest, fd)
	}
	if highest > 2 {
		cmd.ExtraFiles = make([]*os.File, highest-2)
	}

	for fd, src := range spec.Files {
		f, err := c.open(src)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("preparing descriptor %d for %s: %w", fd, name, err)
		}

		switch fd {
		case 0:
			cmd.Stdin = f
		case 1:
			cmd.Stdout = f
		case 2:
			cmd.Stderr = f
		default:
			cmd.ExtraFiles[fd-3] = f
		}
	}

	return c, nil
}

func (c *Command) open(src Source) (*os.File, error) {
	if src.data == nil {
		if src.file == nil {
			return nil, errors.New("no source")
		}
		return src.file, nil
	}

	r, err := channel.Open(src.data)
	if err != nil {
		return nil, err
	}
	c.opened = append(c.opened, r)
	return r, nil
}

// Args returns the argument vector, program first.
func (c *Command) Args() []string {
	return c.cmd.Args
}

// Close releases the read ends of channels the child has not inherited yet.
// It is safe to call more than once.
func (c *Command) Close() {
	for _, f := range c.opened {
		f.Close()
	}
	c.opened = nil
}

// Capture runs the child, reads its stdout to end-of-stream and waits for it.
func (c *Command) Capture() ([]byte, error) {
	defer c.Close()

	if c.cmd.Stdout != nil {
		return nil, fmt.Errorf("%w: %s: stdout is mapped and cannot be captured", kerrors.ErrSubprocessLaunchFailed, c.name)
	}

	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrSubprocessLaunchFailed, c.name, err)
	}

	if err := c.cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrSubprocessLaunchFailed, c.name, err)
	}
	// The child holds its own copies now.
	c.Close()

	out, readErr := io.ReadAll(stdout)

	if err := c.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{Name: c.name, Code: exitCode(exitErr.ProcessState)}
		}
		return nil, fmt.Errorf("waiting for %s: %w", c.name, err)
	}
	if readErr != nil {
		return nil, fmt.Errorf("reading output of %s: %w", c.name, readErr)
	}

	return out, nil
}

// Relinquish starts the child and hands it the rest of the run.
//
// The child's descriptors are the caller's files themselves, so data flows
// straight between them and the child. Relinquish ignores interrupts (the
// terminal delivers them to the child directly), forwards SIGTERM, and
// returns the child's exit code for the caller to exit with.
func (c *Command) Relinquish() (int, error) {
	defer c.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	if err := c.cmd.Start(); err != nil {
		return -1, fmt.Errorf("%w: %s: %v", kerrors.ErrSubprocessLaunchFailed, c.name, err)
	}
	c.Close()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigs:
				if sig != os.Interrupt {
					_ = c.cmd.Process.Signal(sig)
				}
			case <-done:
				return
			}
		}
	}()

	err := c.cmd.Wait()
	close(done)

	if c.cmd.ProcessState == nil {
		return -1, fmt.Errorf("waiting for %s: %w", c.name, err)
	}

	return exitCode(c.cmd.ProcessState), nil
}

// Capture prepares spec and captures its stdout.
func Capture(ctx context.Context, spec Spec) ([]byte, error) {
	c, err := Prepare(ctx, spec)
	if err != nil {
		return nil, err
	}
	return c.Capture()
}

// exitCode follows the shell convention of 128+N for a child killed by signal N.
func exitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
