package keys

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"

	"golang.org/x/crypto/ssh/agent"

	kerrors "github.com/PolarWolf314/sigcrypt/internal/errors"
	"github.com/PolarWolf314/sigcrypt/internal/process"
)

// CommandLister lists identities by running a command such as "ssh-add -L".
type CommandLister struct {
	Command []string
}

// List runs the command and splits its output into lines.
func (l CommandLister) List(ctx context.Context) ([]string, error) {
	out, err := process.Capture(ctx, process.Spec{Argv: l.Command})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrAgentUnavailable, err)
	}
	return splitLines(string(out)), nil
}

// SocketLister lists identities by talking to the agent socket directly.
type SocketLister struct {
	// Socket is the agent socket path. Empty means $SSH_AUTH_SOCK.
	Socket string
}

// List asks the agent for its identities.
func (l SocketLister) List(ctx context.Context) ([]string, error) {
	socket := l.Socket
	if socket == "" {
		socket = os.Getenv("SSH_AUTH_SOCK")
	}
	if socket == "" {
		return nil, fmt.Errorf("%w: SSH_AUTH_SOCK is not set", kerrors.ErrAgentUnavailable)
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socket)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrAgentUnavailable, err)
	}
	defer conn.Close()

	held, err := agent.NewClient(conn).List()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrAgentUnavailable, err)
	}
	if len(held) == 0 {
		return nil, fmt.Errorf("%w: the agent has no identities", kerrors.ErrAgentUnavailable)
	}

	lines := make([]string, 0, len(held))
	for _, key := range held {
		lines = append(lines, key.String())
	}
	return lines, nil
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
