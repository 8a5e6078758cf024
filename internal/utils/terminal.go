package utils

import (
	"fmt"
	"os"

	"golang.org/x/term"

	kerrors "github.com/PolarWolf314/sigcrypt/internal/errors"
)

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// RequireNonTerminal returns ErrTerminalOutput if f is a terminal.
// name describes the stream in the error message.
func RequireNonTerminal(f *os.File, name string) error {
	if IsTerminal(f) {
		return fmt.Errorf("%w: refusing to write binary data to %s", kerrors.ErrTerminalOutput, name)
	}
	return nil
}
