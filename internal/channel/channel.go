// Package channel hands in-memory bytes to a child process through an
// anonymous pipe.
//
// The bytes never appear in argv, in the environment or under a filesystem
// path. The child only learns a descriptor number (for example /dev/fd/3 or
// fd:3) and reads the pipe exactly once.
package channel

import (
	"fmt"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/sigcrypt/internal/errors"
)

// writeTimeout bounds the single write into the pipe. Nobody reads the pipe
// until the child starts, so a payload larger than the pipe buffer would
// otherwise block forever.
const writeTimeout = 2 * time.Second

// Open loads data into a new anonymous pipe and returns its read end.
//
// The write end is closed before Open returns, so the reader sees EOF right
// after the payload. The caller owns the returned file and must close it once
// the child has inherited it.
func Open(data []byte) (*os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating pipe: %w", err)
	}

	// Not every platform supports deadlines on pipes; without one the write
	// simply blocks.
	_ = w.SetWriteDeadline(time.Now().Add(writeTimeout))

	n, err := w.Write(data)
	if closeErr := w.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if n != len(data) {
		r.Close()
		return nil, fmt.Errorf("%w: %d of %d bytes accepted", kerrors.ErrShortWrite, n, len(data))
	}
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("writing pipe: %w", err)
	}

	return r, nil
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
