// Package cipher describes how sigcrypt drives the external cipher engine.
//
// Cipher options are pinned at build time and recorded in every container
// header. A container can only be opened with options this build knows, so
// a header can never smuggle arbitrary arguments into the engine.
package cipher

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	kerrors "github.com/PolarWolf314/sigcrypt/internal/errors"
)

// Direction selects encryption or decryption.
type Direction int

const (
	Encrypt Direction = iota
	Decrypt
)

func (d Direction) flag() string {
	if d == Decrypt {
		return "-d"
	}
	return "-e"
}

func (d Direction) String() string {
	if d == Decrypt {
		return "decrypt"
	}
	return "encrypt"
}

// DefaultOptions are written into new containers.
var DefaultOptions = []string{"-aes-256-cbc", "-md", "sha512", "-pbkdf2", "-iter", "100000"}

// profiles lists every option set a container may declare. Append new sets
// here when DefaultOptions changes; never remove one.
var profiles = [][]string{
	DefaultOptions,
}

// Supported returns ErrUnsupportedOptions unless options is a known profile.
func Supported(options []string) error {
	for _, p := range profiles {
		if slices.Equal(p, options) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", kerrors.ErrUnsupportedOptions, strings.Join(options, " "))
}

// Args builds the engine's argument vector. The passphrase is read from the
// inherited descriptor fd.
func Args(command, options []string, dir Direction, fd int) []string {
	args := make([]string, 0, len(command)+len(options)+3)
	args = append(args, command...)
	args = append(args, options...)
	return append(args, dir.flag(), "-pass", "fd:"+strconv.Itoa(fd))
}
