// Package derive turns an agent signature into symmetric key material.
//
// The signer (ssh-keygen -Y sign with an agent-held key) signs the salt
// under a namespace equal to the salt. Ed25519 and RSA signatures are
// deterministic, so the same key and salt always give the same secret.
package derive

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/PolarWolf314/sigcrypt/internal/channel"
	kerrors "github.com/PolarWolf314/sigcrypt/internal/errors"
	"github.com/PolarWolf314/sigcrypt/internal/keys"
	"github.com/PolarWolf314/sigcrypt/internal/process"
)

// keyFD is the descriptor the signer reads the public key selector from.
const keyFD = 3

// Secret is the raw signature output. It must never be logged or persisted.
type Secret []byte

// Passphrase renders the secret as one line for engines that read a single
// passphrase line from a descriptor.
func (s Secret) Passphrase() []byte {
	line := make([]byte, base64.RawStdEncoding.EncodedLen(len(s))+1)
	base64.RawStdEncoding.Encode(line, s)
	line[len(line)-1] = '\n'
	return line
}

// Zero wipes the secret in place.
func (s Secret) Zero() {
	channel.Zero(s)
}

// Signer runs the external signing command.
type Signer struct {
	// Command is the signing program and any leading arguments, usually "ssh-keygen".
	Command []string
}

// Args returns the full argument vector used to sign under salt.
func (s Signer) Args(salt string) []string {
	args := make([]string, 0, len(s.Command)+7)
	args = append(args, s.Command...)
	return append(args, "-Y", "sign", "-n", salt, "-U", "-f", fmt.Sprintf("/dev/fd/%d", keyFD))
}

// Derive signs salt with the agent key selected by id and returns the
// signature as the secret.
//
// The salt is the message on the signer's stdin and the identity is read
// from descriptor 3; both travel through one-shot pipes. Any failure is
// ErrSigningFailed and is not retried, since the agent may have asked the
// user to confirm.
func (s Signer) Derive(ctx context.Context, id keys.Identity, salt string) (Secret, error) {
	out, err := process.Capture(ctx, process.Spec{
		Argv: s.Args(salt),
		Files: map[int]process.Source{
			0:     process.Bytes([]byte(salt)),
			keyFD: process.Bytes([]byte(string(keys.Normalize(string(id))) + "\n")),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: key %s: %v", kerrors.ErrSigningFailed, id.Algorithm(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: key %s: signer produced no output", kerrors.ErrSigningFailed, id.Algorithm())
	}

	return Secret(out), nil
}
