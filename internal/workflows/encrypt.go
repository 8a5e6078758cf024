package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/sigcrypt/internal/channel"
	"github.com/PolarWolf314/sigcrypt/internal/cipher"
	"github.com/PolarWolf314/sigcrypt/internal/configs"
	"github.com/PolarWolf314/sigcrypt/internal/header"
	"github.com/PolarWolf314/sigcrypt/internal/keys"
	"github.com/PolarWolf314/sigcrypt/internal/process"
)

// Encrypt encrypts opts.In into a container on opts.Out.
//
// The key is resolved and the header encoded before anything is written, so
// a selection or header failure leaves the output empty. The secret is then
// derived from the agent, the cipher engine is prepared, the header is
// written and the engine takes over both streams.
//
// Returns ErrAgentUnavailable, ErrNoKeyMatch, ErrNoUsableKey or
// ErrAmbiguousKey when no single key can be chosen.
// Returns ErrHeaderTooLarge or ErrMalformedHeader if the header cannot be built.
// Returns ErrSigningFailed if the agent does not sign.
// Returns *process.ExitError, along with the result, if the engine fails.
func Encrypt(ctx context.Context, opts StreamOptions) (*StreamResult, error) {
	cfg := opts.Config

	stop := opts.progress("Selecting key from the agent...")
	id, err := keys.Resolve(ctx, newLister(cfg), cfg.Key.Identity, cfg.Key.Pattern)
	stop()
	if err != nil {
		return nil, fmt.Errorf("selecting key: %w", err)
	}

	hdr := &header.Header{
		KeyIdentity: keys.Normalize(string(id)),
		Options:     cipher.DefaultOptions,
		Salt:        cfg.Salt,
	}
	encoded, err := hdr.Encode()
	if err != nil {
		return nil, fmt.Errorf("building header: %w", err)
	}

	result := &StreamResult{Header: hdr, Fingerprint: fingerprint(id)}

	if err := run(ctx, opts, result, cipher.Encrypt, encoded); err != nil {
		return result, err
	}
	return result, nil
}

// run derives the secret for result.Header and relinquishes the streams to
// the cipher engine. preamble is written to opts.Out first.
func run(ctx context.Context, opts StreamOptions, result *StreamResult, dir cipher.Direction, preamble []byte) error {
	cfg := opts.Config
	hdr := result.Header

	stop := opts.progress("Waiting for the agent to sign...")
	secret, err := newSigner(cfg).Derive(ctx, hdr.KeyIdentity, hdr.Salt)
	stop()
	if err != nil {
		return err
	}
	defer secret.Zero()

	passphrase := secret.Passphrase()
	defer channel.Zero(passphrase)

	engine, err := process.Prepare(ctx, process.Spec{
		Argv: cipher.Args(cfg.Cipher.Command, hdr.Options, dir, passphraseFD),
		Files: map[int]process.Source{
			0:            process.Inherit(opts.In),
			1:            process.Inherit(opts.Out),
			passphraseFD: process.Bytes(passphrase),
		},
	})
	if err != nil {
		return fmt.Errorf("starting cipher engine: %w", err)
	}

	if len(preamble) > 0 {
		if _, err := opts.Out.Write(preamble); err != nil {
			engine.Close()
			return fmt.Errorf("writing header: %w", err)
		}
	}

	code, err := engine.Relinquish()
	if err != nil {
		return err
	}
	result.ExitCode = code
	record(cfg, dir.String(), result)

	if code != 0 {
		return &process.ExitError{Name: engineName(cfg), Code: code}
	}
	return nil
}

func engineName(cfg *configs.Config) string {
	if len(cfg.Cipher.Command) == 0 {
		return "cipher engine"
	}
	return cfg.Cipher.Command[0]
}
