package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/sigcrypt/internal/cipher"
	"github.com/PolarWolf314/sigcrypt/internal/header"
)

// Decrypt decrypts the container on opts.In to opts.Out.
//
// The header is read from opts.In and checked before any output. Its key
// identity and salt drive the derivation, so the agent listing and the
// configured key selection are not consulted. The cipher engine then reads
// the body from opts.In, positioned right after the header.
//
// Returns ErrUnrecognizedFormat, ErrMalformedHeader or ErrShortRead if the
// input does not start with a valid header.
// Returns ErrUnsupportedOptions if the header asks for an unknown cipher profile.
// Returns ErrSigningFailed if the agent does not sign.
// Returns *process.ExitError, along with the result, if the engine fails.
func Decrypt(ctx context.Context, opts StreamOptions) (*StreamResult, error) {
	hdr, err := header.Decode(opts.In)
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if err := cipher.Supported(hdr.Options); err != nil {
		return nil, err
	}

	result := &StreamResult{Header: hdr, Fingerprint: fingerprint(hdr.KeyIdentity)}

	if err := run(ctx, opts, result, cipher.Decrypt, nil); err != nil {
		return result, err
	}
	return result, nil
}
