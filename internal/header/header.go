// Package header encodes and decodes the self-describing prefix of a
// sigcrypt container.
//
// The header is newline-delimited ASCII:
//
//	SIGCRYPT 1.000 00A3
//	ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAI...
//	-aes-256-cbc -md sha512 -pbkdf2 -iter 100000
//	2026-10-18T09:41:07Z
//
// The four hex digits on the first line are the byte length of the whole
// header, including the first line itself. Decode uses it to read exactly the
// header and nothing more, leaving the stream positioned at the first byte of
// the ciphertext body for the cipher engine.
package header

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	kerrors "github.com/PolarWolf314/sigcrypt/internal/errors"
	"github.com/PolarWolf314/sigcrypt/internal/keys"
)

const (
	// Marker opens every container.
	Marker = "SIGCRYPT"

	// Version is the container format version.
	Version = 1.0

	// MaxLength is the largest header the length field can describe.
	MaxLength = 0xFFFF

	lengthDigits      = 4
	lengthPlaceholder = "XXXX"
	fieldCount        = 4
)

// prefix is the marker, the version and the separator before the length field.
var prefix = fmt.Sprintf("%s%6.3f ", Marker, Version)

// Header is the decoded content of a container header.
type Header struct {
	KeyIdentity keys.Identity
	Options     []string
	Salt        string
}

// Encode renders the header. The identity is reduced to a single
// comment-free line first.
//
// Returns ErrHeaderTooLarge if the header does not fit the length field and
// ErrMalformedHeader if the salt contains a newline.
func (h Header) Encode() ([]byte, error) {
	identity := keys.Normalize(string(h.KeyIdentity))
	if identity == "" {
		return nil, fmt.Errorf("%w: empty key identity", kerrors.ErrMalformedHeader)
	}
	if strings.ContainsAny(h.Salt, "\r\n") {
		return nil, fmt.Errorf("%w: salt contains a line break", kerrors.ErrMalformedHeader)
	}

	var buf bytes.Buffer
	buf.WriteString(prefix)
	buf.WriteString(lengthPlaceholder)
	buf.WriteByte('\n')
	buf.WriteString(string(identity))
	buf.WriteByte('\n')
	buf.WriteString(strings.Join(h.Options, " "))
	buf.WriteByte('\n')
	buf.WriteString(h.Salt)
	buf.WriteByte('\n')

	out := buf.Bytes()
	if len(out) > MaxLength {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", kerrors.ErrHeaderTooLarge, len(out), MaxLength)
	}

	copy(out[len(prefix):], fmt.Sprintf("%0*X", lengthDigits, len(out)))

	return out, nil
}

// Decode reads exactly one header from r.
//
// Short reads are retried until the declared length is buffered; r is never
// read past the header. Returns ErrUnrecognizedFormat if r does not start
// with a header, ErrShortRead if r ends inside it and ErrMalformedHeader if
// its structure is invalid.
func Decode(r io.Reader) (*Header, error) {
	lead := make([]byte, len(prefix)+lengthDigits)
	if n, err := io.ReadFull(r, lead); err != nil {
		if !matchesMarker(lead[:n]) {
			return nil, kerrors.ErrUnrecognizedFormat
		}
		return nil, readError(err, n, len(lead))
	}

	if err := checkPrefix(lead[:len(prefix)]); err != nil {
		return nil, err
	}

	length, err := strconv.ParseUint(string(lead[len(prefix):]), 16, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: length field %q is not hexadecimal", kerrors.ErrMalformedHeader, lead[len(prefix):])
	}
	if int(length) <= len(lead) {
		return nil, fmt.Errorf("%w: declared length %d is too small", kerrors.ErrMalformedHeader, length)
	}

	raw := make([]byte, length)
	copy(raw, lead)
	if n, err := io.ReadFull(r, raw[len(lead):]); err != nil {
		return nil, readError(err, len(lead)+n, int(length))
	}

	return parse(raw)
}

func parse(raw []byte) (*Header, error) {
	if raw[len(raw)-1] != '\n' {
		return nil, fmt.Errorf("%w: header is not newline terminated", kerrors.ErrMalformedHeader)
	}

	fields := strings.SplitN(string(raw[:len(raw)-1]), "\n", fieldCount)
	if len(fields) < fieldCount {
		return nil, fmt.Errorf("%w: expected %d fields, found %d", kerrors.ErrMalformedHeader, fieldCount, len(fields))
	}
	if fields[0] != string(raw[:len(prefix)+lengthDigits]) {
		return nil, fmt.Errorf("%w: trailing data on the first line", kerrors.ErrMalformedHeader)
	}
	if fields[1] == "" {
		return nil, fmt.Errorf("%w: empty key identity", kerrors.ErrMalformedHeader)
	}

	return &Header{
		KeyIdentity: keys.Identity(fields[1]),
		Options:     strings.Fields(fields[2]),
		Salt:        fields[3],
	}, nil
}

// checkPrefix accepts the marker in any case and the version with any
// surrounding whitespace.
func checkPrefix(p []byte) error {
	if !strings.EqualFold(string(p[:len(Marker)]), Marker) {
		return kerrors.ErrUnrecognizedFormat
	}

	version, err := strconv.ParseFloat(strings.TrimSpace(string(p[len(Marker):])), 64)
	if err != nil {
		return kerrors.ErrUnrecognizedFormat
	}
	if version != Version {
		return fmt.Errorf("%w: container version %.3f, this build reads %.3f", kerrors.ErrUnrecognizedFormat, version, Version)
	}

	return nil
}

// matchesMarker reports whether the bytes read so far could still be the
// start of a header.
func matchesMarker(b []byte) bool {
	n := min(len(b), len(Marker))
	return strings.EqualFold(string(b[:n]), Marker[:n])
}

func readError(err error, got, want int) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: got %d of %d bytes", kerrors.ErrShortRead, got, want)
	}
	return fmt.Errorf("reading header: %w", err)
}

// Prefix returns the fixed text that starts every header of this version.
func Prefix() string {
	return prefix
}
