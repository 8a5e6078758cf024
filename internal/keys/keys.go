package keys

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/ssh"

	kerrors "github.com/PolarWolf314/sigcrypt/internal/errors"
)

// Identity is a comment-free public key line: "<algo> <base64>".
type Identity string

// Lister returns the raw identity lines held by the agent.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// Resolve returns the identity to sign with.
//
// A non-empty override is trusted verbatim and the agent is not consulted.
// Otherwise the agent's identities are filtered by Select.
func Resolve(ctx context.Context, lister Lister, override, pattern string) (Identity, error) {
	if override != "" {
		return Identity(override), nil
	}

	lines, err := lister.List(ctx)
	if err != nil {
		return "", err
	}

	return Select(lines, pattern)
}

// Select picks exactly one identity out of the agent's lines.
//
// Returns ErrNoKeyMatch if pattern matches nothing, ErrNoUsableKey if only
// ecdsa identities remain, and ErrAmbiguousKey if more than one remains.
func Select(lines []string, pattern string) (Identity, error) {
	candidates := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			candidates = append(candidates, line)
		}
	}

	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return "", fmt.Errorf("%w: %v", kerrors.ErrInvalidPattern, err)
		}

		matched := candidates[:0]
		for _, line := range candidates {
			if re.MatchString(line) {
				matched = append(matched, line)
			}
		}
		if len(matched) == 0 {
			return "", fmt.Errorf("%w: %q", kerrors.ErrNoKeyMatch, pattern)
		}
		candidates = matched
	}

	usable := candidates[:0]
	for _, line := range candidates {
		if !IsECDSA(line) {
			usable = append(usable, line)
		}
	}

	switch len(usable) {
	case 0:
		return "", kerrors.ErrNoUsableKey
	case 1:
		return Normalize(usable[0]), nil
	default:
		return "", fmt.Errorf("%w: %d candidates, narrow them with a key pattern", kerrors.ErrAmbiguousKey, len(usable))
	}
}

// Normalize reduces an identity line to "<algo> <base64>", dropping the
// comment and anything after the first line.
func Normalize(line string) Identity {
	line, _, _ = strings.Cut(line, "\n")
	fields := strings.Fields(line)
	if len(fields) > 2 {
		fields = fields[:2]
	}
	return Identity(strings.Join(fields, " "))
}

// IsECDSA reports whether the identity's algorithm tag is in the ecdsa family,
// including security-key and certificate variants.
func IsECDSA(line string) bool {
	algo, _, _ := strings.Cut(strings.TrimSpace(line), " ")
	return strings.Contains(algo, "ecdsa")
}

// Algorithm returns the identity's algorithm tag.
func (id Identity) Algorithm() string {
	algo, _, _ := strings.Cut(string(id), " ")
	return algo
}

// Fingerprint returns the SHA256 fingerprint of the identity, as printed by
// ssh-keygen -l.
func Fingerprint(line string) (string, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
	if err != nil {
		return "", fmt.Errorf("parsing public key: %w", err)
	}
	return ssh.FingerprintSHA256(pub), nil
}

// Comment returns the comment of an identity line, if it carries one.
func Comment(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return ""
	}
	return strings.Join(fields[2:], " ")
}
