// Package errors provides typed error values for sigcrypt.
//
// Every failure in sigcrypt is fatal: the operation stops, nothing further
// is written to stdout and the process exits non-zero. Sentinel errors let
// the CLI layer tell the failures apart with errors.Is() and print a useful
// hint without string matching.
//
// # Error Categories
//
//   - Key errors: selecting a key from the agent (ErrNoKeyMatch, ErrAmbiguousKey)
//   - Signing errors: deriving the secret (ErrSigningFailed)
//   - Container errors: reading or writing the header (ErrUnrecognizedFormat)
//   - Process errors: running subprocesses and channels (ErrShortWrite)
//
// # Usage
//
// Wrap sentinels with the context a user needs to diagnose the problem:
//
//	return "", fmt.Errorf("%w: %d keys match %q", errors.ErrAmbiguousKey, n, pattern)
//
// Messages must never carry the derived secret or the salt.
package errors
