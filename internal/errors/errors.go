package errors

import "errors"

// Key errors indicate no single usable signing key could be selected.
var (
	// ErrAgentUnavailable indicates the agent could not list its identities.
	ErrAgentUnavailable = errors.New("ssh agent is unavailable")

	// ErrNoKeyMatch indicates no agent identity matches the key pattern.
	ErrNoKeyMatch = errors.New("no agent key matches the pattern")

	// ErrNoUsableKey indicates every candidate identity was excluded.
	ErrNoUsableKey = errors.New("no usable agent key (ecdsa keys are not supported)")

	// ErrAmbiguousKey indicates more than one identity is still a candidate.
	ErrAmbiguousKey = errors.New("more than one agent key matches")

	// ErrInvalidPattern indicates the key pattern is not a valid regular expression.
	ErrInvalidPattern = errors.New("invalid key pattern")
)

// Signing errors indicate the secret could not be derived.
var (
	// ErrSigningFailed indicates the signing subprocess failed or produced nothing.
	ErrSigningFailed = errors.New("signing failed")
)

// Container errors indicate a problem with the self-describing header.
var (
	// ErrUnrecognizedFormat indicates the input does not start with a sigcrypt header.
	ErrUnrecognizedFormat = errors.New("unrecognized container format")

	// ErrMalformedHeader indicates the header is structurally invalid.
	ErrMalformedHeader = errors.New("malformed container header")

	// ErrHeaderTooLarge indicates the header does not fit the 4-digit length field.
	ErrHeaderTooLarge = errors.New("container header too large")

	// ErrShortRead indicates the input ended before the declared header length.
	ErrShortRead = errors.New("input ended inside the container header")

	// ErrUnsupportedOptions indicates the header declares cipher options this build does not know.
	ErrUnsupportedOptions = errors.New("unsupported cipher options")
)

// Process errors indicate a subprocess or secret channel failed.
var (
	// ErrSubprocessLaunchFailed indicates a subprocess could not be started.
	ErrSubprocessLaunchFailed = errors.New("failed to launch subprocess")

	// ErrShortWrite indicates a secret channel did not accept every byte in one pass.
	ErrShortWrite = errors.New("short write to secret channel")
)

// Usage errors indicate invalid configuration or an unsafe invocation.
var (
	// ErrInvalidConfig indicates the resolved configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTerminalOutput indicates binary output would be written to a terminal.
	ErrTerminalOutput = errors.New("refusing to write ciphertext to a terminal")
)
