// Package workflows provides the high-level operations behind sigcrypt's
// commands.
//
// Workflows tie the key selector, the secret derivation, the header codec
// and the cipher engine together. The cmd package stays a thin layer that
// parses flags, resolves the configuration and renders results.
//
// # Available Workflows
//
//   - Encrypt: writes a container header to the output and hands the rest of
//     the run to the cipher engine
//   - Decrypt: reads the header from the input, derives the same secret and
//     hands the remaining input to the cipher engine
//   - Inspect: decodes a header without contacting the agent
//   - ListKeys: reports the agent's identities and whether each is usable
//
// # Streams
//
// Encrypt and Decrypt take *os.File streams rather than io.Reader and
// io.Writer, since the cipher engine inherits the descriptors directly. The
// header is read from the input unbuffered so that the engine starts exactly
// on the first body byte.
//
// # Error Handling
//
// Errors wrap the sentinels of internal/errors. A cipher engine that exits
// unsuccessfully is reported as *process.ExitError so the caller can exit
// with the same status:
//
//	result, err := workflows.Decrypt(ctx, opts)
//	var exitErr *process.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Cancelling it kills whichever child is running.
package workflows
