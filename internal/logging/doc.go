// Package logger provides leveled logging for sigcrypt commands.
//
// Every message goes to stderr (or the configured writer). Standard output
// carries ciphertext or plaintext and must never be written to by the logger.
//
// # Verbosity Levels
//
//   - --verbose: shows info messages
//   - --debug: shows debug details as well
//
// Warnings and errors are always shown.
//
// # Usage
//
//	log := logger.Logger{Verbose: verbose, Debug: debug}
//	log.Infof("using key %s", fingerprint)
//
// Nothing logged here may contain the derived secret or the salt.
package logger
