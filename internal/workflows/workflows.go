package workflows

import (
	"os"

	"github.com/PolarWolf314/sigcrypt/internal/audit"
	"github.com/PolarWolf314/sigcrypt/internal/configs"
	"github.com/PolarWolf314/sigcrypt/internal/derive"
	"github.com/PolarWolf314/sigcrypt/internal/header"
	"github.com/PolarWolf314/sigcrypt/internal/keys"
)

// passphraseFD is the descriptor the cipher engine reads its passphrase from.
const passphraseFD = 3

// StreamOptions configures Encrypt and Decrypt.
type StreamOptions struct {
	// Config is the validated configuration of the run.
	Config *configs.Config

	// In and Out are handed to the cipher engine as its stdin and stdout.
	In  *os.File
	Out *os.File

	// Progress is called before waiting on the agent and returns a function
	// that ends the indication. Nil shows nothing.
	Progress func(message string) (stop func())
}

// StreamResult describes a finished Encrypt or Decrypt.
type StreamResult struct {
	Header      *header.Header
	Fingerprint string

	// ExitCode is the cipher engine's exit status.
	ExitCode int

	// AuditErr is set when the audit entry could not be written. The run
	// itself is unaffected.
	AuditErr error
}

func (o StreamOptions) progress(message string) func() {
	if o.Progress == nil {
		return func() {}
	}
	return o.Progress(message)
}

// newLister builds the agent lister selected by cfg.
func newLister(cfg *configs.Config) keys.Lister {
	if cfg.Agent.Lister == configs.ListerSocket {
		return keys.SocketLister{Socket: cfg.Agent.Socket}
	}
	return keys.CommandLister{Command: cfg.Agent.ListCommand}
}

func newSigner(cfg *configs.Config) derive.Signer {
	return derive.Signer{Command: cfg.Agent.SignCommand}
}

// fingerprint is best-effort; an identity given verbatim may not parse.
func fingerprint(id keys.Identity) string {
	fp, err := keys.Fingerprint(string(id))
	if err != nil {
		return ""
	}
	return fp
}

func record(cfg *configs.Config, op string, result *StreamResult) {
	if cfg.AuditLog == "" {
		return
	}
	entry := audit.NewEntry(op)
	entry.KeyFingerprint = result.Fingerprint
	entry.Options = result.Header.Options
	entry.ExitCode = result.ExitCode
	result.AuditErr = audit.Log(cfg.AuditLog, entry)
}
