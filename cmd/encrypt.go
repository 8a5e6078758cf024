package cmd

import (
	"os"

	"github.com/PolarWolf314/sigcrypt/internal/configs"
	"github.com/PolarWolf314/sigcrypt/internal/utils"
	"github.com/PolarWolf314/sigcrypt/internal/workflows"
	"github.com/spf13/cobra"
)

func init() {
	addStreamFlags(encryptCmd.Flags())
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt stdin to stdout",
	Long: `Encrypts stdin to stdout with a passphrase derived from an SSH agent signature.

The key is the only usable identity in the agent, or the one selected by
--key (a regular expression over the agent's key lines) or --identity.
ECDSA keys are never used because their signatures are not deterministic.

Examples:
  # Encrypt with the only usable agent key
  sigcrypt encrypt < backup.tar > backup.tar.sc

  # Choose the key by comment and fix the salt
  sigcrypt encrypt -k work-laptop -s backups < backup.tar > backup.tar.sc`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEncrypt(cmd)
	},
}

func runEncrypt(cmd *cobra.Command) error {
	Logger.Infof("Starting encrypt")

	if !force {
		if err := utils.RequireNonTerminal(os.Stdout, "a terminal (use --force to override)"); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(cmd, configs.ModeEncrypt)
	if err != nil {
		return err
	}

	result, err := workflows.Encrypt(cmd.Context(), workflows.StreamOptions{
		Config:   cfg,
		In:       os.Stdin,
		Out:      os.Stdout,
		Progress: startSpinner,
	})
	reportStream(result)
	return err
}

// reportStream logs what a finished Encrypt or Decrypt did.
func reportStream(result *workflows.StreamResult) {
	if result == nil {
		return
	}
	Logger.Infof("Key %s (%s)", result.Fingerprint, result.Header.KeyIdentity.Algorithm())
	Logger.Debugf("Cipher options: %v", result.Header.Options)
	Logger.Debugf("Cipher engine exited with status %d", result.ExitCode)
	if result.AuditErr != nil {
		Logger.Warnf("Failed to write audit log: %v", result.AuditErr)
	}
}
