package cmd

import (
	"os"

	"github.com/PolarWolf314/sigcrypt/internal/configs"
	"github.com/PolarWolf314/sigcrypt/internal/workflows"
	"github.com/spf13/cobra"
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt stdin to stdout",
	Long: `Decrypts a sigcrypt container on stdin to stdout.

The key identity, cipher options and salt are read from the container's
header, so no key selection flags are needed. The agent must hold the key
named in the header.

Examples:
  sigcrypt decrypt < backup.tar.sc > backup.tar`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecrypt(cmd)
	},
}

func runDecrypt(cmd *cobra.Command) error {
	Logger.Infof("Starting decrypt")

	cfg, err := loadConfig(cmd, configs.ModeDecrypt)
	if err != nil {
		return err
	}

	result, err := workflows.Decrypt(cmd.Context(), workflows.StreamOptions{
		Config:   cfg,
		In:       os.Stdin,
		Out:      os.Stdout,
		Progress: startSpinner,
	})
	reportStream(result)
	return err
}
