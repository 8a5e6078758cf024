package cmd

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/sigcrypt/internal/configs"
	"github.com/PolarWolf314/sigcrypt/internal/ui"
	"github.com/spf13/cobra"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
	ConfigCmd.AddCommand(configInitCmd)
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long: `Writes the default settings to the config file, along with any key
selection given by flags or the environment.

Examples:
  # Pin the key used for encryption
  sigcrypt config init -k yubikey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config init")

		v, err := newViper(cmd)
		if err != nil {
			return err
		}
		path, err := configPath(v)
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		cfg := configs.Defaults()
		overlay(v, "key", &cfg.Key.Pattern)
		overlay(v, "identity", &cfg.Key.Identity)
		overlay(v, "lister", &cfg.Agent.Lister)
		overlay(v, "audit-log", &cfg.AuditLog)

		// Only the persistent part is checked; there is no salt here.
		cfg.Mode = configs.ModeDecrypt
		if err := cfg.Validate(); err != nil {
			return err
		}

		Logger.Debugf("Writing config to %s", path)
		if err := configs.Save(path, cfg); err != nil {
			return Logger.ErrorfAndReturn("Failed to write config: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Sprint("✓")+" Wrote "+ui.Path.Sprint(path))
		return nil
	},
}
