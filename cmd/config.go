package cmd

import (
	"github.com/spf13/cobra"
)

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sigcrypt configuration",
	Long: `Provides commands for managing the sigcrypt configuration file.

The file lives at $XDG_CONFIG_HOME/sigcrypt/config.toml unless --config names
another. Every setting can be overridden with a SIGCRYPT_ environment
variable or a flag.

Examples:
  # Write a config file with the defaults
  sigcrypt config init

  # Show the effective configuration
  sigcrypt config show`,
}
