package cmd

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/PolarWolf314/sigcrypt/internal/configs"
	"github.com/PolarWolf314/sigcrypt/internal/ui"
	"github.com/spf13/cobra"
)

var configShowOutputFormat string

func init() {
	addOutputFlag(configShowCmd, &configShowOutputFormat)
	ConfigCmd.AddCommand(configShowCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Displays the configuration sigcrypt would use: the file, then the
environment, then flags.

Examples:
  sigcrypt config show
  SIGCRYPT_KEY=yubikey sigcrypt config show -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show")
		if err := checkOutputFormat(configShowOutputFormat); err != nil {
			return err
		}

		v, err := newViper(cmd)
		if err != nil {
			return err
		}
		path, err := configPath(v)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd, configs.ModeDecrypt)
		if err != nil {
			return err
		}

		if configShowOutputFormat != outputText {
			return writeStructured(cmd.OutOrStdout(), configShowOutputFormat, cfg)
		}
		return outputConfigText(cmd.OutOrStdout(), path, cfg)
	},
}

func outputConfigText(w io.Writer, path string, cfg *configs.Config) error {
	fmt.Fprintln(w, ui.Info.Sprint("Configuration")+" "+ui.Muted.Sprint(path)+":")
	fmt.Fprintln(w)
	return toml.NewEncoder(w).Encode(cfg)
}
