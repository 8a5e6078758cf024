package cmd

import (
	"fmt"
	"io"

	"github.com/PolarWolf314/sigcrypt/internal/configs"
	"github.com/PolarWolf314/sigcrypt/internal/ui"
	"github.com/PolarWolf314/sigcrypt/internal/workflows"
	"github.com/spf13/cobra"
)

var keysOutputFormat string

func init() {
	addOutputFlag(keysCmd, &keysOutputFormat)
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the agent's keys and which one would be used",
	Long: `Lists the identities held by the SSH agent with their fingerprints.

Keys that cannot be used (ECDSA) are marked, as are keys the --key pattern
does not match. The key encryption would pick is marked as selected.

Examples:
  sigcrypt keys
  sigcrypt keys -k yubikey
  sigcrypt keys -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys")
		if err := checkOutputFormat(keysOutputFormat); err != nil {
			return err
		}

		// Listing keys needs no salt; decrypt mode skips that requirement.
		cfg, err := loadConfig(cmd, configs.ModeDecrypt)
		if err != nil {
			return err
		}

		stop := startSpinner("Listing agent keys...")
		result, err := workflows.ListKeys(cmd.Context(), cfg)
		stop()
		if err != nil {
			return err
		}
		Logger.Debugf("Agent holds %d keys", len(result.Keys))

		if keysOutputFormat != outputText {
			return outputKeysStructured(cmd.OutOrStdout(), result)
		}
		return outputKeysText(cmd.OutOrStdout(), result)
	},
}

type keyOutput struct {
	Identity    string `json:"identity"`
	Algorithm   string `json:"algorithm"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Comment     string `json:"comment,omitempty"`
	Usable      bool   `json:"usable"`
	Matches     bool   `json:"matches"`
	Selected    bool   `json:"selected"`
}

func outputKeysStructured(w io.Writer, result *workflows.ListKeysResult) error {
	out := make([]keyOutput, 0, len(result.Keys))
	for _, k := range result.Keys {
		out = append(out, keyOutput{
			Identity:    string(k.Identity),
			Algorithm:   k.Algorithm,
			Fingerprint: k.Fingerprint,
			Comment:     k.Comment,
			Usable:      k.Usable,
			Matches:     k.Matches,
			Selected:    k.Identity == result.Selected,
		})
	}
	return writeStructured(w, keysOutputFormat, out)
}

func outputKeysText(w io.Writer, result *workflows.ListKeysResult) error {
	for _, k := range result.Keys {
		mark := ui.Success.Sprint("✓")
		switch {
		case !k.Usable:
			mark = ui.Error.Sprint("✗")
		case !k.Matches:
			mark = ui.Muted.Sprint("-")
		}

		line := fmt.Sprintf("%s %-20s %s", mark, k.Algorithm, ui.Highlight.Sprint(k.Fingerprint))
		if k.Comment != "" {
			line += " " + k.Comment
		}
		if k.Identity == result.Selected {
			line += " " + ui.Info.Sprint("[selected]")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if result.Selected == "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ui.Warning.Sprint("⚠")+" No single usable key; narrow the selection with "+ui.Flag.Sprint("--key"))
	}
	return nil
}
