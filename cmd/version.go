package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/PolarWolf314/sigcrypt/internal/cipher"
	"github.com/PolarWolf314/sigcrypt/internal/header"
	"github.com/PolarWolf314/sigcrypt/internal/ui"
	"github.com/PolarWolf314/sigcrypt/internal/utils"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

func init() {
	RootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the container format it writes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()

		// The banner is for people; scripts reading the output get plain lines.
		if w == os.Stdout && utils.IsTerminal(os.Stdout) {
			fmt.Fprintln(w, figure.NewFigure("sigcrypt", "small", true).String())
		}

		return ui.WriteFields(w, []ui.Field{
			{Label: "Version", Value: Version},
			{Label: "Format", Value: ui.Code.Sprint(strings.TrimSpace(header.Prefix()))},
			{Label: "Cipher", Value: strings.Join(cipher.DefaultOptions, " ")},
		})
	},
}
