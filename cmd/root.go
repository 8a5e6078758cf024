package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/sigcrypt/internal/configs"
	logger "github.com/PolarWolf314/sigcrypt/internal/logging"
	"github.com/PolarWolf314/sigcrypt/internal/process"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose     bool
	debug       bool
	progress    bool
	force       bool
	encryptFlag bool
	decryptFlag bool

	Logger logger.Logger

	// RootCmd encrypts or decrypts stdin to stdout. The direction comes from
	// -e/-d, or else from the name the binary was invoked as.
	RootCmd = &cobra.Command{
		Use:   "sigcrypt",
		Short: "Encrypt streams with a secret derived from your SSH agent",
		Long: `sigcrypt encrypts stdin to stdout with a passphrase derived from a signature
made by a key in your SSH agent. The passphrase never touches disk, the
command line or the environment.

The output starts with a short text header naming the key, the cipher
options and the salt, so decryption needs nothing but the same agent key.

Invoked as a name containing "decrypt" or starting with "un", sigcrypt
decrypts by default.

Examples:
  # Encrypt a file with the only usable key in the agent
  sigcrypt < notes.txt > notes.txt.sc

  # Pick a key by comment and decrypt
  sigcrypt -d -k yubikey < notes.txt.sc

  # Show which key a container needs
  sigcrypt inspect notes.txt.sc`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if encryptFlag && decryptFlag {
				return errors.New("--encrypt and --decrypt are mutually exclusive")
			}

			mode := inferMode(os.Args[0])
			switch {
			case encryptFlag:
				mode = configs.ModeEncrypt
			case decryptFlag:
				mode = configs.ModeDecrypt
			}
			Logger.Debugf("Running in %s mode", mode)

			if mode == configs.ModeDecrypt {
				return runDecrypt(cmd)
			}
			return runEncrypt(cmd)
		},
	}
)

func init() {
	flags := RootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVar(&debug, "debug", false, "enable debug output")
	flags.BoolVarP(&progress, "progress", "p", false, "show a spinner while waiting on the agent")
	flags.StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/sigcrypt/config.toml)")
	flags.StringP("key", "k", "", "regular expression selecting the agent key")
	flags.StringP("identity", "i", "", "public key line to sign with, bypassing the agent listing")
	flags.StringP("salt", "s", "", "salt recorded in the header (default is the current UTC time)")
	flags.String("lister", "", "how to list agent keys: command or socket")
	flags.String("audit-log", "", "append a JSON line per run to this file")

	addStreamFlags(RootCmd.Flags())
	RootCmd.Flags().BoolVarP(&encryptFlag, "encrypt", "e", false, "encrypt stdin")
	RootCmd.Flags().BoolVarP(&decryptFlag, "decrypt", "d", false, "decrypt stdin")

	RootCmd.AddCommand(encryptCmd)
	RootCmd.AddCommand(decryptCmd)
	RootCmd.AddCommand(inspectCmd)
	RootCmd.AddCommand(keysCmd)
	RootCmd.AddCommand(ConfigCmd)
}

func addStreamFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&force, "force", "f", false, "write ciphertext even when stdout is a terminal")
}

// inferMode picks the direction from the program name.
func inferMode(program string) configs.Mode {
	name := strings.ToLower(filepath.Base(program))
	name = strings.TrimSuffix(name, ".exe")
	if strings.Contains(name, "decrypt") || strings.HasPrefix(name, "un") {
		return configs.ModeDecrypt
	}
	return configs.ModeEncrypt
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	progress = false
	force = false
	encryptFlag = false
	decryptFlag = false
	configInitForce = false

	reset := func(flag *pflag.Flag) {
		_ = flag.Value.Set(flag.DefValue)
		flag.Changed = false
	}
	RootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range append([]*cobra.Command{RootCmd}, allCommands(RootCmd)...) {
		c.Flags().VisitAll(reset)
	}
}

func allCommands(c *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, sub := range c.Commands() {
		out = append(out, sub)
		out = append(out, allCommands(sub)...)
	}
	return out
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	err := RootCmd.Execute()
	if err == nil {
		return 0
	}

	var exitErr *process.ExitError
	if errors.As(err, &exitErr) {
		// The cipher engine has already reported on stderr.
		Logger.Debugf("%v", err)
		return exitErr.Code
	}

	fmt.Fprintf(os.Stderr, "sigcrypt: %v\n", err)
	return 1
}
