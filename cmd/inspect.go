package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PolarWolf314/sigcrypt/internal/ui"
	"github.com/PolarWolf314/sigcrypt/internal/workflows"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var inspectOutputFormat string

func init() {
	addOutputFlag(inspectCmd, &inspectOutputFormat)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file|pattern]...",
	Short: "Show the header of one or more containers",
	Long: `Shows the key, cipher options and salt recorded in container headers.

Arguments are files or glob patterns; ** matches across directories. With no
arguments the header is read from stdin. Neither the agent nor the cipher
engine is contacted.

Examples:
  sigcrypt inspect backup.tar.sc
  sigcrypt inspect 'backups/**/*.sc'
  sigcrypt inspect -o json < backup.tar.sc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting inspect")
		if err := checkOutputFormat(inspectOutputFormat); err != nil {
			return err
		}

		if len(args) == 0 {
			Logger.Debugf("Reading header from stdin")
			result, err := workflows.Inspect(cmd.Context(), os.Stdin)
			if err != nil {
				return err
			}
			return outputInspect(cmd.OutOrStdout(), []inspected{{Result: result}})
		}

		paths, err := expandPatterns(args)
		if err != nil {
			return err
		}

		var results []inspected
		for _, path := range paths {
			result, err := inspectFile(cmd, path)
			if err != nil {
				if len(paths) == 1 {
					return err
				}
				Logger.Warnf("Skipping %s: %v", path, err)
				continue
			}
			results = append(results, inspected{Path: path, Result: result})
		}
		if len(results) == 0 {
			return fmt.Errorf("none of %d files is a container", len(paths))
		}
		return outputInspect(cmd.OutOrStdout(), results)
	},
}

type inspected struct {
	Path   string
	Result *workflows.InspectResult
}

// expandPatterns resolves glob patterns; arguments without glob syntax are
// taken literally so a missing file is reported as such.
func expandPatterns(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			paths = append(paths, arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		Logger.Debugf("Pattern %s matched %d files", arg, len(matches))
		paths = append(paths, matches...)
	}
	return paths, nil
}

func inspectFile(cmd *cobra.Command, path string) (*workflows.InspectResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	Logger.Debugf("Reading header from %s", path)
	return workflows.Inspect(cmd.Context(), f)
}

type inspectOutput struct {
	Path        string   `json:"path,omitempty"`
	Identity    string   `json:"identity"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Options     []string `json:"options"`
	Salt        string   `json:"salt"`
	Size        int      `json:"header_size"`
	Supported   bool     `json:"supported"`
}

func outputInspect(w io.Writer, results []inspected) error {
	if inspectOutputFormat != outputText {
		out := make([]inspectOutput, 0, len(results))
		for _, r := range results {
			out = append(out, inspectOutput{
				Path:        r.Path,
				Identity:    string(r.Result.Header.KeyIdentity),
				Fingerprint: r.Result.Fingerprint,
				Options:     r.Result.Header.Options,
				Salt:        r.Result.Header.Salt,
				Size:        r.Result.Size,
				Supported:   r.Result.Supported,
			})
		}
		if len(out) == 1 {
			return writeStructured(w, inspectOutputFormat, out[0])
		}
		return writeStructured(w, inspectOutputFormat, out)
	}

	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, ui.Path.Sprint(r.Path))
		}
		if err := outputInspectText(w, r.Result); err != nil {
			return err
		}
	}
	return nil
}

func outputInspectText(w io.Writer, result *workflows.InspectResult) error {
	fingerprint := ui.Muted.Sprint("unparseable key")
	if result.Fingerprint != "" {
		fingerprint = ui.Highlight.Sprint(result.Fingerprint)
	}

	options := ui.Success.Sprint(strings.Join(result.Header.Options, " "))
	if !result.Supported {
		options = ui.Error.Sprint(strings.Join(result.Header.Options, " ")) + " " + ui.Muted.Sprint("unsupported")
	}

	return ui.WriteFields(w, []ui.Field{
		{Label: "Key", Value: result.Header.KeyIdentity.Algorithm() + " " + fingerprint},
		{Label: "Options", Value: options},
		{Label: "Salt", Value: ui.Highlight.Sprint(result.Header.Salt)},
		{Label: "Header", Value: humanize.Bytes(uint64(result.Size))},
	})
}
