package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", outputText, "output format: text, json or yaml")
}

func checkOutputFormat(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}

// writeStructured renders v as JSON or YAML. Field names follow the json tags.
func writeStructured(w io.Writer, format string, v any) error {
	var (
		output []byte
		err    error
	)
	if format == outputYAML {
		output, err = yaml.Marshal(v)
	} else {
		output, err = json.MarshalIndent(v, "", "  ")
		output = append(output, '\n')
	}
	if err != nil {
		return Logger.ErrorfAndReturn("Failed to render %s output: %w", format, err)
	}
	_, err = w.Write(output)
	return err
}
