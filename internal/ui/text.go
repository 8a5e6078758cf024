package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// noColor reports whether color output should be disabled.
func noColor() bool {
	// https://no-color.org/
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

// Semantic formatters.
var (
	// Code formats commands. Yellow, or `backticks`.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats file paths. Yellow.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Flag formats flags such as --force. Yellow.
	Flag = Formatter{color.New(color.FgYellow), "", ""}

	// Success marks usable keys and completed actions. Green.
	Success = Formatter{color.New(color.FgGreen), "", ""}

	// Error marks unusable keys and failures. Red.
	Error = Formatter{color.New(color.FgRed), "", ""}

	// Warning formats cautions. Yellow.
	Warning = Formatter{color.New(color.FgYellow), "", ""}

	// Info formats hints. Cyan.
	Info = Formatter{color.New(color.FgCyan), "", ""}

	// Highlight formats fingerprints, salts and other values. Cyan, or 'quotes'.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Muted formats secondary text such as key comments. Gray, or (parentheses).
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}
)

// Field is one labelled line of a report.
type Field struct {
	Label string
	Value string
}

// WriteFields writes fields as "label: value" lines with the values aligned.
func WriteFields(w io.Writer, fields []Field) error {
	width := 0
	for _, f := range fields {
		if len(f.Label) > width {
			width = len(f.Label)
		}
	}

	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%-*s %s\n", width+1, f.Label+":", f.Value)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
