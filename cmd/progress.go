package cmd

import (
	"os"
	"time"

	"github.com/PolarWolf314/sigcrypt/internal/utils"
	"github.com/briandowns/spinner"
)

// startSpinner shows message next to a spinner on stderr and returns the
// function that clears it.
//
// The spinner only runs with --progress, when stderr is a terminal and when
// verbose output is off; otherwise the message goes to the info log.
func startSpinner(message string) func() {
	if !progress || verbose || debug || !utils.IsTerminal(os.Stderr) {
		Logger.Infof("%s", message)
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	if err := s.Color("cyan"); err != nil {
		Logger.Debugf("Failed to set spinner color: %v", err)
	}

	s.Start()
	return s.Stop
}
