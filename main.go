package main

import (
	"os"

	"github.com/PolarWolf314/sigcrypt/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
