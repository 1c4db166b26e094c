package main

import (
	"os"

	"github.com/solatis/jsoncond/cmd/jsoncond/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
