package main

import (
	"os"

	"github.com/adorton/fileprompt/cmd/fileprompt/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
