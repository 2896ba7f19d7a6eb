package main

import (
	"os"

	"github.com/rustyeddy/blotter/cmd/blotter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
