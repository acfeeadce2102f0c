package main

import (
	"os"

	"github.com/rustyeddy/tfgen/cmd/tfgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if cmd.IsConfigError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
