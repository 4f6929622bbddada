package main

import (
	"os"

	"github.com/omnis-dev/omnis/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
