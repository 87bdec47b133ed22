package main

import (
	"os"

	"github.com/maastricht-university/procteo-audio/cmd/procteo/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
