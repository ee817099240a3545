package main

import (
	"os"

	"passlink/cmd/passlink/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
