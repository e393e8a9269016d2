package main

import (
	"os"

	"github.com/mattjoyce/sensorgate/cmd/sensorgate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
