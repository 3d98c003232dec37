package main

import (
	"os"

	"bookingform/cmd/bookingctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
