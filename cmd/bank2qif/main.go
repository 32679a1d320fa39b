package main

import (
	"os"

	"github.com/cleared-dev/bank2qif/internal/commands"
)

func main() {
	os.Exit(commands.Execute())
}
