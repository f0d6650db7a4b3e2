package main

import (
	"os"

	"github.com/Trivo121/side-projects/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
