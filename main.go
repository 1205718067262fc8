package main

import (
	"os"

	"github.com/lesezeit/lesezeit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
