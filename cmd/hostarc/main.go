package main

import (
	"os"

	"github.com/hostwire/hostarc/pkg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
