package main

import (
	"os"

	"github.com/saksham-os/agent-core/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
