package main

import (
	"os"

	"github.com/tanuja-67/vle-management/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
