package main

import (
	"os"

	"github.com/kiritoko1029/glmcode/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
