package main

import (
	"os"

	"github.com/vcscsvcscs/healthwise/apps/backend/cmd/healthwise/internal/cli"
)

func main() {
	if err := cli.New().CreateRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
