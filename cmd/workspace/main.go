package main

import (
	"os"

	"github.com/custodia-labs/workspace-go/internal/cli"
	"github.com/custodia-labs/workspace-go/internal/logger"
)

func main() {
	if err := cli.Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
