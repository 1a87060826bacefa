package main

import (
	"os"

	"github.com/detent/glctl/cmd"
	"github.com/detent/glctl/internal/sentry"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer sentry.RecoverAndPanic()
	cleanup := sentry.Init(cmd.Version)
	defer cleanup()

	if err := cmd.Execute(); err != nil {
		sentry.CaptureError(err)
		return 1
	}
	return 0
}
