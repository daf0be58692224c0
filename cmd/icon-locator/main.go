package main

import (
	"os"

	"github.com/ironsheep/icon-locator/internal/cmd"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cmd.SetVersionInfo(Version, BuildTime, GitCommit)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
