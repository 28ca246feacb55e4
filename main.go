package main

import (
	"context"
	"os"

	"github.com/tphakala/mealplan/cmd"
	"github.com/tphakala/mealplan/internal/buildinfo"
)

// set at build time with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   string
	buildDate string
)

func main() {
	rootCmd := cmd.RootCommand(buildinfo.NewContext(version, buildDate))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
