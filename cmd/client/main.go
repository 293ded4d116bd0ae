package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mrodrigc/campuseats-client/internal/client"
	"github.com/mrodrigc/campuseats-client/internal/config"
	"github.com/mrodrigc/campuseats-client/internal/logger"
	"github.com/mrodrigc/campuseats-client/internal/tui"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// the dashboard owns stdout, logs go to a file beside the binary
	log := logger.NewFile(cfg.App.Role)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := client.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init engine")
	}

	ui := tui.New(app, cfg.App.Role, log.Child())
	app.Attach(ui)

	app.Start()
	defer app.Stop()

	if err = ui.Run(ctx); err != nil && !errors.Is(err, tui.ErrUserQuit) {
		log.Error().Err(err).Msg("dashboard exited with error")
		os.Exit(1)
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
