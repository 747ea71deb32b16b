package main

import (
	"context"
	_ "embed"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cityweather/cli"
	"cityweather/config"
	"cityweather/logger"
)

//go:embed config.yaml
var configRaw []byte

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("load settings: %s\n", err)
	}

	l, err := logger.New(settings.LogLevel, settings.LogFile, "cityweather")
	if err != nil {
		log.Fatalf("new logger: %s\n", err)
	}

	cmd := cli.New(settings, configRaw, l)

	if err = cmd.ExecuteContext(ctx); err != nil {
		l.Error().Err(err).Msg("exec")
		stop()
		os.Exit(1)
	}
}
