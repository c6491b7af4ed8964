package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ecsetu/portal/internal/cli"
	"github.com/ecsetu/portal/internal/pkg/config"
	"github.com/ecsetu/portal/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  true,
		Output:  os.Stderr,
		Service: "portalctl",
	})

	root := cli.NewRootCommand(&cli.App{Config: cfg, Log: log, Out: os.Stdout})
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
