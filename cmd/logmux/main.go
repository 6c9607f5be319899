package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"logmux/internal/config"
	"logmux/internal/ui"
	"logmux/internal/util/logx"
	"logmux/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	logx.SetLevelFromEnv()
	defer logx.Close()

	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "logmux:", err)
		return 1
	}
	if cfg.ShowVersion {
		fmt.Println("logmux", version.String())
		return 0
	}

	// Setup cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logx.Infof("starting logmux %s: %s", version.String(), cfg.String())
	if err := ui.Run(ctx, cfg); err != nil {
		logx.Errorf("logmux exited with error: %v", err)
		fmt.Fprintln(os.Stderr, "logmux:", err)
		return 1
	}
	return 0
}
