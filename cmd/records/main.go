package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/wrpfuk/records/internal/cli"
)

func main() {
	cfg, err := cli.ParseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		cli.ShowHelp(os.Stdout)
		return
	}
	if err != nil {
		os.Stderr.WriteString("records: " + err.Error() + "\n")
		os.Exit(2)
	}
	if cfg.Help {
		cli.ShowHelp(os.Stdout)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		os.Stderr.WriteString("records: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
