package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

var cli struct {
	Run  RunCmd  `cmd:"" help:"Run a guard simulation." default:"withargs"`
	Tree TreeCmd `cmd:"" help:"Print a guard tree's topology and fingerprint."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&cli,
		kong.Name("guardsim"),
		kong.Description("Headless simulation of behavior-tree driven guards."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err := kctx.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "guardsim:", err)
		os.Exit(1)
	}
}
