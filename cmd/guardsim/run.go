package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/zeusync/guardai/internal/config"
	"github.com/zeusync/guardai/internal/core/director"
	"github.com/zeusync/guardai/internal/core/observability/log"
	"github.com/zeusync/guardai/internal/injector"
)

type RunCmd struct {
	Config   string  `short:"c" type:"path" env:"GUARDAI_CONFIG" help:"Simulation config file (YAML)."`
	Frames   *int    `help:"Override sim.frames; 0 runs until interrupted."`
	Listen   string  `help:"Serve /events and /metrics on this address while running."`
	LogLevel *string `enum:"debug,info,warn,error" help:"Override log.level [${enum}]."`
	Realtime bool    `help:"Pace frames to wall time."`
}

func (r *RunCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(r.Config)
	if err != nil {
		return err
	}
	if r.Frames != nil {
		cfg.Sim.Frames = *r.Frames
	}
	if r.Listen != "" {
		cfg.Server.ListenAddr = r.Listen
		cfg.Sim.Serve = true
	}
	if r.LogLevel != nil {
		cfg.Log.Level = *r.LogLevel
	}
	if r.Realtime {
		cfg.Sim.Realtime = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Logger.Sync() }()

	app.Logger.Info("simulation starting",
		log.Int("guards", len(cfg.Guards)),
		log.Int("frames", cfg.Sim.Frames),
		log.Float64("dt", cfg.Sim.DT),
	)

	var last director.FrameReport
	err = app.Run(ctx, func(fr director.FrameReport) { last = fr })
	if err != nil && ctx.Err() == nil {
		return err
	}
	return printSummary(app, last)
}

func printSummary(app *injector.App, last director.FrameReport) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "frame %d\n\n", last.Frame)
	fmt.Fprintln(w, "GUARD\tSTATUS\tERROR")
	for _, g := range last.Guards {
		msg := "-"
		if g.Err != nil {
			msg = g.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", g.Guard, g.Status, msg)
	}
	fmt.Fprintln(w, "\nENTITY\tHEALTH\tALIVE\tPOSITION")
	for _, e := range app.World.Entities() {
		fmt.Fprintf(w, "%s\t%d\t%t\t(%.2f, %.2f, %.2f)\n",
			e.Name, e.Health, e.Alive, e.Position.X, e.Position.Y, e.Position.Z)
	}
	return w.Flush()
}
