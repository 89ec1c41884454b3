package injector

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zeusync/guardai/internal/config"
	"github.com/zeusync/guardai/internal/core/bt"
	"github.com/zeusync/guardai/internal/core/director"
	"github.com/zeusync/guardai/internal/core/events/bus"
	"github.com/zeusync/guardai/internal/core/guard"
	"github.com/zeusync/guardai/internal/core/observability/log"
	"github.com/zeusync/guardai/internal/core/observability/metrics"
	"github.com/zeusync/guardai/internal/core/world"
	"github.com/zeusync/guardai/internal/server"
)

// App is a fully wired simulation.
type App struct {
	Config   *config.Config
	Logger   log.Log
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Events   bus.EventBus
	World    *world.World
	Director *director.Director
	Server   *server.Server
}

func NewApp(
	cfg *config.Config,
	logger log.Log,
	reg *prometheus.Registry,
	m *metrics.Metrics,
	events bus.EventBus,
	w *world.World,
	d *director.Director,
	srv *server.Server,
) *App {
	return &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Metrics:  m,
		Events:   events,
		World:    w,
		Director: d,
		Server:   srv,
	}
}

// Run steps the configured number of frames, serving events and metrics
// meanwhile when sim.serve is set.
func (a *App) Run(ctx context.Context, onFrame func(director.FrameReport)) error {
	if a.Config.Sim.Serve {
		if err := a.Server.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := a.Server.Stop(context.WithoutCancel(ctx)); err != nil {
				a.Logger.Warn("server stop", log.Error(err))
			}
		}()
	}
	return a.Director.Run(ctx, a.Config.Sim.Frames, a.Config.Sim.DT, onFrame)
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideRegistry,
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	ProvideMetrics,
	ProvideEventBus,
	ProvideTree,
	ProvideWorld,
	ProvideDirector,
	ProvideServer,
	NewApp,
)

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	return log.New(cfg.Log)
}

func ProvideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func ProvideMetrics(reg *prometheus.Registry) (*metrics.Metrics, error) {
	return metrics.New(reg)
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

// ProvideTree loads tree_file, or the built-in tree when it is unset.
func ProvideTree(cfg *config.Config) (*bt.Definition, error) {
	if cfg.TreeFile == "" {
		return guard.DefaultTree()
	}
	def, err := bt.LoadFile(cfg.TreeFile)
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w", cfg.TreeFile, err)
	}
	return def, nil
}

// ProvideWorld builds the world with its obstacles and intruders.
func ProvideWorld(cfg *config.Config, logger log.Log) (*world.World, error) {
	w, err := world.New(cfg.World.Config, logger)
	if err != nil {
		return nil, err
	}
	for _, o := range cfg.World.Obstacles {
		shape, err := o.Shape()
		if err != nil {
			return nil, err
		}
		w.AddObstacle(o.Layer, shape)
	}
	for _, i := range cfg.World.Intruders {
		w.Spawn(i.Spec())
	}
	return w, nil
}

// ProvideDirector spawns every configured guard, all sharing one tree
// definition and publishing to events.
func ProvideDirector(
	cfg *config.Config,
	w *world.World,
	def *bt.Definition,
	events bus.EventBus,
	m *metrics.Metrics,
	logger log.Log,
) (*director.Director, error) {
	d := director.New(w,
		director.WithParallelism(cfg.Sim.Parallelism),
		director.WithRealtime(cfg.Sim.Realtime),
		director.WithMetrics(m),
		director.WithLogger(logger),
	)
	reg := guard.NewRegistry()
	for _, gc := range cfg.Guards {
		_, err := d.SpawnGuard(director.GuardSpec{
			Name:             gc.Name,
			Position:         gc.Position,
			Yaw:              gc.Yaw,
			Speed:            gc.Speed,
			StoppingDistance: gc.StoppingDistance,
			Layer:            gc.Layer,
			Health:           gc.Health,
			Params:           gc.Params,
		}, guard.WithTree(def), guard.WithRegistry(reg), guard.WithEventBus(events))
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

func ProvideServer(cfg *config.Config, events bus.EventBus, gatherer prometheus.Gatherer, logger log.Log) (*server.Server, error) {
	return server.NewServer(cfg.Server, events, gatherer, logger)
}
