// Package config loads the simulation configuration from a YAML file and
// GUARDAI_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/zeusync/guardai/internal/core/guard"
	"github.com/zeusync/guardai/internal/core/observability/log"
	"github.com/zeusync/guardai/internal/core/systems/physics"
	"github.com/zeusync/guardai/internal/core/world"
	"github.com/zeusync/guardai/internal/server"
)

var ErrInvalid = errors.New("invalid configuration")

const envPrefix = "GUARDAI"

type Config struct {
	Log    log.Config    `mapstructure:"log"`
	Sim    SimConfig     `mapstructure:"sim"`
	Server server.Config `mapstructure:"server"`
	World  WorldConfig   `mapstructure:"world"`
	// Guards are decoded one by one over per-guard defaults.
	Guards []GuardConfig `mapstructure:"-"`
	// TreeFile replaces the built-in guard tree when set (.yaml, .yml or .json).
	TreeFile string `mapstructure:"tree_file"`
}

type SimConfig struct {
	// Frames to run; zero runs until interrupted.
	Frames int `mapstructure:"frames"`
	// DT is the frame time in seconds.
	DT          float64 `mapstructure:"dt"`
	Parallelism int     `mapstructure:"parallelism"`
	Realtime    bool    `mapstructure:"realtime"`
	// Serve starts the event stream and metrics endpoint during a run.
	Serve bool `mapstructure:"serve"`
}

type WorldConfig struct {
	world.Config `mapstructure:",squash"`
	Obstacles    []ObstacleConfig `mapstructure:"-"`
	Intruders    []IntruderConfig `mapstructure:"-"`
}

// ObstacleConfig is a box (min/max) or a sphere (center/radius).
type ObstacleConfig struct {
	Kind   string        `mapstructure:"kind"`
	Layer  physics.Layer `mapstructure:"layer"`
	Min    physics.Vec3  `mapstructure:"min"`
	Max    physics.Vec3  `mapstructure:"max"`
	Center physics.Vec3  `mapstructure:"center"`
	Radius float64       `mapstructure:"radius"`
}

func (o ObstacleConfig) Shape() (world.Shape, error) {
	switch o.Kind {
	case "box":
		return world.Box{Min: o.Min, Max: o.Max}, nil
	case "sphere":
		if o.Radius <= 0 {
			return nil, fmt.Errorf("%w: sphere radius %v must be positive", ErrInvalid, o.Radius)
		}
		return world.Sphere{Center: o.Center, Radius: o.Radius}, nil
	default:
		return nil, fmt.Errorf("%w: unknown obstacle kind %q", ErrInvalid, o.Kind)
	}
}

// IntruderConfig is a scripted target, optionally walking a patrol loop.
type IntruderConfig struct {
	Name     string         `mapstructure:"name"`
	Layer    physics.Layer  `mapstructure:"layer"`
	Position physics.Vec3   `mapstructure:"position"`
	Radius   float64        `mapstructure:"radius"`
	Health   int            `mapstructure:"health"`
	Speed    float64        `mapstructure:"speed"`
	Patrol   []physics.Vec3 `mapstructure:"patrol"`
}

func (i IntruderConfig) Spec() world.EntitySpec {
	return world.EntitySpec{
		Name:     i.Name,
		Layer:    i.Layer,
		Position: i.Position,
		Radius:   i.Radius,
		Health:   i.Health,
		Patrol:   i.Patrol,
		Speed:    i.Speed,
	}
}

type GuardConfig struct {
	Name             string        `mapstructure:"name"`
	Layer            physics.Layer `mapstructure:"layer"`
	Position         physics.Vec3  `mapstructure:"position"`
	Yaw              float64       `mapstructure:"yaw"`
	Speed            float64       `mapstructure:"speed"`
	StoppingDistance float64       `mapstructure:"stopping_distance"`
	Health           int           `mapstructure:"health"`
	Params           guard.Params  `mapstructure:"params"`
}

func defaultGuard() GuardConfig {
	return GuardConfig{
		Layer:            1 << 2,
		Speed:            3.5,
		StoppingDistance: 0.5,
		Health:           100,
		Params:           guard.DefaultParams(),
	}
}

func defaultIntruder() IntruderConfig {
	return IntruderConfig{Layer: 1 << 0, Radius: 0.4, Health: 100}
}

func setDefaults(v *viper.Viper) {
	wc := world.DefaultConfig()
	sc := server.DefaultConfig()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("sim.frames", 600)
	v.SetDefault("sim.dt", 1.0/60)
	v.SetDefault("sim.parallelism", 0)
	v.SetDefault("sim.realtime", false)
	v.SetDefault("sim.serve", false)
	v.SetDefault("server.listen_addr", sc.ListenAddr)
	v.SetDefault("server.write_timeout", sc.WriteTimeout)
	v.SetDefault("server.send_buffer", sc.SendBuffer)
	v.SetDefault("world.min.x", wc.Min.X)
	v.SetDefault("world.min.y", wc.Min.Y)
	v.SetDefault("world.min.z", wc.Min.Z)
	v.SetDefault("world.width", wc.Width)
	v.SetDefault("world.depth", wc.Depth)
	v.SetDefault("world.cell_size", wc.CellSize)
	v.SetDefault("tree_file", "")
}

// Load reads path (YAML) over the defaults. An empty path uses defaults and
// the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	var err error
	if cfg.Guards, err = decodeList(v.Get("guards"), defaultGuard); err != nil {
		return nil, fmt.Errorf("decode guards: %w", err)
	}
	if cfg.World.Intruders, err = decodeList(v.Get("world.intruders"), defaultIntruder); err != nil {
		return nil, fmt.Errorf("decode intruders: %w", err)
	}
	if cfg.World.Obstacles, err = decodeList(v.Get("world.obstacles"), func() ObstacleConfig {
		return ObstacleConfig{Layer: 1 << 1}
	}); err != nil {
		return nil, fmt.Errorf("decode obstacles: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeList decodes each element of raw over a fresh default value, so keys
// missing from the file keep their defaults.
func decodeList[T any](raw any, def func() T) ([]T, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list, got %T", ErrInvalid, raw)
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		v := def()
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &v,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Sim.DT <= 0 {
		errs = append(errs, fmt.Errorf("sim.dt %v must be positive", c.Sim.DT))
	}
	if c.Sim.Frames < 0 || c.Sim.Parallelism < 0 {
		errs = append(errs, errors.New("sim.frames and sim.parallelism must not be negative"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if err := c.World.Config.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, o := range c.World.Obstacles {
		if _, err := o.Shape(); err != nil {
			errs = append(errs, err)
		}
	}

	names := make(map[string]bool, len(c.Guards))
	for i, g := range c.Guards {
		if g.Name == "" {
			errs = append(errs, fmt.Errorf("guard %d has no name", i))
		} else if names[g.Name] {
			errs = append(errs, fmt.Errorf("guard name %q is used twice", g.Name))
		}
		names[g.Name] = true
		if g.Speed <= 0 {
			errs = append(errs, fmt.Errorf("guard %q speed %v must be positive", g.Name, g.Speed))
		}
		if g.Layer.Has(g.Params.ObstacleMask) {
			errs = append(errs, fmt.Errorf("guard %q layer %d overlaps its obstacle mask", g.Name, g.Layer))
		}
		if err := g.Params.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("guard %q: %w", g.Name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
