// Package director drives a simulation: the world is stepped and every guard
// is ticked once per frame.
package director

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zeusync/guardai/internal/core/bt"
	"github.com/zeusync/guardai/internal/core/guard"
	"github.com/zeusync/guardai/internal/core/observability/log"
	"github.com/zeusync/guardai/internal/core/observability/metrics"
	"github.com/zeusync/guardai/internal/core/systems/physics"
	"github.com/zeusync/guardai/internal/core/world"
	"github.com/zeusync/guardai/pkg/concurrent"
)

var (
	ErrDuplicateGuard = errors.New("director: guard name already in use")
	// ErrSelfOcclusion rejects guards whose own layer is in their obstacle
	// mask: every sight line would start inside their own collider.
	ErrSelfOcclusion = errors.New("director: guard layer overlaps its obstacle mask")
)

type GuardReport struct {
	Guard  string
	Status bt.Status
	Err    error
}

// FrameReport is the outcome of one Step.
type FrameReport struct {
	Frame    uint64
	Guards   []GuardReport
	Duration time.Duration
}

// Err joins the node errors reported by the guards.
func (r FrameReport) Err() error {
	var errs []error
	for _, g := range r.Guards {
		if g.Err != nil {
			errs = append(errs, fmt.Errorf("guard %s: %w", g.Guard, g.Err))
		}
	}
	return errors.Join(errs...)
}

// GuardSpec places a guard in the world.
type GuardSpec struct {
	Name             string
	Position         physics.Vec3
	Yaw              float64
	Speed            float64
	StoppingDistance float64
	Layer            physics.Layer
	Health           int
	Params           guard.Params
}

type Director struct {
	mu          sync.Mutex
	world       *world.World
	guards      []*guard.Guard
	parallelism int
	realtime    bool
	frame       uint64
	metrics     *metrics.Metrics
	base        log.Log
	logger      log.Log
}

type Option func(*Director)

// WithParallelism bounds how many guards are serialized concurrently by
// Snapshots. Zero means one goroutine per guard.
func WithParallelism(n int) Option { return func(d *Director) { d.parallelism = n } }

// WithRealtime paces Run to one frame per dt of wall time.
func WithRealtime(on bool) Option { return func(d *Director) { d.realtime = on } }

func WithMetrics(m *metrics.Metrics) Option { return func(d *Director) { d.metrics = m } }

func WithLogger(l log.Log) Option { return func(d *Director) { d.base = l } }

func New(w *world.World, opts ...Option) *Director {
	d := &Director{world: w, base: log.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.base.Named("director")
	return d
}

func (d *Director) World() *world.World { return d.world }

// AddGuard appends g to the tick order. Guard names identify reports,
// events and snapshots, so they must be unique.
func (d *Director) AddGuard(g *guard.Guard) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hasGuard(g.Name) {
		return fmt.Errorf("%w: %q", ErrDuplicateGuard, g.Name)
	}
	d.guards = append(d.guards, g)
	return nil
}

func (d *Director) hasGuard(name string) bool {
	for _, g := range d.guards {
		if g.Name == name {
			return true
		}
	}
	return false
}

// SpawnGuard creates the guard's entity and navigation agent in the world
// and a guard driven by them.
func (d *Director) SpawnGuard(spec GuardSpec, opts ...guard.Option) (*guard.Guard, error) {
	d.mu.Lock()
	taken := d.hasGuard(spec.Name)
	d.mu.Unlock()
	if taken {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateGuard, spec.Name)
	}
	if spec.Layer.Has(spec.Params.ObstacleMask) {
		return nil, fmt.Errorf("guard %q: %w", spec.Name, ErrSelfOcclusion)
	}
	if err := spec.Params.Validate(); err != nil {
		return nil, fmt.Errorf("guard %q: %w", spec.Name, err)
	}

	id := d.world.Spawn(world.EntitySpec{
		Name:     spec.Name,
		Layer:    spec.Layer,
		Position: spec.Position,
		Radius:   0.5,
		Health:   spec.Health,
	})
	agent, err := d.world.NewAgent(id, spec.Speed, spec.StoppingDistance, spec.Yaw)
	if err != nil {
		return nil, err
	}
	opts = append([]guard.Option{guard.WithMetrics(d.metrics), guard.WithLogger(d.base)}, opts...)
	g, err := guard.New(spec.Name, spec.Params, guard.Services{
		Perception: d.world,
		Navigator:  agent,
		Damager:    d.world,
		Body:       agent,
	}, opts...)
	if err != nil {
		return nil, err
	}
	if err := d.AddGuard(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (d *Director) Guards() []*guard.Guard {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*guard.Guard(nil), d.guards...)
}

// Step advances the world by dt seconds and then ticks every guard once, in
// spawn order. Guards damage targets and move through the shared world, so a
// guard sees what the guards before it did this frame. Node errors are
// reported in the FrameReport; the returned error is only set when ctx ends.
func (d *Director) Step(ctx context.Context, dt float64) (FrameReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return FrameReport{}, err
	}
	start := time.Now()
	d.frame++
	d.world.Step(dt)

	reports := make([]GuardReport, 0, len(d.guards))
	for _, g := range d.guards {
		st, err := g.Tick(ctx, dt)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return FrameReport{}, ctxErr
		}
		reports = append(reports, GuardReport{Guard: g.Name, Status: st, Err: err})
	}

	report := FrameReport{Frame: d.frame, Guards: reports, Duration: time.Since(start)}
	d.metrics.Frame()
	if err := report.Err(); err != nil {
		d.logger.Error("frame had node errors", log.Uint64("frame", d.frame), log.Error(err))
	}
	d.logger.Debug("frame",
		log.Uint64("frame", d.frame),
		log.Int("guards", len(reports)),
		log.Duration("took", report.Duration),
	)
	return report, nil
}

// Run steps frames times (forever when frames <= 0) until ctx ends. onFrame,
// when set, sees every report.
func (d *Director) Run(ctx context.Context, frames int, dt float64, onFrame func(FrameReport)) error {
	if dt <= 0 {
		return fmt.Errorf("frame time %v must be positive", dt)
	}
	var tick <-chan time.Time
	if d.realtime {
		ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

	for i := 0; frames <= 0 || i < frames; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
		report, err := d.Step(ctx, dt)
		if err != nil {
			return err
		}
		if onFrame != nil {
			onFrame(report)
		}
	}
	d.logger.Info("run finished", log.Uint64("frames", d.Frame()))
	return nil
}

func (d *Director) Frame() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

// Snapshots serializes every guard, keyed by guard name.
func (d *Director) Snapshots(ctx context.Context) (map[string][]byte, error) {
	guards := d.Guards()
	blobs, err := concurrent.Map(ctx, guards, d.parallelism, func(_ context.Context, g *guard.Guard) ([]byte, error) {
		return g.Snapshot()
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(guards))
	for i, g := range guards {
		out[g.Name] = blobs[i]
	}
	return out, nil
}
