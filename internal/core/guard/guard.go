// Package guard implements the guard agent: its parameters, blackboard,
// leaf behaviors and the decision tree assembled from them.
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/guardai/internal/core/bt"
	"github.com/zeusync/guardai/internal/core/events/bus"
	"github.com/zeusync/guardai/internal/core/observability/log"
	"github.com/zeusync/guardai/internal/core/observability/metrics"
)

// Guard owns one decision tree and the state its leaves share. A guard is
// ticked by one goroutine at a time.
type Guard struct {
	ID         uuid.UUID
	Name       string
	Params     Params
	Blackboard Blackboard

	// cooldown counts down through CheckAttackCooldown and is reset by
	// Attack.
	cooldown int
	// seen tracks whether the last detection attempt found the target.
	seen bool
	// dt is the delta time of the tick in progress, in seconds.
	dt float64

	tree    *bt.Tree[*Guard]
	svc     Services
	events  bus.EventBus
	metrics *metrics.Metrics
	logger  log.Log
}

type options struct {
	id         uuid.UUID
	def        *bt.Definition
	registry   *bt.Registry[*Guard]
	events     bus.EventBus
	metrics    *metrics.Metrics
	logger     log.Log
	trace      *bt.Trace
	staleAbort bool
}

type Option func(*options)

func WithID(id uuid.UUID) Option { return func(o *options) { o.id = id } }

// WithTree replaces the built-in tree definition.
func WithTree(def *bt.Definition) Option { return func(o *options) { o.def = def } }

// WithRegistry replaces the leaf registry used to build the tree.
func WithRegistry(reg *bt.Registry[*Guard]) Option { return func(o *options) { o.registry = reg } }

func WithEventBus(b bus.EventBus) Option { return func(o *options) { o.events = b } }

func WithMetrics(m *metrics.Metrics) Option { return func(o *options) { o.metrics = m } }

func WithLogger(l log.Log) Option { return func(o *options) { o.logger = l } }

func WithTrace(t *bt.Trace) Option { return func(o *options) { o.trace = t } }

func WithStaleAbort(on bool) Option { return func(o *options) { o.staleAbort = on } }

// New validates the parameters and builds the guard's tree once.
func New(name string, params Params, svc Services, opts ...Option) (*Guard, error) {
	o := options{logger: log.NewNop(), staleAbort: true}
	for _, opt := range opts {
		opt(&o)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := svc.validate(); err != nil {
		return nil, fmt.Errorf("guard %q: %w", name, err)
	}
	if o.id == uuid.Nil {
		o.id = uuid.New()
	}
	if o.def == nil {
		def, err := DefaultTree()
		if err != nil {
			return nil, err
		}
		o.def = def
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}

	g := &Guard{
		ID:      o.id,
		Name:    name,
		Params:  params,
		svc:     svc,
		events:  o.events,
		metrics: o.metrics,
		logger:  o.logger.Named("guard").With(log.String("guard", name), log.Stringer("id", o.id)),
	}
	treeOpts := []bt.Option{bt.WithLogger(g.logger), bt.WithStaleAbort(o.staleAbort)}
	if o.trace != nil {
		treeOpts = append(treeOpts, bt.WithTrace(o.trace))
	}
	tree, err := bt.Build(o.def, o.registry, treeOpts...)
	if err != nil {
		return nil, fmt.Errorf("guard %q: build tree: %w", name, err)
	}
	g.tree = tree
	return g, nil
}

// Tick evaluates the tree once; dt is the frame time in seconds. The error
// joins the nodes that reported Error this frame.
func (g *Guard) Tick(ctx context.Context, dt float64) (bt.Status, error) {
	if err := ctx.Err(); err != nil {
		return bt.StatusInvalid, err
	}
	g.dt = dt
	start := time.Now()
	st, err := g.tree.Tick(g)
	g.metrics.ObserveTick(st.String(), time.Since(start))

	for _, ne := range bt.NodeErrors(err) {
		g.metrics.NodeError(ne.Node)
		g.publish(EventNodeError, NodeErrorEvent{
			Guard: g.Name,
			Node:  ne.Node,
			Frame: ne.Frame,
			Error: ne.Err.Error(),
		})
	}
	return st, err
}

func (g *Guard) Tree() *bt.Tree[*Guard] { return g.tree }

func (g *Guard) Frame() uint64 { return g.tree.Frame() }

// Cooldown is the number of cooldown checks left before the next attack.
func (g *Guard) Cooldown() int { return g.cooldown }

func (g *Guard) Services() Services { return g.svc }
