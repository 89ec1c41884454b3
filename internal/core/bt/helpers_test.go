package bt

// env is the context the tests tick trees with.
type env struct {
	ticks []string
}

// probe is a leaf that replays a script of statuses (repeating the last one)
// and counts its lifecycle hooks.
type probe struct {
	name    string
	script  []Status
	updates int
	enters  int
	exits   []Status
}

func newProbe(name string, script ...Status) *probe {
	return &probe{name: name, script: script}
}

func (p *probe) OnEnter(*env) { p.enters++ }

func (p *probe) OnExit(_ *env, s Status) { p.exits = append(p.exits, s) }

func (p *probe) Update(e *env, _ Children[*env]) Status {
	e.ticks = append(e.ticks, p.name)
	i := p.updates
	if i >= len(p.script) {
		i = len(p.script) - 1
	}
	p.updates++
	return p.script[i]
}

func buildWith(t interface {
	Helper()
	Fatalf(string, ...any)
}, build func(b *Builder[*env]) NodeID, opts ...Option) *Tree[*env] {
	t.Helper()
	b := NewBuilder[*env]()
	tree, err := b.Build(build(b), opts...)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return tree
}
