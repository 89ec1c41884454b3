package bt

import (
	"sync"
	"time"

	"github.com/emirpasic/gods/v2/queues/circularbuffer"
)

// Record describes one root tick.
type Record struct {
	Frame    uint64
	Status   Status
	Duration time.Duration
	// Path lists the nodes ticked in that frame, in tick order.
	Path []string
	Err  error
}

// Trace keeps the most recent records of a tree. It may be read from other
// goroutines while the tree ticks.
type Trace struct {
	mu  sync.Mutex
	buf *circularbuffer.Queue[*Record]
}

func NewTrace(capacity int) *Trace {
	if capacity < 1 {
		capacity = 1
	}
	return &Trace{buf: circularbuffer.New[*Record](capacity)}
}

func (t *Trace) add(r *Record) {
	t.mu.Lock()
	t.buf.Enqueue(r)
	t.mu.Unlock()
}

// Records returns the kept records, oldest first.
func (t *Trace) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	values := t.buf.Values()
	out := make([]Record, len(values))
	for i, r := range values {
		out[i] = *r
	}
	return out
}

// Last returns the most recent record.
func (t *Trace) Last() (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	values := t.buf.Values()
	if len(values) == 0 {
		return Record{}, false
	}
	return *values[len(values)-1], true
}

func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Size()
}

func (t *Trace) Clear() {
	t.mu.Lock()
	t.buf.Clear()
	t.mu.Unlock()
}
