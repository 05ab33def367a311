// Package clock implements the Clock & Timer Service (CTS) external
// collaborator contract from the core's design notes: a monotonic virtual
// clock measured in host ticks, and a facility to schedule one-shot
// callbacks at absolute deadlines on that clock.
//
// Two implementations are provided. Virtual is a manually-advanced clock
// for deterministic unit tests, built around the familiar pattern of
// bumping a counter and checking deadlines against it. Wall is a
// real-time clock for the cmd/ppcmachine demo binary.
package clock

import (
	"container/heap"
	"sync"
	"time"
)

// TicksPerSec is the CTS constant ticks_per_sec: the number of host ticks
// in one second of virtual time. Using nanosecond ticks lets Wall back
// directly onto time.Duration without rescaling.
const TicksPerSec = 1_000_000_000

// Callback is invoked when a scheduled timer's deadline is reached.
type Callback func(opaque any)

// Source is the read-only half of the CTS contract: now() -> u64.
type Source interface {
	Now() uint64
}

// Timer is the opaque handle returned by NewTimer. The zero value is not
// usable; handles are only ever produced by a Virtual or Wall clock.
type Timer struct {
	cb       Callback
	opaque   any
	deadline uint64
	index    int // position in the owning heap, -1 when not scheduled
	armed    bool
}

type timerHeap []*Timer

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline < h[j].deadline }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x interface{}) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Virtual is a deterministic monotonic clock driven entirely by Advance.
// It never reads the host wall clock, so tests can reproduce exact
// interrupt timing bit-for-bit.
type Virtual struct {
	mu     sync.Mutex
	now    uint64
	timers timerHeap
}

// NewVirtual returns a Virtual clock starting at tick 0.
func NewVirtual() *Virtual {
	return &Virtual{}
}

// Now returns the current virtual tick count.
func (v *Virtual) Now() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// NewTimer allocates a timer bound to cb/opaque. The timer is not armed
// until ModTimer is called.
func (v *Virtual) NewTimer(cb Callback, opaque any) *Timer {
	return &Timer{cb: cb, opaque: opaque, index: -1}
}

// ModTimer (re)schedules t to fire when Now() reaches deadline. A timer
// that is already armed is repositioned rather than duplicated.
func (v *Virtual) ModTimer(t *Timer, deadline uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	t.deadline = deadline
	if t.armed {
		heap.Fix(&v.timers, t.index)
		return
	}
	t.armed = true
	heap.Push(&v.timers, t)
}

// DelTimer cancels t. It is a no-op if t is not currently armed.
func (v *Virtual) DelTimer(t *Timer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !t.armed {
		return
	}
	heap.Remove(&v.timers, t.index)
	t.armed = false
}

// Advance moves the virtual clock forward by ticks and fires, in deadline
// order, every timer whose deadline is now <= Now(). Each callback runs
// synchronously to completion before the next is considered, so a
// callback that reschedules itself (as the decrementer and embedded
// timers all do) never fires re-entrantly within the same Advance call,
// even when it arms a deadline that has already passed; such a timer
// fires on the next Advance.
func (v *Virtual) Advance(ticks uint64) {
	v.mu.Lock()
	v.now += ticks
	now := v.now

	// Collect everything due before running any callback: a callback that
	// reschedules itself (ModTimer to a deadline <= now) must wait for the
	// next Advance rather than fire again inside this one.
	var due []*Timer
	for v.timers.Len() > 0 && v.timers[0].deadline <= now {
		t := heap.Pop(&v.timers).(*Timer)
		t.armed = false
		due = append(due, t)
	}
	v.mu.Unlock()

	for _, t := range due {
		t.cb(t.opaque)
	}
}

// Wall is a real-time CTS backed by time.Now, used by the cmd/ppcmachine
// demo binary. Callbacks are delivered on a single dispatch goroutine so
// that, as with Virtual, no two callbacks ever run concurrently.
type Wall struct {
	start time.Time

	mu      sync.Mutex
	pending map[*Timer]*time.Timer
	fire    chan Callback
	fireArg chan any
}

// NewWall returns a Wall clock anchored at the current wall-clock time and
// starts its dispatch goroutine.
func NewWall() *Wall {
	w := &Wall{
		start:   time.Now(),
		pending: make(map[*Timer]*time.Timer),
		fire:    make(chan Callback),
		fireArg: make(chan any),
	}
	go w.dispatch()
	return w
}

func (w *Wall) dispatch() {
	for cb := range w.fire {
		arg := <-w.fireArg
		cb(arg)
	}
}

// Now returns elapsed host ticks (nanoseconds) since the Wall clock was
// created.
func (w *Wall) Now() uint64 {
	return uint64(time.Since(w.start))
}

// NewTimer allocates an unarmed timer.
func (w *Wall) NewTimer(cb Callback, opaque any) *Timer {
	return &Timer{cb: cb, opaque: opaque, index: -1}
}

// ModTimer (re)arms t to fire at the given absolute tick deadline.
func (w *Wall) ModTimer(t *Timer, deadline uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.pending[t]; ok {
		existing.Stop()
	}
	t.deadline = deadline
	now := w.Now()
	var delay time.Duration
	if deadline > now {
		delay = time.Duration(deadline - now)
	}
	w.pending[t] = time.AfterFunc(delay, func() {
		w.fire <- t.cb
		w.fireArg <- t.opaque
	})
}

// DelTimer cancels t.
func (w *Wall) DelTimer(t *Timer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.pending[t]; ok {
		existing.Stop()
		delete(w.pending, t)
	}
}
