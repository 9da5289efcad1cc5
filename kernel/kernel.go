// Package kernel is a cooperative, poll-based task executor with a fixed
// task arena, a FIFO run queue and an alarm-backed timer queue.
//
// Exactly one task computation executes at any instant; concurrency is
// interleaving at suspension points only. Wakers bridge interrupt context to
// task context: they may be invoked from alarm and pin callbacks, are
// idempotent, and reject stale task generations.
package kernel

import (
	"errors"
	"fmt"
	"sync"

	"ember/hal"
)

var (
	// ErrResourceExhausted reports an exceeded fixed capacity (task arena,
	// run queue, timer queue). Inside the scheduler path it is fatal.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrHardwareFault reports inconsistent peripheral or interrupt state.
	// There is no software recovery path; the executor halts.
	ErrHardwareFault = errors.New("hardware fault")
)

// Poll is the result of polling a Future.
type Poll uint8

const (
	Pending Poll = iota
	Ready
)

// Future is a suspended computation, advanced by polling.
//
// Poll must never block: it either completes a state transition and returns
// Ready, or arranges for w to be invoked later and returns Pending. A
// returned error is unrecoverable and halts the executor; recoverable
// conditions are handled inside the task.
type Future interface {
	Poll(w Waker) (Poll, error)
}

// Canceler is implemented by futures that hold external registrations
// (edge watches, timer entries). Cancel removes them with no side effects;
// abandoning such a future without cancelling leaks interrupt routing.
type Canceler interface {
	Cancel()
}

// TaskID names a slot in the task arena.
type TaskID uint8

// MaxTasks is the arena size. All task state lives in a fixed pool of this
// many slots; Spawn beyond it fails with ErrResourceExhausted.
const MaxTasks = 8

// runQueueCap leaves room for ghost entries: a task woken while being
// polled and then completing leaves one stale (id, gen) pair behind, which
// pop discards by generation check.
const runQueueCap = MaxTasks * 2

type taskState uint8

const (
	taskVacant taskState = iota
	taskReady
	taskSuspended
)

type taskSlot struct {
	fut    Future
	state  taskState
	gen    uint16
	queued bool
}

type rqEntry struct {
	id  TaskID
	gen uint16
}

// runQueue is a fixed ring of ready task references, in strict FIFO order.
type runQueue struct {
	head  uint16
	tail  uint16
	slots [runQueueCap]rqEntry
}

func (q *runQueue) push(e rqEntry) bool {
	if q.head-q.tail >= runQueueCap {
		return false
	}
	q.slots[q.head%runQueueCap] = e
	q.head++
	return true
}

func (q *runQueue) pop() (rqEntry, bool) {
	if q.tail == q.head {
		return rqEntry{}, false
	}
	e := q.slots[q.tail%runQueueCap]
	q.tail++
	return e, true
}

// Executor owns the task arena, the run queue and the timer queue.
type Executor struct {
	mu     sync.Mutex
	clock  hal.Clock
	log    hal.Logger
	slots  [MaxTasks]taskSlot
	rq     runQueue
	timers timerQueue
	wakeCh chan struct{}
	fatal  error
}

// New builds an executor on the given timebase, claiming one alarm channel
// for the timer queue.
func New(clock hal.Clock) (*Executor, error) {
	if clock == nil {
		return nil, fmt.Errorf("kernel: nil clock")
	}
	alarm := clock.NewAlarm()
	if alarm == nil {
		return nil, fmt.Errorf("kernel: no alarm channel: %w", ErrHardwareFault)
	}
	e := &Executor{
		clock:  clock,
		wakeCh: make(chan struct{}, 1),
	}
	e.timers.init(e, alarm)
	return e, nil
}

// SetLogger sets the diagnostic sink. Nil silences diagnostics.
func (e *Executor) SetLogger(l hal.Logger) { e.log = l }

// Clock returns the executor's timebase.
func (e *Executor) Clock() hal.Clock { return e.clock }

// Spawn places a computation in a vacant arena slot and queues it.
func (e *Executor) Spawn(f Future) (TaskID, error) {
	if f == nil {
		return 0, fmt.Errorf("kernel: spawn: nil future")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fatal != nil {
		return 0, e.fatal
	}
	for id := TaskID(0); id < MaxTasks; id++ {
		s := &e.slots[id]
		if s.state != taskVacant {
			continue
		}
		s.fut = f
		s.state = taskReady
		s.queued = true
		if !e.rq.push(rqEntry{id: id, gen: s.gen}) {
			e.fatalLocked(fmt.Errorf("kernel: run queue full: %w", ErrResourceExhausted))
			return 0, e.fatal
		}
		e.signal()
		return id, nil
	}
	return 0, fmt.Errorf("kernel: spawn: task arena full: %w", ErrResourceExhausted)
}

// Live returns the number of occupied arena slots.
func (e *Executor) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for i := range e.slots {
		if e.slots[i].state != taskVacant {
			n++
		}
	}
	return n
}

// Err returns the fatal error that halted the executor, if any.
func (e *Executor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fatal
}

// wake marks a suspended task ready. It is safe from interrupt context,
// idempotent for already-queued tasks, and a no-op for stale generations.
func (e *Executor) wake(id TaskID, gen uint16) {
	if int(id) >= MaxTasks {
		return
	}
	e.mu.Lock()
	s := &e.slots[id]
	if s.gen != gen || s.state == taskVacant || s.queued {
		e.mu.Unlock()
		return
	}
	s.state = taskReady
	s.queued = true
	if !e.rq.push(rqEntry{id: id, gen: gen}) {
		e.fatalLocked(fmt.Errorf("kernel: run queue full: %w", ErrResourceExhausted))
		e.mu.Unlock()
		return
	}
	e.signal()
	e.mu.Unlock()
}

// signal nudges Run out of its idle wait. Callers hold e.mu.
func (e *Executor) signal() {
	select {
	case e.wakeCh <- struct{}{}:
	default:
	}
}

func (e *Executor) fatalLocked(err error) {
	if e.fatal != nil {
		return
	}
	e.fatal = err
	if e.log != nil {
		e.log.WriteLineString("kernel: halt: " + err.Error())
	}
	e.signal()
}

// Step polls at most one ready task. It reports whether a task was polled;
// the error, when non-nil, is the fatal halt condition.
func (e *Executor) Step() (bool, error) {
	e.mu.Lock()
	if e.fatal != nil {
		err := e.fatal
		e.mu.Unlock()
		return false, err
	}

	var (
		s   *taskSlot
		ent rqEntry
	)
	for {
		var ok bool
		ent, ok = e.rq.pop()
		if !ok {
			e.mu.Unlock()
			return false, nil
		}
		s = &e.slots[ent.id]
		if s.gen == ent.gen && s.state == taskReady && s.queued {
			break
		}
		// Ghost entry from a recycled slot; discard.
	}

	fut := s.fut
	s.queued = false
	s.state = taskSuspended
	e.mu.Unlock()

	// The poll itself runs without the lock so wakers fired during it
	// re-queue the task instead of deadlocking.
	res, err := fut.Poll(Waker{ex: e, id: ent.id, gen: ent.gen})

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.fatalLocked(fmt.Errorf("kernel: task %d: %w", ent.id, err))
		return true, e.fatal
	}
	if res == Ready {
		// Completed: recycle the slot. The generation bump invalidates any
		// waker or queue entry still referring to it.
		s = &e.slots[ent.id]
		s.fut = nil
		s.state = taskVacant
		s.queued = false
		s.gen++
	}
	return true, nil
}

// Drain polls ready tasks until the run queue empties. Step-driven hosts
// call it once per simulated time advance instead of blocking in Run.
func (e *Executor) Drain() error {
	for {
		ran, err := e.Step()
		if err != nil {
			return err
		}
		if !ran {
			return nil
		}
	}
}

// Run polls ready tasks until a fatal error halts the scheduler. When the
// run queue drains it parks on the wake signal; the timer alarm and pin
// interrupts deliver wakes, so the park is the low-power idle wait.
func (e *Executor) Run() error {
	for {
		ran, err := e.Step()
		if err != nil {
			return err
		}
		if !ran {
			<-e.wakeCh
		}
	}
}

// Waker identifies one task slot at one generation. Invoking it marks the
// task ready; duplicate wakes and wakes after completion are no-ops.
type Waker struct {
	ex  *Executor
	id  TaskID
	gen uint16
}

// Wake marks the task ready to be polled again.
func (w Waker) Wake() {
	if w.ex != nil {
		w.ex.wake(w.id, w.gen)
	}
}
