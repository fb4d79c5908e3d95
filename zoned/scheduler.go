/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"sync"
	"time"
)

// Scheduler is the shared event-scheduler infrastructure consumed by the
// AXFR-IN state machine (C4), per spec.md §6: schedule_cb/schedule/
// cancel/event_free over events that all fire on a single event thread,
// so no two timer callbacks — for the same zone or any other — ever run
// concurrently (spec.md §5). Grounded on the single-goroutine
// `for { select { ... } }` engine shape used throughout the teacher
// (tdns/refreshengine.go:RefreshEngine, tdns/notify.go:NotifierEngine),
// generalized from one hardcoded purpose into a reusable timer
// multiplexer: many time.AfterFunc goroutines feed one channel that a
// single loop goroutine drains, which is what serializes the callbacks.
type Scheduler struct {
	fires chan *firedEvent
	quit  chan struct{}
	wg    sync.WaitGroup
}

type firedEvent struct {
	ev  *Event
	gen uint64
}

// Event is a single scheduled timer, carrying a back-pointer to its
// callback and user data (spec.md §6).
type Event struct {
	sched *Scheduler
	fn    func(data any)
	data  any

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		fires: make(chan *firedEvent, 64),
		quit:  make(chan struct{}),
	}
}

// Run is the scheduler's single event thread. It must be started exactly
// once, typically in its own goroutine, and runs until Stop is called.
func (s *Scheduler) Run() {
	s.wg.Add(1)
	defer s.wg.Done()
	for {
		select {
		case <-s.quit:
			return
		case f := <-s.fires:
			f.ev.invoke(f.gen)
		}
	}
}

// Stop terminates the event thread and waits for it to exit.
func (s *Scheduler) Stop() {
	close(s.quit)
	s.wg.Wait()
}

// ScheduleCB creates a new event bound to fn/data and arms it to fire
// after ms milliseconds, returning the event handle.
func (s *Scheduler) ScheduleCB(fn func(data any), data any, ms uint32) *Event {
	ev := &Event{sched: s, fn: fn, data: data}
	s.Schedule(ev, ms)
	return ev
}

// Schedule (re)arms an existing event to fire after ms milliseconds,
// replacing any pending fire for it.
func (s *Scheduler) Schedule(ev *Event, ms uint32) {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	if ev.timer != nil {
		ev.timer.Stop()
	}
	ev.gen++
	gen := ev.gen
	ev.timer = time.AfterFunc(time.Duration(ms)*time.Millisecond, func() {
		select {
		case s.fires <- &firedEvent{ev: ev, gen: gen}:
		case <-s.quit:
		}
	})
}

// Cancel stops a pending fire. Double-cancel is a no-op (spec.md §5),
// and cancelling nil is also a no-op, matching the "guarded by the null
// reference" rule the spec calls for.
func (s *Scheduler) Cancel(ev *Event) {
	if ev == nil {
		return
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	if ev.timer != nil {
		ev.timer.Stop()
		ev.timer = nil
	}
	ev.gen++ // invalidate any fire already in flight
}

// EventFree cancels and releases an event record. In a GC'd language
// there is nothing further to free; EventFree exists so call sites read
// the same as spec.md's four-operation scheduler interface.
func (s *Scheduler) EventFree(ev *Event) {
	s.Cancel(ev)
}

func (e *Event) invoke(gen uint64) {
	e.mu.Lock()
	stale := gen != e.gen
	e.mu.Unlock()
	if stale {
		return
	}
	e.fn(e.data)
}
