// Package sched implements the virtual clock of the machine.
//
// Devices don't run in lockstep: each one asks the scheduler to be called
// back at some point in the future, and the driver advances the clock from
// one event to the next. Events are identified by a fixed set of EventIDs,
// each one having at most one pending occurrence.
package sched

import (
	"fmt"

	"saturn/emu/log"
	"saturn/hw/cb"
	"saturn/hw/hwdefs"
	"saturn/hw/snapshot"
)

// Handler is called when an event fires. elapsed is the number of cycles
// since the event was scheduled, userData is the value given at that time.
type Handler func(elapsed, userData uint64)

type event struct {
	target    uint64
	scheduled uint64 // cycle at which Schedule was called
	userData  uint64
	pending   bool
}

// Scheduler is a virtual clock with a pending event queue. It's not safe for
// concurrent use: all the machine runs on the goroutine calling Advance.
type Scheduler struct {
	now      uint64
	events   [NumEvents]event
	handlers [NumEvents]Handler

	// OnFire, if set, is called after the handler of each fired event.
	OnFire cb.Optional[EventID]
}

func nopHandler(uint64, uint64) {}

func New() *Scheduler {
	s := new(Scheduler)
	for i := range s.handlers {
		s.handlers[i] = nopHandler
	}
	return s
}

func validID(id EventID) bool {
	hwdefs.Assert(id < NumEvents, "unknown event %d", id)
	return id < NumEvents
}

// RegisterEventHandler sets the function called when id fires. A nil h
// restores the default handler, which does nothing.
func (s *Scheduler) RegisterEventHandler(id EventID, h Handler) {
	if !validID(id) {
		return
	}
	if h == nil {
		h = nopHandler
	}
	s.handlers[id] = h
}

// Now returns the current cycle.
func (s *Scheduler) Now() uint64 { return s.now }

// Schedule sets id to fire cycles from now, replacing any pending occurrence.
// It does nothing if the target cycle overflows.
func (s *Scheduler) Schedule(id EventID, cycles, userData uint64) {
	target := s.now + cycles
	if target < s.now {
		log.ModSched.DebugZ("schedule overflow").Stringer("event", id).Uint64("cycles", cycles).End()
		return
	}
	s.ScheduleAt(id, target, userData)
}

// ScheduleAt sets id to fire at the absolute cycle target, replacing any
// pending occurrence. A target in the past is ignored.
func (s *Scheduler) ScheduleAt(id EventID, target, userData uint64) {
	if !validID(id) {
		return
	}
	if target < s.now {
		log.ModSched.DebugZ("schedule in the past").Stringer("event", id).Uint64("target", target).End()
		return
	}
	s.events[id] = event{
		target:    target,
		scheduled: s.now,
		userData:  userData,
		pending:   true,
	}
}

// Cancel removes the pending occurrence of id, if any.
func (s *Scheduler) Cancel(id EventID) {
	if validID(id) {
		s.events[id].pending = false
	}
}

func (s *Scheduler) IsPending(id EventID) bool {
	return validID(id) && s.events[id].pending
}

// Target returns the cycle at which id is due.
func (s *Scheduler) Target(id EventID) (uint64, bool) {
	if !s.IsPending(id) {
		return 0, false
	}
	return s.events[id].target, true
}

// NextEventCycle returns the target cycle of the earliest pending event.
func (s *Scheduler) NextEventCycle() (uint64, bool) {
	var (
		next  uint64
		found bool
	)
	for i := range s.events {
		ev := &s.events[i]
		if ev.pending && (!found || ev.target < next) {
			next, found = ev.target, true
		}
	}
	return next, found
}

// Advance moves the clock to target, firing every event due at or before it
// in (target cycle, identity) order. Handlers can schedule and cancel
// events; new events due at or before target fire during the same call.
//
// An event that fires on cycle C and is rescheduled on that very same cycle
// is left pending until the next call, so a handler rescheduling itself with
// no delay can't stall the loop.
func (s *Scheduler) Advance(target uint64) {
	if target < s.now {
		hwdefs.Assert(false, "advance to the past: %d < %d", target, s.now)
		return
	}

	var firedAt [NumEvents]uint64
	var fired [NumEvents]bool

	for {
		id, ok := s.due(target, &fired, &firedAt)
		if !ok {
			break
		}
		ev := s.events[id]
		s.events[id].pending = false
		s.now = max(s.now, ev.target)
		fired[id], firedAt[id] = true, ev.target

		log.ModSched.DebugZ("fire").Stringer("event", id).Uint64("target", ev.target).End()
		s.handlers[id](s.now-ev.scheduled, ev.userData)
		s.OnFire.Call(id)
	}
	s.now = target
}

// due returns the next event to fire before target, skipping those which
// already fired on the cycle they're now scheduled for.
func (s *Scheduler) due(target uint64, fired *[NumEvents]bool, firedAt *[NumEvents]uint64) (EventID, bool) {
	best, found := EventID(0), false
	for id := range NumEvents {
		ev := &s.events[id]
		if !ev.pending || ev.target > target {
			continue
		}
		if fired[id] && firedAt[id] == ev.target {
			continue
		}
		// Strict comparison: on ties the lowest identity, seen first, wins.
		if !found || ev.target < s.events[best].target {
			best, found = id, true
		}
	}
	return best, found
}

// Reset cancels all events and rewinds the clock to 0. Handlers are kept.
func (s *Scheduler) Reset() {
	s.now = 0
	clear(s.events[:])
}

// AddLogContext adds the current cycle to log entries.
func (s *Scheduler) AddLogContext(z *log.EntryZ) {
	z.Uint64("cycle", s.now)
}

func (s *Scheduler) State() *snapshot.Scheduler {
	st := &snapshot.Scheduler{Cycle: s.now}
	for id := range NumEvents {
		if ev := &s.events[id]; ev.pending {
			st.Events = append(st.Events, snapshot.Event{ID: uint8(id), Target: ev.target})
		}
	}
	return st
}

func ValidateState(st *snapshot.Scheduler) error {
	var seen [NumEvents]bool
	for _, ev := range st.Events {
		if EventID(ev.ID) >= NumEvents {
			return fmt.Errorf("%w: scheduler: unknown event %d", snapshot.ErrInvalidState, ev.ID)
		}
		if seen[ev.ID] {
			return fmt.Errorf("%w: scheduler: duplicate event %s", snapshot.ErrInvalidState, EventID(ev.ID))
		}
		seen[ev.ID] = true
	}
	return nil
}

// SetState replaces the clock and every pending event with the content of
// st. Nothing changes if st is invalid.
//
// The saved layout has neither the user data nor the scheduling cycle of
// events. Restored events have no user data, and count elapsed cycles from
// the restored clock: their handler gets a smaller elapsed value than it
// would have on the machine the state was taken from.
func (s *Scheduler) SetState(st *snapshot.Scheduler) error {
	if err := ValidateState(st); err != nil {
		return err
	}
	s.now = st.Cycle
	clear(s.events[:])
	for _, ev := range st.Events {
		s.events[ev.ID] = event{
			target:    ev.Target,
			scheduled: min(st.Cycle, ev.Target),
			pending:   true,
		}
	}
	return nil
}
