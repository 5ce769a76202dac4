package sched

import "fmt"

// EventID identifies a schedulable event. There's at most one pending event
// per identity. When several events are due on the same cycle they fire in
// ascending EventID order, so the order of this list matters for
// reproducibility.
type EventID uint8

//go:generate go tool stringer -type=EventID -trimprefix=Event

const (
	EventVideoPhase EventID = iota
	EventVDP1Draw
	EventAudioSample
	EventCDDriveState
	EventCDCommand
	EventSCUTimer1
	EventSMPCCommand
	EventSCUDMATransfer
	EventSCUDMA0Intr
	EventSCUDMA1Intr
	EventSCUDMA2Intr

	NumEvents
)

// DMAIntrEvent returns the end interrupt event of a DMA level.
func DMAIntrEvent(level int) EventID {
	return EventSCUDMA0Intr + EventID(level)
}

// ParseEventID returns the event named s, as printed by EventID.String.
func ParseEventID(s string) (EventID, error) {
	for id := range NumEvents {
		if id.String() == s {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown event %q", s)
}
