package hwdefs

import "fmt"

// BreakKind tells why the emulation loop returned control to its caller.
type BreakKind uint8

const (
	BreakNone   BreakKind = iota
	BreakFrame            // a full frame has been emulated
	BreakEvent            // a scheduler event marked as breakpoint fired
	BreakDMAEnd           // a DMA transfer completed while DMA breaks are on
)

// BreakInfo is a tagged union. Only the payload matching Kind is meaningful,
// so build it with one of the constructors and read it with the accessor
// matching Kind.
type BreakInfo struct {
	kind  BreakKind
	cycle uint64

	// payload
	frame uint64
	event uint8
	level uint8
}

func FrameBreak(cycle, frame uint64) BreakInfo {
	return BreakInfo{kind: BreakFrame, cycle: cycle, frame: frame}
}

func EventBreak(cycle uint64, event uint8) BreakInfo {
	return BreakInfo{kind: BreakEvent, cycle: cycle, event: event}
}

func DMAEndBreak(cycle uint64, level int) BreakInfo {
	return BreakInfo{kind: BreakDMAEnd, cycle: cycle, level: uint8(level)}
}

func (bi BreakInfo) Kind() BreakKind { return bi.kind }

// Cycle is the scheduler cycle at which the break occurred.
func (bi BreakInfo) Cycle() uint64 { return bi.cycle }

func (bi BreakInfo) Frame() (frame uint64, ok bool) {
	return bi.frame, bi.kind == BreakFrame
}

func (bi BreakInfo) Event() (id uint8, ok bool) {
	return bi.event, bi.kind == BreakEvent
}

func (bi BreakInfo) DMALevel() (level int, ok bool) {
	return int(bi.level), bi.kind == BreakDMAEnd
}

func (bi BreakInfo) String() string {
	switch bi.kind {
	case BreakFrame:
		return fmt.Sprintf("frame %d (cycle %d)", bi.frame, bi.cycle)
	case BreakEvent:
		return fmt.Sprintf("event %d (cycle %d)", bi.event, bi.cycle)
	case BreakDMAEnd:
		return fmt.Sprintf("dma level %d end (cycle %d)", bi.level, bi.cycle)
	}
	return "none"
}
