package hw

import (
	"fmt"

	"saturn/emu/log"
	"saturn/hw/cb"
	"saturn/hw/hwdefs"
	"saturn/hw/sched"
	"saturn/hw/snapshot"
)

const (
	CyclesPerLine = 1820
	hblankInCycle = 1280 // cycle of HBlank-IN within a line
)

// Video line phases.
const (
	phaseActive uint8 = iota // from the start of the line to HBlank-IN
	phaseHBlank              // from HBlank-IN to the end of the line
)

type videoTiming struct {
	lines   uint32 // lines per frame
	visible uint32 // VBlank-IN occurs at the start of this line
}

var videoTimings = [...]videoTiming{
	hwdefs.NTSC: {lines: 263, visible: 224},
	hwdefs.PAL:  {lines: 313, visible: 256},
}

// Video generates the blanking signals of the video processors, without
// drawing anything. Each line starts with HBlank-OUT, the first line of a
// frame with VBlank-OUT.
type Video struct {
	Standard hwdefs.VideoStandard

	// When non zero, a sprite draw end is signaled this many cycles after
	// each VBlank-OUT, as if a frame had been drawn.
	SpriteDrawCycles uint64

	// OnFrame is called at the start of each frame with the number of
	// the frame that just ended.
	OnFrame cb.Optional[uint64]

	line  uint32
	phase uint8
	frame uint64

	sched *sched.Scheduler
	scu   *SCU
}

func (v *Video) Init(sc *sched.Scheduler, scu *SCU) {
	v.sched = sc
	v.scu = scu
	sc.RegisterEventHandler(sched.EventVideoPhase, v.nextPhase)
	sc.RegisterEventHandler(sched.EventVDP1Draw, func(_, _ uint64) { v.scu.SpriteDrawEnd() })
}

// Reset restarts at the first line of frame 0. The scheduler must have been
// reset beforehand.
func (v *Video) Reset() {
	v.line = 0
	v.frame = 0
	v.phase = phaseActive
	v.sched.Schedule(sched.EventVideoPhase, hblankInCycle, 0)
}

func (v *Video) Line() uint32  { return v.line }
func (v *Video) Frame() uint64 { return v.frame }

// CyclesPerFrame returns the length of a frame for the current standard.
func (v *Video) CyclesPerFrame() uint64 {
	return uint64(videoTimings[v.Standard].lines) * CyclesPerLine
}

func (v *Video) nextPhase(_, _ uint64) {
	switch v.phase {
	case phaseActive:
		v.phase = phaseHBlank
		v.scu.HBlankIn()
		v.sched.Schedule(sched.EventVideoPhase, CyclesPerLine-hblankInCycle, 0)

	case phaseHBlank:
		timing := videoTimings[v.Standard]
		v.line++
		if v.line == timing.lines {
			v.line = 0
			v.frame++
		}
		v.phase = phaseActive

		switch v.line {
		case timing.visible:
			log.ModVideo.DebugZ("vblank in").Uint64("frame", v.frame).End()
			v.scu.VBlankIn()
		case 0:
			log.ModVideo.DebugZ("vblank out").Uint64("frame", v.frame).End()
			v.scu.VBlankOut()
			if v.SpriteDrawCycles != 0 {
				v.sched.Schedule(sched.EventVDP1Draw, v.SpriteDrawCycles, 0)
			}
			v.OnFrame.Call(v.frame - 1)
		}
		v.scu.HBlankOut()
		v.sched.Schedule(sched.EventVideoPhase, hblankInCycle, 0)
	}
}

func (v *Video) State() *snapshot.Video {
	return &snapshot.Video{
		Standard: uint8(v.Standard),
		Line:     v.line,
		Phase:    v.phase,
		Frame:    v.frame,
	}
}

func ValidateVideoState(st *snapshot.Video) error {
	if int(st.Standard) >= len(videoTimings) {
		return fmt.Errorf("%w: video: standard %d", snapshot.ErrInvalidState, st.Standard)
	}
	if lines := videoTimings[st.Standard].lines; st.Line >= lines {
		return fmt.Errorf("%w: video: line %d out of %d", snapshot.ErrInvalidState, st.Line, lines)
	}
	if st.Phase > phaseHBlank {
		return fmt.Errorf("%w: video: phase %d", snapshot.ErrInvalidState, st.Phase)
	}
	return nil
}

func (v *Video) SetState(st *snapshot.Video) error {
	if err := ValidateVideoState(st); err != nil {
		return err
	}
	v.Standard = hwdefs.VideoStandard(st.Standard)
	v.line = st.Line
	v.phase = st.Phase
	v.frame = st.Frame
	return nil
}
