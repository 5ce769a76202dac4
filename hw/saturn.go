package hw

import (
	"errors"

	"saturn/hw/cb"
	"saturn/hw/hwdefs"
	"saturn/hw/hwio"
	"saturn/hw/sched"
	"saturn/hw/snapshot"
)

// Config holds the hardware settings of a Saturn.
type Config struct {
	Standard         hwdefs.VideoStandard
	DMAIntrDelay     uint64
	DMABurst         int
	SpriteDrawCycles uint64
	Cartridge        CartKind
}

func DefaultConfig() Config {
	return Config{
		Standard:     hwdefs.NTSC,
		DMAIntrDelay: DefaultDMAIntrDelay,
		DMABurst:     DefaultDMABurst,
	}
}

// Saturn wires the devices of the machine around the main bus and the
// scheduler. CPUs, sound and disc subsystems are external: they map
// themselves on Bus and register handlers for their events on Sched.
type Saturn struct {
	Bus   *hwio.Bus
	Sched *sched.Scheduler

	SCU   SCU
	Video Video
	Mem   Memory
	Cart  CartridgeSlot

	BreakOnDMAEnd bool
	breakEvents   [sched.NumEvents]bool
	brk           hwdefs.BreakInfo
	frameDone     bool
}

func NewSaturn(cfg Config) (*Saturn, error) {
	cart, err := NewCartridge(cfg.Cartridge)
	if err != nil {
		return nil, err
	}

	s := &Saturn{
		Bus:   hwio.NewBus("main"),
		Sched: sched.New(),
	}
	s.Mem.Init(s.Bus)

	s.SCU.DMA.IntrDelay = cfg.DMAIntrDelay
	s.SCU.DMA.Burst = cfg.DMABurst
	s.SCU.Init(s.Bus, s.Sched)

	s.Video.Standard = cfg.Standard
	s.Video.SpriteDrawCycles = cfg.SpriteDrawCycles
	s.Video.Init(s.Sched, &s.SCU)

	s.Cart.Init(s.Bus)
	s.Cart.Insert(cart)

	s.Sched.OnFire = cb.NewOptional(s.eventFired)
	s.SCU.DMA.OnEnd = cb.NewOptional(s.dmaEnded)
	s.Video.OnFrame = cb.NewOptional(func(uint64) { s.frameDone = true })

	s.Reset(hwdefs.HardReset)
	return s, nil
}

func (s *Saturn) LoadBIOS(img []byte) error {
	return s.Mem.LoadBIOS(img)
}

// Reset resets the clock and all devices. Work RAM is kept on a soft reset.
func (s *Saturn) Reset(soft bool) {
	s.Sched.Reset()
	s.Mem.Reset(soft)
	s.SCU.Reset()
	s.Video.Reset()
	s.brk = hwdefs.BreakInfo{}
	s.frameDone = false
}

// SetBreakOnEvent makes the run functions return after id fires.
func (s *Saturn) SetBreakOnEvent(id sched.EventID, enabled bool) {
	if id < sched.NumEvents {
		s.breakEvents[id] = enabled
	}
}

func (s *Saturn) eventFired(id sched.EventID) {
	if s.breakEvents[id] && s.brk.Kind() == hwdefs.BreakNone {
		s.brk = hwdefs.EventBreak(s.Sched.Now(), uint8(id))
	}
}

func (s *Saturn) dmaEnded(level int) {
	if s.BreakOnDMAEnd && s.brk.Kind() == hwdefs.BreakNone {
		s.brk = hwdefs.DMAEndBreak(s.Sched.Now(), level)
	}
}

func (s *Saturn) advance(target uint64) hwdefs.BreakInfo {
	s.brk = hwdefs.BreakInfo{}
	s.Sched.Advance(target)
	return s.brk
}

// Step advances the clock to the next pending event and fires every event
// due then.
func (s *Saturn) Step() hwdefs.BreakInfo {
	next, ok := s.Sched.NextEventCycle()
	if !ok {
		next = s.Sched.Now() + 1
	}
	return s.advance(max(next, s.Sched.Now()))
}

// RunCycles runs for n cycles, or until a break.
func (s *Saturn) RunCycles(n uint64) hwdefs.BreakInfo {
	end := s.Sched.Now() + n
	for s.Sched.Now() < end {
		next, ok := s.Sched.NextEventCycle()
		if !ok {
			next = end
		}
		next = min(max(next, s.Sched.Now()), end)
		if brk := s.advance(next); brk.Kind() != hwdefs.BreakNone {
			return brk
		}
	}
	return hwdefs.BreakInfo{}
}

// RunFrame runs until the start of the next frame, or until a break.
func (s *Saturn) RunFrame() hwdefs.BreakInfo {
	for !s.frameDone {
		if brk := s.Step(); brk.Kind() != hwdefs.BreakNone {
			return brk
		}
	}
	s.frameDone = false
	return hwdefs.FrameBreak(s.Sched.Now(), s.Video.Frame())
}

// RaiseSoundRequest is called by the sound subsystem.
func (s *Saturn) RaiseSoundRequest() { s.SCU.SoundRequest() }

// RaiseSpriteDrawEnd is called by the sprite processor when it's done
// drawing.
func (s *Saturn) RaiseSpriteDrawEnd() { s.SCU.SpriteDrawEnd() }

func (s *Saturn) State() *snapshot.System {
	return &snapshot.System{
		Version: snapshot.Version,
		Sched:   *s.Sched.State(),
		SCU:     *s.SCU.State(),
		DMA:     *s.SCU.DMA.State(),
		Video:   *s.Video.State(),
		WRAML:   append([]byte(nil), s.Mem.WRAML...),
		WRAMH:   append([]byte(nil), s.Mem.WRAMH...),
		Cart:    s.Cart.State(),
	}
}

// SetState loads a whole machine state. Every section is validated before
// anything is applied, so on error the machine is left untouched.
func (s *Saturn) SetState(st *snapshot.System) error {
	err := errors.Join(
		sched.ValidateState(&st.Sched),
		ValidateSCUState(&st.SCU),
		ValidateDMAState(&st.DMA),
		ValidateVideoState(&st.Video),
		validateWRAMState(st.WRAML, st.WRAMH),
		s.Cart.ValidateState(&st.Cart),
	)
	if err != nil {
		return err
	}

	// Can't fail past this point.
	_ = s.Sched.SetState(&st.Sched)
	_ = s.SCU.SetState(&st.SCU)
	_ = s.SCU.DMA.SetState(&st.DMA)
	_ = s.Video.SetState(&st.Video)
	_ = s.Cart.SetState(&st.Cart)
	copy(s.Mem.WRAML, st.WRAML)
	copy(s.Mem.WRAMH, st.WRAMH)
	s.brk = hwdefs.BreakInfo{}
	s.frameDone = false
	return nil
}
