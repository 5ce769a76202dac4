package hw

import (
	"fmt"

	"saturn/emu/log"
	"saturn/hw/cb"
	"saturn/hw/hwdefs"
	"saturn/hw/hwio"
	"saturn/hw/sched"
	"saturn/hw/snapshot"
)

const (
	SCURegsBase = 0x05FE0000
	scuRegsEnd  = 0x05FF0000

	imsMask = 0xBFFF
)

// SCU is the system control unit: it owns the DMA controller, the
// interrupt controller and the two timers. Other devices report their
// signals (blanking, sound request, sprite draw end) to it, it then raises
// the matching interrupts and starts the DMA transfers waiting for them.
type SCU struct {
	T0C   hwio.Reg32 `hwio:"offset=0x90,rwmask=0x3FF,writeonly"`
	T1S   hwio.Reg32 `hwio:"offset=0x94,rwmask=0x1FF,writeonly"`
	T1MD  hwio.Reg32 `hwio:"offset=0x98,rwmask=0x101,writeonly"`
	IMS   hwio.Reg32 `hwio:"offset=0xA0,rwmask=0xBFFF,reset=0xBFFF,wcb"`
	IST   hwio.Reg32 `hwio:"offset=0xA4,rwmask=0x3FFF,wcb"`
	AIACK hwio.Reg32 `hwio:"offset=0xA8,rwmask=0x1"`
	VER   hwio.Reg32 `hwio:"offset=0xC8,readonly,reset=0x4"`

	DMA DMA

	// OnInterrupt is called when an unmasked interrupt is raised, or when
	// unmasking a pending one.
	OnInterrupt cb.Optional[hwdefs.IntSource]

	regs   *hwio.Bus
	sched  *sched.Scheduler
	timer0 uint32
}

// Init maps the SCU registers on bus. DMA transfers go through bus too.
func (scu *SCU) Init(bus *hwio.Bus, sc *sched.Scheduler) {
	hwio.MustInitRegs(scu)
	scu.sched = sc
	scu.DMA.Init(bus, sc, cb.NewRequired(scu.RaiseInterrupt))

	scu.regs = hwio.NewBus("scu")
	scu.regs.MapBank(SCURegsBase, scu, 0)
	scu.DMA.MapRegs(scu.regs, SCURegsBase)
	bus.MapBus(SCURegsBase, scuRegsEnd, scu.regs)

	sc.RegisterEventHandler(sched.EventSCUTimer1, scu.fireTimer1)
}

func (scu *SCU) Reset() {
	scu.T0C.Value = 0
	scu.T1S.Value = 0
	scu.T1MD.Value = 0
	scu.IMS.Value = imsMask
	scu.IST.Value = 0
	scu.AIACK.Value = 0
	scu.timer0 = 0
	scu.DMA.Reset()
}

// RaiseInterrupt flags src as pending and signals it if it's not masked.
func (scu *SCU) RaiseInterrupt(src hwdefs.IntSource) {
	scu.IST.Value |= src.Mask()
	masked := scu.IMS.Value&src.Mask() != 0
	log.ModSCU.DebugZ("raise interrupt").Stringer("src", src).Bool("masked", masked).End()
	if !masked {
		scu.OnInterrupt.Call(src)
	}
}

// PendingInterrupt returns the highest priority unmasked pending interrupt.
func (scu *SCU) PendingInterrupt() (hwdefs.IntSource, bool) {
	pending := scu.IST.Value &^ scu.IMS.Value
	for src := range hwdefs.IntSource(hwdefs.NumIntSources) {
		if pending&src.Mask() != 0 {
			return src, true
		}
	}
	return 0, false
}

func (scu *SCU) WriteIMS(old, val uint32) {
	log.ModSCU.DebugZ("write IMS").Stringer("mask", hwdefs.IntMask(val)).End()
	if old&^val&scu.IST.Value != 0 {
		if src, ok := scu.PendingInterrupt(); ok {
			scu.OnInterrupt.Call(src)
		}
	}
}

// Writing 0 to an IST bit clears it, writing 1 leaves it alone.
func (scu *SCU) WriteIST(old, val uint32) {
	scu.IST.Value = old & val
	log.ModSCU.DebugZ("write IST").Stringer("pending", hwdefs.IntMask(scu.IST.Value)).End()
}

func (scu *SCU) VBlankIn() {
	scu.RaiseInterrupt(hwdefs.IntVBlankIn)
	scu.DMA.Trigger(DMAVBlankIn)
}

func (scu *SCU) VBlankOut() {
	scu.timer0 = 0
	scu.RaiseInterrupt(hwdefs.IntVBlankOut)
	scu.DMA.Trigger(DMAVBlankOut)
}

func (scu *SCU) HBlankIn() {
	scu.RaiseInterrupt(hwdefs.IntHBlankIn)
	scu.DMA.Trigger(DMAHBlankIn)
	scu.tickTimer0()
}

func (scu *SCU) HBlankOut() {
	scu.startTimer1()
}

func (scu *SCU) SoundRequest() {
	scu.RaiseInterrupt(hwdefs.IntSoundRequest)
	scu.DMA.Trigger(DMASoundReq)
}

func (scu *SCU) SpriteDrawEnd() {
	scu.RaiseInterrupt(hwdefs.IntSpriteDrawEnd)
	scu.DMA.Trigger(DMASpriteDrawEnd)
}

func (scu *SCU) State() *snapshot.SCU {
	return &snapshot.SCU{
		IMS:    scu.IMS.Value,
		IST:    scu.IST.Value,
		AIACK:  scu.AIACK.Value,
		T0C:    scu.T0C.Value,
		T1S:    scu.T1S.Value,
		T1MD:   scu.T1MD.Value,
		Timer0: scu.timer0,
	}
}

func ValidateSCUState(st *snapshot.SCU) error {
	for _, r := range []struct {
		name      string
		val, mask uint32
	}{
		{"IMS", st.IMS, imsMask},
		{"IST", st.IST, 0x3FFF},
		{"AIACK", st.AIACK, 0x1},
		{"T0C", st.T0C, 0x3FF},
		{"T1S", st.T1S, 0x1FF},
		{"T1MD", st.T1MD, 0x101},
	} {
		if r.val&^r.mask != 0 {
			return fmt.Errorf("%w: scu: %s = %08x", snapshot.ErrInvalidState, r.name, r.val)
		}
	}
	return nil
}

func (scu *SCU) SetState(st *snapshot.SCU) error {
	if err := ValidateSCUState(st); err != nil {
		return err
	}
	scu.IMS.Value = st.IMS
	scu.IST.Value = st.IST
	scu.AIACK.Value = st.AIACK
	scu.T0C.Value = st.T0C
	scu.T1S.Value = st.T1S
	scu.T1MD.Value = st.T1MD
	scu.timer0 = st.Timer0
	return nil
}
