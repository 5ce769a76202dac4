package hw

import (
	"fmt"
	"math/bits"

	"saturn/emu/log"
	"saturn/hw/cb"
	"saturn/hw/hwdefs"
	"saturn/hw/hwio"
	"saturn/hw/sched"
	"saturn/hw/snapshot"
)

// DMATrigger is the condition starting a transfer (DxMD bits 2-0).
type DMATrigger uint8

//go:generate go tool stringer -type=DMATrigger -trimprefix=DMA

const (
	DMAVBlankIn DMATrigger = iota
	DMAVBlankOut
	DMAHBlankIn
	DMATimer0
	DMATimer1
	DMASoundReq
	DMASpriteDrawEnd
	DMAImmediate

	numDMATriggers
)

// DMAStatus is the state of a DMA channel.
type DMAStatus uint8

const (
	DMAIdle      DMAStatus = iota
	DMATriggered           // waiting for the next transfer step
	DMAActive              // transferring
)

const (
	NumDMAChannels = 3

	// Largest transfer count, in bytes, a save state can hold.
	maxDMAXferCount = 0x100000

	// DMA registers of level N are at dmaChannelStride*N.
	dmaChannelStride = 0x20

	// Bit 31 of the source address in an indirect table entry marks the
	// last entry.
	dmaIndirectEnd = 1 << 31

	// Size of an indirect table entry: count, destination, source.
	dmaIndirectEntrySize = 12

	DefaultDMABurst     = 16
	DefaultDMAIntrDelay = 2
)

// DMAChannel is one of the three DMA levels of the SCU. Level 0 has the
// highest priority.
type DMAChannel struct {
	DxR  hwio.Reg32 `hwio:"offset=0x00,rcb,wcb"`
	DxW  hwio.Reg32 `hwio:"offset=0x04,rcb,wcb"`
	DxC  hwio.Reg32 `hwio:"offset=0x08,rcb,wcb"`
	DxAD hwio.Reg32 `hwio:"offset=0x0C,rwmask=0x107,rcb,wcb"`
	DxEN hwio.Reg32 `hwio:"offset=0x10,rwmask=0x101,rcb,wcb"`
	DxMD hwio.Reg32 `hwio:"offset=0x14,rwmask=0x1010107,rcb,wcb"`

	dma      *DMA
	level    int
	maxCount uint32

	// configuration
	srcAddr       uint32
	dstAddr       uint32 // indirect table address in indirect mode
	xferCount     uint32 // as written in DxC, 0 means maxCount
	srcAddrInc    uint32
	dstAddrInc    uint32
	updateSrcAddr bool
	updateDstAddr bool
	enabled       bool
	indirect      bool
	trigger       DMATrigger

	// current transfer
	triggered       bool
	active          bool
	currSrcAddr     uint32
	currDstAddr     uint32
	currXferCount   uint32
	currSrcAddrInc  uint32
	currDstAddrInc  uint32
	currIndirectSrc uint32 // next indirect table entry
	endIndirect     bool   // last table entry loaded

	// Bytes read from the source and not written yet, oldest in the most
	// significant position.
	xferBuf    uint64
	xferBufLen uint8
}

func (ch *DMAChannel) Level() int { return ch.level }

func (ch *DMAChannel) Status() DMAStatus {
	switch {
	case ch.active:
		return DMAActive
	case ch.triggered:
		return DMATriggered
	}
	return DMAIdle
}

func (ch *DMAChannel) WriteDXR(_, val uint32) {
	ch.srcAddr = val & hwio.AddressMask
	log.ModDMA.DebugZ("write DxR").Int("level", ch.level).Hex32("src", ch.srcAddr).End()
}

func (ch *DMAChannel) ReadDXR(_ uint32) uint32 { return ch.srcAddr }

func (ch *DMAChannel) WriteDXW(_, val uint32) {
	ch.dstAddr = val & hwio.AddressMask
	log.ModDMA.DebugZ("write DxW").Int("level", ch.level).Hex32("dst", ch.dstAddr).End()
}

func (ch *DMAChannel) ReadDXW(_ uint32) uint32 { return ch.dstAddr }

func (ch *DMAChannel) WriteDXC(_, val uint32) {
	ch.xferCount = val & (ch.maxCount - 1)
	log.ModDMA.DebugZ("write DxC").Int("level", ch.level).Hex32("count", ch.xferCount).End()
}

func (ch *DMAChannel) ReadDXC(_ uint32) uint32 { return ch.xferCount }

func (ch *DMAChannel) WriteDXAD(_, val uint32) {
	ch.srcAddrInc = 0
	if hwio.GetBit32(val, 8) {
		ch.srcAddrInc = 4
	}
	ch.dstAddrInc = 0
	if code := hwio.GetBits32(val, 0, 3); code != 0 {
		ch.dstAddrInc = 1 << code
	}
}

func (ch *DMAChannel) ReadDXAD(_ uint32) uint32 {
	var val uint32
	hwio.SetBit32To(&val, 8, ch.srcAddrInc != 0)
	if ch.dstAddrInc != 0 {
		val |= uint32(bits.TrailingZeros32(ch.dstAddrInc))
	}
	return val
}

func (ch *DMAChannel) WriteDXEN(_, val uint32) {
	ch.enabled = hwio.GetBit32(val, 8)
	start := hwio.GetBit32(val, 0)
	ch.DxEN.Value &^= 1

	log.ModDMA.DebugZ("write DxEN").
		Int("level", ch.level).
		Bool("enable", ch.enabled).
		Bool("start", start).
		End()

	switch {
	case !ch.enabled:
		ch.stop()
	case start && ch.trigger == DMAImmediate:
		ch.dma.start(ch)
	}
}

func (ch *DMAChannel) ReadDXEN(_ uint32) uint32 {
	var val uint32
	hwio.SetBit32To(&val, 8, ch.enabled)
	return val
}

func (ch *DMAChannel) WriteDXMD(_, val uint32) {
	ch.indirect = hwio.GetBit32(val, 24)
	ch.updateSrcAddr = hwio.GetBit32(val, 16)
	ch.updateDstAddr = hwio.GetBit32(val, 8)
	ch.trigger = DMATrigger(hwio.GetBits32(val, 0, 3))

	log.ModDMA.DebugZ("write DxMD").
		Int("level", ch.level).
		Bool("indirect", ch.indirect).
		Stringer("trigger", ch.trigger).
		End()
}

func (ch *DMAChannel) ReadDXMD(_ uint32) uint32 {
	var val uint32
	hwio.SetBit32To(&val, 24, ch.indirect)
	hwio.SetBit32To(&val, 16, ch.updateSrcAddr)
	hwio.SetBit32To(&val, 8, ch.updateDstAddr)
	return val | uint32(ch.trigger)
}

// syncRegs rewrites the register backing values from the channel
// configuration, so that narrow writes merge with the current settings.
func (ch *DMAChannel) syncRegs() {
	ch.DxR.Value = ch.ReadDXR(0)
	ch.DxW.Value = ch.ReadDXW(0)
	ch.DxC.Value = ch.ReadDXC(0)
	ch.DxAD.Value = ch.ReadDXAD(0)
	ch.DxEN.Value = ch.ReadDXEN(0)
	ch.DxMD.Value = ch.ReadDXMD(0)
}

func (ch *DMAChannel) stop() {
	if ch.active || ch.triggered {
		log.ModDMA.DebugZ("transfer stopped").Int("level", ch.level).End()
	}
	ch.active = false
	ch.triggered = false
}

// count returns the number of bytes a count register value means.
func (ch *DMAChannel) count(val uint32) uint32 {
	val &= ch.maxCount - 1
	if val == 0 {
		return ch.maxCount
	}
	return val
}

func (ch *DMAChannel) activate(bus *hwio.Bus) {
	ch.triggered = false
	ch.active = true
	ch.currSrcAddrInc = ch.srcAddrInc
	ch.currDstAddrInc = ch.dstAddrInc
	ch.endIndirect = false

	if ch.indirect {
		ch.currIndirectSrc = ch.dstAddr
		ch.loadIndirect(bus)
	} else {
		ch.currSrcAddr = ch.srcAddr
		ch.currDstAddr = ch.dstAddr
		ch.currXferCount = ch.count(ch.xferCount)
		ch.xferBuf, ch.xferBufLen = 0, 0
	}

	log.ModDMA.DebugZ("transfer started").
		Int("level", ch.level).
		Hex32("src", ch.currSrcAddr).
		Hex32("dst", ch.currDstAddr).
		Hex32("count", ch.currXferCount).
		Bool("indirect", ch.indirect).
		End()
}

// loadIndirect reads the next entry of the indirect table.
func (ch *DMAChannel) loadIndirect(bus *hwio.Bus) {
	p := ch.currIndirectSrc
	count := bus.Read32(p)
	dst := bus.Read32(p + 4)
	src := bus.Read32(p + 8)

	ch.currIndirectSrc = (p + dmaIndirectEntrySize) & hwio.AddressMask
	ch.endIndirect = src&dmaIndirectEnd != 0
	ch.currSrcAddr = src & hwio.AddressMask
	ch.currDstAddr = dst & hwio.AddressMask
	ch.currXferCount = ch.count(count)
	ch.xferBuf, ch.xferBufLen = 0, 0

	log.ModDMA.DebugZ("indirect entry").
		Int("level", ch.level).
		Hex32("table", p).
		Hex32("src", ch.currSrcAddr).
		Hex32("dst", ch.currDstAddr).
		Hex32("count", ch.currXferCount).
		Bool("last", ch.endIndirect).
		End()
}

// fill reads a long from the source, at the aligned address, and queues the
// bytes from the current source address onwards.
func (ch *DMAChannel) fill(bus *hwio.Bus) {
	addr := ch.currSrcAddr
	val := bus.Read32(addr &^ 3)
	for i := addr & 3; i < 4; i++ {
		ch.xferBuf = ch.xferBuf<<8 | uint64(uint8(val>>((3-i)*8)))
		ch.xferBufLen++
	}
	if ch.currSrcAddrInc != 0 {
		ch.currSrcAddr = (addr&^3 + ch.currSrcAddrInc) & hwio.AddressMask
	}
}

// pop dequeues the n oldest bytes.
func (ch *DMAChannel) pop(n uint32) uint32 {
	shift := (uint32(ch.xferBufLen) - n) * 8
	val := ch.xferBuf >> shift & (uint64(1)<<(n*8) - 1)
	ch.xferBufLen -= uint8(n)
	ch.xferBuf &= uint64(1)<<(uint32(ch.xferBufLen)*8) - 1
	return uint32(val)
}

// step writes one unit to the destination and reports whether the current
// count reached zero.
func (ch *DMAChannel) step(bus *hwio.Bus) bool {
	n := uint32(4)
	if ch.currDstAddrInc == 2 {
		n = 2
	}
	if ch.currXferCount < n {
		n = 1
	}
	for uint32(ch.xferBufLen) < n {
		ch.fill(bus)
	}

	val := ch.pop(n)
	switch n {
	case 4:
		bus.Write32(ch.currDstAddr, val)
	case 2:
		bus.Write16(ch.currDstAddr, uint16(val))
	default:
		bus.Write8(ch.currDstAddr, uint8(val))
	}

	switch {
	case n != 1:
		ch.currDstAddr += ch.currDstAddrInc
	case ch.currDstAddrInc != 0:
		ch.currDstAddr++
	}
	ch.currDstAddr &= hwio.AddressMask
	ch.currXferCount -= n
	return ch.currXferCount == 0
}

// DMA is the DMA controller of the SCU. Transfers run in the background of
// the scheduler, one unit (a long, or a word with a destination increment
// of 2) per cycle, by bursts.
type DMA struct {
	DSTP hwio.Reg32 `hwio:"offset=0x60,rwmask=0x1,writeonly,wcb"`
	DSTA hwio.Reg32 `hwio:"offset=0x7C,readonly,rcb"`

	Channels [NumDMAChannels]DMAChannel

	// Cycles between the end of a transfer and its interrupt.
	IntrDelay uint64
	// Maximum number of units transferred per scheduler event.
	Burst int

	// OnEnd is called with the level of a channel when its end interrupt
	// is raised.
	OnEnd cb.Optional[int]

	bus   *hwio.Bus
	sched *sched.Scheduler
	intr  cb.Required[hwdefs.IntSource]
}

func (d *DMA) Init(bus *hwio.Bus, sc *sched.Scheduler, intr cb.Required[hwdefs.IntSource]) {
	hwio.MustInitRegs(d)
	d.bus = bus
	d.sched = sc
	d.intr = intr
	if d.Burst <= 0 {
		d.Burst = DefaultDMABurst
	}

	for level := range d.Channels {
		ch := &d.Channels[level]
		hwio.MustInitRegs(ch)
		ch.dma = d
		ch.level = level
		ch.maxCount = 0x1000
		if level == 0 {
			ch.maxCount = 0x100000
		}
		sc.RegisterEventHandler(sched.DMAIntrEvent(level), func(_, _ uint64) {
			d.endInterrupt(level)
		})
	}
	sc.RegisterEventHandler(sched.EventSCUDMATransfer, d.transfer)
}

// MapRegs maps the DMA registers in the SCU register area starting at base.
func (d *DMA) MapRegs(regs *hwio.Bus, base uint32) {
	regs.MapBank(base, d, 0)
	for level := range d.Channels {
		regs.MapBank(base+uint32(level)*dmaChannelStride, &d.Channels[level], 0)
	}
}

func (d *DMA) Reset() {
	for level := range d.Channels {
		ch := &d.Channels[level]
		*ch = DMAChannel{
			DxR:      ch.DxR,
			DxW:      ch.DxW,
			DxC:      ch.DxC,
			DxAD:     ch.DxAD,
			DxEN:     ch.DxEN,
			DxMD:     ch.DxMD,
			dma:      ch.dma,
			level:    ch.level,
			maxCount: ch.maxCount,
		}
		ch.syncRegs()
	}
}

// Trigger starts the enabled channels waiting for t.
func (d *DMA) Trigger(t DMATrigger) {
	for level := range d.Channels {
		ch := &d.Channels[level]
		if ch.enabled && ch.trigger == t {
			d.start(ch)
		}
	}
}

func (d *DMA) start(ch *DMAChannel) {
	if ch.active || ch.triggered {
		return
	}
	ch.triggered = true
	log.ModDMA.DebugZ("transfer triggered").Int("level", ch.level).Stringer("trigger", ch.trigger).End()
	if !d.sched.IsPending(sched.EventSCUDMATransfer) {
		d.sched.Schedule(sched.EventSCUDMATransfer, 1, 0)
	}
}

// current returns the channel the next step works on: the active one if
// any, or the triggered channel with the lowest level.
func (d *DMA) current() *DMAChannel {
	var next *DMAChannel
	for level := range d.Channels {
		ch := &d.Channels[level]
		if ch.active {
			return ch
		}
		if ch.triggered && next == nil {
			next = ch
		}
	}
	return next
}

func (d *DMA) transfer(_, _ uint64) {
	for unit := range d.Burst {
		ch := d.current()
		if ch == nil {
			return
		}
		if !ch.active {
			ch.activate(d.bus)
		}
		if ch.step(d.bus) {
			d.complete(ch, uint64(unit)+1)
		}
	}
	if d.current() != nil {
		d.sched.Schedule(sched.EventSCUDMATransfer, uint64(d.Burst), 0)
	}
}

// complete handles the end of the current count, elapsed cycles after the
// start of the running burst.
func (d *DMA) complete(ch *DMAChannel, elapsed uint64) {
	if ch.indirect && !ch.endIndirect {
		ch.loadIndirect(d.bus)
		return
	}

	ch.active = false
	if ch.updateSrcAddr && !ch.indirect {
		ch.srcAddr = ch.currSrcAddr
	}
	if ch.updateDstAddr {
		if ch.indirect {
			ch.dstAddr = ch.currIndirectSrc
		} else {
			ch.dstAddr = ch.currDstAddr
		}
	}
	ch.syncRegs()

	log.ModDMA.DebugZ("transfer ended").
		Int("level", ch.level).
		Hex32("src", ch.currSrcAddr).
		Hex32("dst", ch.currDstAddr).
		End()
	d.sched.Schedule(sched.DMAIntrEvent(ch.level), elapsed+d.IntrDelay, 0)
}

func (d *DMA) endInterrupt(level int) {
	d.intr.Call(hwdefs.DMAEndInt(level))
	d.OnEnd.Call(level)
}

func (d *DMA) WriteDSTP(_, val uint32) {
	if !hwio.GetBit32(val, 0) {
		return
	}
	log.ModDMA.DebugZ("force stop").End()
	for level := range d.Channels {
		d.Channels[level].stop()
	}
	d.sched.Cancel(sched.EventSCUDMATransfer)
}

// ReadDSTA returns, for each level N, whether the channel is transferring
// (bit 4+4N) or waiting to start (bit 5+4N).
func (d *DMA) ReadDSTA(_ uint32) uint32 {
	var val uint32
	for level := range d.Channels {
		ch := &d.Channels[level]
		hwio.SetBit32To(&val, uint(4+4*level), ch.active)
		hwio.SetBit32To(&val, uint(5+4*level), ch.triggered)
	}
	return val
}

func (d *DMA) State() *snapshot.DMA {
	var st snapshot.DMA
	for level := range d.Channels {
		ch := &d.Channels[level]
		st.Channels[level] = snapshot.DMAChannel{
			SrcAddr:         ch.srcAddr,
			DstAddr:         ch.dstAddr,
			XferCount:       ch.xferCount,
			SrcAddrInc:      ch.srcAddrInc,
			DstAddrInc:      ch.dstAddrInc,
			UpdateSrcAddr:   ch.updateSrcAddr,
			UpdateDstAddr:   ch.updateDstAddr,
			Enabled:         ch.enabled,
			Indirect:        ch.indirect,
			Trigger:         uint8(ch.trigger),
			Triggered:       ch.triggered,
			Active:          ch.active,
			CurrSrcAddr:     ch.currSrcAddr,
			CurrDstAddr:     ch.currDstAddr,
			CurrXferCount:   ch.currXferCount,
			CurrSrcAddrInc:  ch.currSrcAddrInc,
			CurrDstAddrInc:  ch.currDstAddrInc,
			CurrIndirectSrc: ch.currIndirectSrc,
			EndIndirect:     ch.endIndirect,
			XferBuf:         ch.xferBuf,
			XferBufLen:      ch.xferBufLen,
		}
	}
	return &st
}

func validDstAddrInc(v uint32) bool {
	return v == 0 || (v != 1 && v <= 128 && hwio.IsPow2(v))
}

// ValidateDMAChannelState checks that every field of st holds a value the
// hardware can produce.
func ValidateDMAChannelState(level int, st *snapshot.DMAChannel) error {
	invalid := func(field string, val any) error {
		return fmt.Errorf("%w: dma level %d: %s = %v", snapshot.ErrInvalidState, level, field, val)
	}

	// TODO: levels 1 and 2 only have 12-bit counts (4 KiB), apply the level
	// 0 limit to them until the DxC masking is checked on hardware.
	if st.XferCount > maxDMAXferCount {
		return invalid("XferCount", st.XferCount)
	}
	if st.CurrXferCount > maxDMAXferCount {
		return invalid("CurrXferCount", st.CurrXferCount)
	}
	if st.SrcAddrInc != 0 && st.SrcAddrInc != 4 {
		return invalid("SrcAddrInc", st.SrcAddrInc)
	}
	if st.CurrSrcAddrInc != 0 && st.CurrSrcAddrInc != 4 {
		return invalid("CurrSrcAddrInc", st.CurrSrcAddrInc)
	}
	if !validDstAddrInc(st.DstAddrInc) {
		return invalid("DstAddrInc", st.DstAddrInc)
	}
	if !validDstAddrInc(st.CurrDstAddrInc) {
		return invalid("CurrDstAddrInc", st.CurrDstAddrInc)
	}
	if DMATrigger(st.Trigger) >= numDMATriggers {
		return invalid("Trigger", st.Trigger)
	}
	if st.XferBufLen > 8 {
		return invalid("XferBufLen", st.XferBufLen)
	}
	for _, f := range []struct {
		name string
		addr uint32
	}{
		{"SrcAddr", st.SrcAddr},
		{"DstAddr", st.DstAddr},
		{"CurrSrcAddr", st.CurrSrcAddr},
		{"CurrDstAddr", st.CurrDstAddr},
		{"CurrIndirectSrc", st.CurrIndirectSrc},
	} {
		if f.addr > hwio.AddressMask {
			return invalid(f.name, fmt.Sprintf("%08x", f.addr))
		}
	}
	if st.Active && st.Triggered {
		return invalid("Triggered", "set on an active channel")
	}
	if st.Active && st.CurrXferCount == 0 {
		return invalid("CurrXferCount", "0 on an active channel")
	}
	return nil
}

func ValidateDMAState(st *snapshot.DMA) error {
	for level := range st.Channels {
		if err := ValidateDMAChannelState(level, &st.Channels[level]); err != nil {
			return err
		}
	}
	return nil
}

// SetState loads st, after validating all of it: on error nothing changes.
func (d *DMA) SetState(st *snapshot.DMA) error {
	if err := ValidateDMAState(st); err != nil {
		return err
	}
	for level := range d.Channels {
		ch, s := &d.Channels[level], &st.Channels[level]
		ch.srcAddr = s.SrcAddr
		ch.dstAddr = s.DstAddr
		ch.xferCount = s.XferCount
		ch.srcAddrInc = s.SrcAddrInc
		ch.dstAddrInc = s.DstAddrInc
		ch.updateSrcAddr = s.UpdateSrcAddr
		ch.updateDstAddr = s.UpdateDstAddr
		ch.enabled = s.Enabled
		ch.indirect = s.Indirect
		ch.trigger = DMATrigger(s.Trigger)
		ch.triggered = s.Triggered
		ch.active = s.Active
		ch.currSrcAddr = s.CurrSrcAddr
		ch.currDstAddr = s.CurrDstAddr
		ch.currXferCount = s.CurrXferCount
		ch.currSrcAddrInc = s.CurrSrcAddrInc
		ch.currDstAddrInc = s.CurrDstAddrInc
		ch.currIndirectSrc = s.CurrIndirectSrc
		ch.endIndirect = s.EndIndirect
		ch.xferBuf = s.XferBuf
		ch.xferBufLen = s.XferBufLen
		ch.syncRegs()
	}
	return nil
}
