package hw

import (
	"saturn/emu/log"
	"saturn/hw/hwdefs"
	"saturn/hw/hwio"
	"saturn/hw/sched"
)

// T1MD bits
const (
	timerEnable    = 0 // timers count
	timer1LineMode = 8 // timer 1 only fires on the timer 0 compare line
)

func (scu *SCU) timersEnabled() bool {
	return hwio.GetBit32(scu.T1MD.Value, timerEnable)
}

// Timer0 returns the timer 0 counter: the number of HBlank-IN since the last
// VBlank-OUT.
func (scu *SCU) Timer0() uint32 { return scu.timer0 }

// tickTimer0 compares timer 0 against T0C then increments it.
func (scu *SCU) tickTimer0() {
	match := scu.timer0 == scu.T0C.Value
	scu.timer0++
	if !match || !scu.timersEnabled() {
		return
	}
	log.ModSCU.DebugZ("timer 0 match").Uint("line", uint(scu.T0C.Value)).End()
	scu.RaiseInterrupt(hwdefs.IntTimer0)
	scu.DMA.Trigger(DMATimer0)
}

// startTimer1 arms timer 1 at the start of a line. It fires T1S cycles later.
func (scu *SCU) startTimer1() {
	if !scu.timersEnabled() {
		scu.sched.Cancel(sched.EventSCUTimer1)
		return
	}
	scu.sched.Schedule(sched.EventSCUTimer1, uint64(scu.T1S.Value), 0)
}

func (scu *SCU) fireTimer1(_, _ uint64) {
	if !scu.timersEnabled() {
		return
	}
	if hwio.GetBit32(scu.T1MD.Value, timer1LineMode) && scu.timer0 != scu.T0C.Value {
		return
	}
	scu.RaiseInterrupt(hwdefs.IntTimer1)
	scu.DMA.Trigger(DMATimer1)
}
