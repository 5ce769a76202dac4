package hwdefs

import (
	"strings"
)

// IntSource is an interrupt source of the SCU. Its value is the bit index in
// the SCU interrupt mask and status registers.
type IntSource uint8

const (
	IntVBlankIn IntSource = iota
	IntVBlankOut
	IntHBlankIn
	IntTimer0
	IntTimer1
	IntDSPEnd
	IntSoundRequest
	IntSystemManager
	IntPad
	IntLevel2DMAEnd
	IntLevel1DMAEnd
	IntLevel0DMAEnd
	IntDMAIllegal
	IntSpriteDrawEnd

	NumIntSources = 14
)

var intSrcNames = [NumIntSources]string{
	"vblank-in",
	"vblank-out",
	"hblank-in",
	"timer0",
	"timer1",
	"dsp-end",
	"sound-req",
	"smpc",
	"pad",
	"dma2-end",
	"dma1-end",
	"dma0-end",
	"dma-illegal",
	"sprite-end",
}

// CPU interrupt level of each source.
var intSrcLevels = [NumIntSources]uint8{
	0xF, 0xE, 0xD, 0xC, 0xB, 0xA, 0x9, 0x8, 0x8, 0x6, 0x6, 0x5, 0x3, 0x2,
}

func (src IntSource) Mask() uint32  { return 1 << src }
func (src IntSource) Level() uint8  { return intSrcLevels[src] }
func (src IntSource) Vector() uint8 { return 0x40 + uint8(src) }

func (src IntSource) String() string {
	if src < NumIntSources {
		return intSrcNames[src]
	}
	return "unknown"
}

// DMAEndInt returns the end-of-transfer interrupt of a DMA level.
func DMAEndInt(level int) IntSource {
	return IntLevel0DMAEnd - IntSource(level)
}

// IntMask is a set of interrupt sources, laid out as the SCU IST register.
type IntMask uint32

func (m IntMask) String() string {
	var names []string
	for i := range NumIntSources {
		if m&(1<<i) != 0 {
			names = append(names, intSrcNames[i])
		}
	}
	return strings.Join(names, "|")
}

const (
	SoftReset = true
	HardReset = false
)

type VideoStandard uint8

const (
	NTSC VideoStandard = iota
	PAL
)

func (vs VideoStandard) String() string {
	if vs == PAL {
		return "pal"
	}
	return "ntsc"
}

func ParseVideoStandard(s string) (VideoStandard, bool) {
	switch strings.ToLower(s) {
	case "ntsc", "":
		return NTSC, true
	case "pal":
		return PAL, true
	}
	return NTSC, false
}
