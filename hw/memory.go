package hw

import (
	"fmt"

	"saturn/hw/hwio"
	"saturn/hw/snapshot"
)

// Memory map
const (
	BIOSBase  = 0x00000000
	BIOSSize  = 512 * 1024
	biosEnd   = 0x00100000
	WRAMLBase = 0x00200000
	WRAMLSize = 1 << 20
	wramLEnd  = 0x00300000
	WRAMHBase = 0x06000000
	WRAMHSize = 1 << 20
	wramHEnd  = 0x08000000
)

// Memory holds the BIOS ROM and the two work RAM banks. BIOS is mirrored
// over 1MB, WRAM-H over 32MB.
type Memory struct {
	BIOS  []byte
	WRAML []byte
	WRAMH []byte
}

func (m *Memory) Init(bus *hwio.Bus) {
	m.BIOS = make([]byte, BIOSSize)
	m.WRAML = make([]byte, WRAMLSize)
	m.WRAMH = make([]byte, WRAMHSize)

	bus.MapMem(BIOSBase, &hwio.Mem{
		Name:  "bios",
		Data:  m.BIOS,
		VSize: biosEnd - BIOSBase,
		Flags: hwio.MemFlagReadOnly,
	})
	bus.MapMem(WRAMLBase, &hwio.Mem{
		Name:  "wram-l",
		Data:  m.WRAML,
		VSize: wramLEnd - WRAMLBase,
	})
	bus.MapMem(WRAMHBase, &hwio.Mem{
		Name:  "wram-h",
		Data:  m.WRAMH,
		VSize: wramHEnd - WRAMHBase,
	})
}

// LoadBIOS copies a BIOS image in ROM. img must be exactly BIOSSize bytes.
func (m *Memory) LoadBIOS(img []byte) error {
	if len(img) != BIOSSize {
		return fmt.Errorf("bios image is %d bytes, want %d", len(img), BIOSSize)
	}
	copy(m.BIOS, img)
	return nil
}

// Reset clears work RAM on a hard reset. It survives a soft reset.
func (m *Memory) Reset(soft bool) {
	if soft {
		return
	}
	clear(m.WRAML)
	clear(m.WRAMH)
}

func validateWRAMState(wramL, wramH []byte) error {
	if len(wramL) != WRAMLSize || len(wramH) != WRAMHSize {
		return fmt.Errorf("%w: work RAM sizes %d/%d, want %d/%d",
			snapshot.ErrInvalidState, len(wramL), len(wramH), WRAMLSize, WRAMHSize)
	}
	return nil
}
