package hwio

import (
	"fmt"

	"saturn/emu/log"
)

type RWFlags uint8

const (
	ReadWriteFlag RWFlags = 0
	ReadOnlyFlag  RWFlags = (1 << iota)
	WriteOnlyFlag
)

// Reg32 is a 32-bit memory-mapped register. Narrower accesses read or modify
// the matching big-endian lane of the register.
type Reg32 struct {
	Name   string
	Value  uint32
	RoMask uint32 // bits set in RoMask are not modified by writes

	Flags   RWFlags
	ReadCb  func(val uint32) uint32
	WriteCb func(old uint32, val uint32)
}

func (reg Reg32) String() string {
	s := fmt.Sprintf("%s{%08x", reg.Name, reg.Value)
	if reg.ReadCb != nil {
		s += ",r!"
	}
	if reg.WriteCb != nil {
		s += ",w!"
	}
	return s + "}"
}

func (reg *Reg32) write(val, mask uint32) {
	old := reg.Value
	mask &^= reg.RoMask
	reg.Value = (reg.Value &^ mask) | (val & mask)
	if reg.WriteCb != nil {
		reg.WriteCb(old, reg.Value)
	}
}

func (reg *Reg32) read() uint32 {
	if reg.Flags&WriteOnlyFlag != 0 {
		log.ModHwIo.DebugZ("read from writeonly reg").String("name", reg.Name).End()
		return 0
	}
	if reg.ReadCb != nil {
		return reg.ReadCb(reg.Value)
	}
	return reg.Value
}

func (reg *Reg32) writable() bool {
	if reg.Flags&ReadOnlyFlag != 0 {
		log.ModHwIo.DebugZ("write to readonly reg").String("name", reg.Name).End()
		return false
	}
	return true
}

func (reg *Reg32) Read32(_ uint32) uint32 { return reg.read() }

func (reg *Reg32) Read16(addr uint32) uint16 {
	return uint16(reg.read() >> ((1 - (addr>>1)&1) * 16))
}

func (reg *Reg32) Read8(addr uint32) uint8 {
	return uint8(reg.read() >> ((3 - addr&3) * 8))
}

func (reg *Reg32) Write32(_ uint32, val uint32) {
	if reg.writable() {
		reg.write(val, 0xFFFFFFFF)
	}
}

func (reg *Reg32) Write16(addr uint32, val uint16) {
	if reg.writable() {
		shift := (1 - (addr>>1)&1) * 16
		reg.write(uint32(val)<<shift, 0xFFFF<<shift)
	}
}

func (reg *Reg32) Write8(addr uint32, val uint8) {
	if reg.writable() {
		shift := (3 - addr&3) * 8
		reg.write(uint32(val)<<shift, 0xFF<<shift)
	}
}
