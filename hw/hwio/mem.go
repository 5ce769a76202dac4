package hwio

import (
	"encoding/binary"
	"fmt"
)

// mem is the BankIO adaptor for linear memory. The backing buffer is not
// owned: whoever mapped it keeps it alive for as long as the mapping exists.
//
// The buffer size is a power of two, so mirroring a small buffer across a
// larger range is just a matter of masking the offset.
type mem struct {
	buf  []byte
	base uint32
	mask uint32
	ro   bool
}

func newMem(base uint32, buf []byte, flags MemFlags) *mem {
	if len(buf) < 4 || len(buf)&(len(buf)-1) != 0 {
		panic(fmt.Sprintf("memory buffer size is not a power of two >= 4: %d", len(buf)))
	}
	return &mem{
		buf:  buf,
		base: base,
		mask: uint32(len(buf) - 1),
		ro:   flags&MemFlagReadOnly != 0,
	}
}

// offset returns the buffer offset of addr, aligned down to size.
func (m *mem) offset(addr, size uint32) uint32 {
	return (addr - m.base) & m.mask &^ (size - 1)
}

func (m *mem) Read8(addr uint32) uint8 {
	return m.buf[m.offset(addr, 1)]
}

func (m *mem) Read16(addr uint32) uint16 {
	return binary.BigEndian.Uint16(m.buf[m.offset(addr, 2):])
}

func (m *mem) Read32(addr uint32) uint32 {
	return binary.BigEndian.Uint32(m.buf[m.offset(addr, 4):])
}

// Writes to read-only memory are silently dropped, like the hardware does.

func (m *mem) Write8(addr uint32, val uint8) {
	if !m.ro {
		m.buf[m.offset(addr, 1)] = val
	}
}

func (m *mem) Write16(addr uint32, val uint16) {
	if !m.ro {
		binary.BigEndian.PutUint16(m.buf[m.offset(addr, 2):], val)
	}
}

func (m *mem) Write32(addr uint32, val uint32) {
	if !m.ro {
		binary.BigEndian.PutUint32(m.buf[m.offset(addr, 4):], val)
	}
}

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlagReadOnly  MemFlags = 1 << iota // writes are ignored
)

// Mem is a linear memory area that can be mapped on a Bus.
type Mem struct {
	Name  string   // name of the memory area (for debugging)
	Data  []byte   // actual memory buffer, size must be a power of 2
	VSize int      // virtual size of the memory (can be bigger than physical size)
	Flags MemFlags // flags determining how the memory can be accessed
}

// BankIO returns the adaptor serving accesses to m once mapped at base.
func (m *Mem) BankIO(base uint32) BankIO {
	return newMem(base, m.Data, m.Flags)
}
