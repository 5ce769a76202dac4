package hwio

import (
	"fmt"
	"sort"

	"saturn/emu/log"
)

const (
	AddressBits  = 27
	AddressSpace = 1 << AddressBits // size of the physical address space
	AddressMask  = AddressSpace - 1
)

type region struct {
	start, end uint32 // [start, end)
	name       string
	io         BankIO
}

// Bus dispatches memory accesses to the devices mapped in a 27-bit physical
// address space. Regions never overlap. Reads of unmapped addresses return
// all ones (open bus) and writes to them are discarded.
//
// A Bus is also a BankIO so it can be mapped in another Bus, which then
// delegates a whole range to it.
//
// Bus is not safe for concurrent use.
type Bus struct {
	Name string

	regions []region // sorted by start address
	pages   Bitset   // pages containing at least one mapped byte
	last    *region  // last region hit
}

func NewBus(name string) *Bus {
	b := new(Bus)
	b.Name = name
	b.Reset()
	return b
}

// Reset unmaps everything.
func (b *Bus) Reset() {
	b.regions = nil
	b.pages.Reset()
	b.last = nil
}

func (b *Bus) insert(start, end uint32, name string, io BankIO) {
	if start >= end || end > AddressSpace {
		panic(fmt.Errorf("bus %s: invalid range [%07x, %07x) for %s", b.Name, start, end, name))
	}

	i := sort.Search(len(b.regions), func(i int) bool { return b.regions[i].end > start })
	if i < len(b.regions) && b.regions[i].start < end {
		r := b.regions[i]
		panic(fmt.Errorf("bus %s: %s [%07x, %07x) overlaps %s [%07x, %07x)",
			b.Name, name, start, end, r.name, r.start, r.end))
	}

	b.regions = append(b.regions, region{})
	copy(b.regions[i+1:], b.regions[i:])
	b.regions[i] = region{start: start, end: end, name: name, io: io}
	b.last = nil

	b.pages.SetRange(pageRange(start, end))

	log.ModHwIo.DebugZ("mapped region").
		String("bus", b.Name).
		String("name", name).
		Hex32("start", start).
		Hex32("end", end).
		End()
}

// MapMemorySlice maps buf on [start, end). buf is mirrored if it's smaller
// than the range. Writes are ignored when readonly is set.
func (b *Bus) MapMemorySlice(start, end uint32, buf []byte, readonly bool) {
	var flags MemFlags
	if readonly {
		flags |= MemFlagReadOnly
	}
	b.MapMem(start, &Mem{
		Data:  buf,
		Flags: flags,
		VSize: int(end - start),
	})
}

// MapMem maps a memory area at addr, over mem.VSize bytes.
func (b *Bus) MapMem(addr uint32, mem *Mem) {
	b.insert(addr, addr+uint32(mem.VSize), mem.Name, mem.BankIO(addr))
}

// MapHandlers maps a device on [start, end). Missing callbacks of dev are
// derived from the ones it has, see Device.
func (b *Bus) MapHandlers(start, end uint32, dev *Device) {
	b.insert(start, end, dev.Name, dev.complete())
}

// MapBus delegates [start, end) to another bus. Addresses are forwarded
// unchanged.
func (b *Bus) MapBus(start, end uint32, sub *Bus) {
	b.insert(start, end, sub.Name, sub)
}

// MapReg32 maps a single register on 4 bytes at addr.
func (b *Bus) MapReg32(addr uint32, reg *Reg32) {
	b.insert(addr, addr+4, reg.Name, reg)
}

// MapBank maps a register bank (that is, a structure containing multiple
// Reg32 fields) at addr. Registers must have an "hwio" struct tag with the
// following options, besides the ones described in InitRegs:
//
//	offset=0x12     Byte-offset within the register bank at which this
//	                register is mapped. There is no default value: if this
//	                option is missing, the register is assumed not to be
//	                part of the bank, and is ignored by this call.
//
//	bank=NN         Ordinal bank number (if not specified, default to zero).
//	                This option allows for a structure to expose multiple
//	                banks, as regs can be grouped by bank by specified the
//	                bank number.
func (b *Bus) MapBank(addr uint32, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}
	for _, r := range regs {
		b.MapReg32(addr+r.offset, r.reg)
	}
}

// Unmap removes all regions entirely contained in [start, end).
func (b *Bus) Unmap(start, end uint32) {
	kept := b.regions[:0]
	for _, r := range b.regions {
		if r.start >= start && r.end <= end {
			log.ModHwIo.DebugZ("unmapped region").
				String("bus", b.Name).
				String("name", r.name).
				Hex32("start", r.start).
				Hex32("end", r.end).
				End()
			b.pages.ClearRange(pageRange(r.start, r.end))
			continue
		}
		kept = append(kept, r)
	}
	clear(b.regions[len(kept):])
	b.regions = kept
	b.last = nil

	// Pages shared with a removed region have been cleared too.
	first, last := pageRange(start, end)
	for _, r := range b.regions {
		if rfirst, rlast := pageRange(r.start, r.end); rfirst < last && rlast > first {
			b.pages.SetRange(rfirst, rlast)
		}
	}
}

// pageRange returns the half-open interval of pages covering [start, end).
func pageRange(start, end uint32) (uint, uint) {
	return uint(start >> PageShift), uint((end-1)>>PageShift) + 1
}

// Mapped reports whether something responds at addr.
func (b *Bus) Mapped(addr uint32) bool {
	return b.search(addr&AddressMask) != nil
}

func (b *Bus) search(addr uint32) BankIO {
	if r := b.last; r != nil && addr >= r.start && addr < r.end {
		return r.io
	}
	if !b.pages.Test(uint(addr >> PageShift)) {
		return nil
	}
	i := sort.Search(len(b.regions), func(i int) bool { return b.regions[i].end > addr })
	if i < len(b.regions) && b.regions[i].start <= addr {
		b.last = &b.regions[i]
		return b.last.io
	}
	return nil
}

func (b *Bus) Read8(addr uint32) uint8 {
	addr &= AddressMask
	if io := b.search(addr); io != nil {
		return io.Read8(addr)
	}
	return OpenBus[uint8]()
}

func (b *Bus) Read16(addr uint32) uint16 {
	addr &= AddressMask
	if io := b.search(addr); io != nil {
		return io.Read16(addr)
	}
	return OpenBus[uint16]()
}

func (b *Bus) Read32(addr uint32) uint32 {
	addr &= AddressMask
	if io := b.search(addr); io != nil {
		return io.Read32(addr)
	}
	return OpenBus[uint32]()
}

func (b *Bus) Write8(addr uint32, val uint8) {
	addr &= AddressMask
	if io := b.search(addr); io != nil {
		io.Write8(addr, val)
	}
}

func (b *Bus) Write16(addr uint32, val uint16) {
	addr &= AddressMask
	if io := b.search(addr); io != nil {
		io.Write16(addr, val)
	}
}

func (b *Bus) Write32(addr uint32, val uint32) {
	addr &= AddressMask
	if io := b.search(addr); io != nil {
		io.Write32(addr, val)
	}
}
