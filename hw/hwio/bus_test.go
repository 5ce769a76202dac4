package hwio

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBusMemory(t *testing.T) {
	ram := make([]byte, 0x10000)
	b := NewBus("test")
	b.MapMemorySlice(0x200000, 0x300000, ram, false)

	b.Write32(0x200000, 0x11223344)
	b.Write16(0x200004, 0x5566)
	b.Write8(0x200006, 0x77)

	if diff := cmp.Diff([]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x00}, ram[:8]); diff != "" {
		t.Errorf("memory content mismatch (-want +got):\n%s", diff)
	}
	if got := b.Read16(0x200002); got != 0x3344 {
		t.Errorf("Read16 = %04x", got)
	}
	if got := b.Read8(0x200005); got != 0x66 {
		t.Errorf("Read8 = %02x", got)
	}

	// Unaligned accesses are aligned down.
	if got := b.Read32(0x200003); got != 0x11223344 {
		t.Errorf("unaligned Read32 = %08x", got)
	}
	if got := b.Read16(0x200001); got != 0x1122 {
		t.Errorf("unaligned Read16 = %04x", got)
	}
}

func TestBusMirroring(t *testing.T) {
	ram := make([]byte, 0x10000)
	b := NewBus("test")
	b.MapMemorySlice(0x200000, 0x300000, ram, false)

	b.Write8(0x20FFFF, 0xAB)
	for _, addr := range []uint32{0x21FFFF, 0x28FFFF, 0x2FFFFF} {
		if got := b.Read8(addr); got != 0xAB {
			t.Errorf("mirror %07x = %02x", addr, got)
		}
	}

	b.Write32(0x2F0010, 0xDEADBEEF)
	if got := b.Read32(0x200010); got != 0xDEADBEEF {
		t.Errorf("write through mirror = %08x", got)
	}

	// Addresses are masked to the physical address space.
	if got := b.Read32(0x08200010); got != 0xDEADBEEF {
		t.Errorf("masked address read = %08x", got)
	}
}

func TestBusOpenBus(t *testing.T) {
	b := NewBus("test")
	b.MapMemorySlice(0x1000, 0x2000, make([]byte, 0x1000), false)

	if got := b.Read8(0x5000000); got != 0xFF {
		t.Errorf("Read8 open bus = %02x", got)
	}
	if got := b.Read16(0x2000); got != 0xFFFF {
		t.Errorf("Read16 open bus = %04x", got)
	}
	if got := b.Read32(0xFFC); got != 0xFFFFFFFF {
		t.Errorf("Read32 open bus = %08x", got)
	}
	b.Write32(0x5000000, 0)
	if b.Mapped(0x5000000) {
		t.Errorf("unmapped address reported as mapped")
	}
	if !b.Mapped(0x1FFF) {
		t.Errorf("mapped address reported as unmapped")
	}
}

func TestBusReadOnly(t *testing.T) {
	rom := []byte{1, 2, 3, 4}
	b := NewBus("test")
	b.MapMemorySlice(0, 0x100, rom, true)

	b.Write32(0, 0)
	b.Write16(0x42, 0)
	b.Write8(0x81, 0)
	if diff := cmp.Diff([]byte{1, 2, 3, 4}, rom); diff != "" {
		t.Errorf("rom modified (-want +got):\n%s", diff)
	}
	if got := b.Read32(0xFC); got != 0x01020304 {
		t.Errorf("mirrored rom read = %08x", got)
	}
}

func TestBusDevice(t *testing.T) {
	var log []string
	regs := [4]uint8{0xA0, 0xA1, 0xA2, 0xA3}

	b := NewBus("test")
	b.MapHandlers(0x100, 0x104, &Device{
		Name:    "bytes",
		Read8Cb: func(addr uint32) uint8 { return regs[addr&3] },
		Write8Cb: func(addr uint32, val uint8) {
			regs[addr&3] = val
			log = append(log, "w8")
		},
	})
	b.MapHandlers(0x200, 0x204, &Device{
		Name:     "long",
		Read32Cb: func(addr uint32) uint32 { return 0x11223344 },
	})
	b.MapHandlers(0x300, 0x304, &Device{Name: "empty"})

	if got := b.Read32(0x100); got != 0xA0A1A2A3 {
		t.Errorf("composed Read32 = %08x", got)
	}
	if got := b.Read16(0x102); got != 0xA2A3 {
		t.Errorf("composed Read16 = %04x", got)
	}
	b.Write32(0x100, 0x01020304)
	if regs != [4]uint8{1, 2, 3, 4} || len(log) != 4 {
		t.Errorf("composed Write32: regs=%v writes=%d", regs, len(log))
	}

	if got := b.Read8(0x201); got != 0x22 {
		t.Errorf("extracted Read8 = %02x", got)
	}
	if got := b.Read16(0x202); got != 0x3344 {
		t.Errorf("extracted Read16 = %04x", got)
	}
	b.Write32(0x200, 0) // ignored

	if got := b.Read16(0x300); got != 0xFFFF {
		t.Errorf("empty device Read16 = %04x", got)
	}
}

func TestBusSubBus(t *testing.T) {
	var got []uint32
	sub := NewBus("sub")
	sub.MapHandlers(0x5FE0000, 0x5FE0100, &Device{
		Name:      "regs",
		Write32Cb: func(addr uint32, val uint32) { got = append(got, addr) },
	})

	b := NewBus("main")
	b.MapBus(0x5A00000, 0x6000000, sub)
	b.Write32(0x5FE0010, 1)
	b.Write32(0x5B00000, 1) // unmapped in sub

	if diff := cmp.Diff([]uint32{0x5FE0010}, got); diff != "" {
		t.Errorf("sub-bus addresses (-want +got):\n%s", diff)
	}
	if v := b.Read32(0x5B00000); v != 0xFFFFFFFF {
		t.Errorf("sub-bus open bus = %08x", v)
	}
}

func TestBusBank(t *testing.T) {
	var bank testBank
	MustInitRegs(&bank)

	b := NewBus("test")
	b.MapBank(0x5FE0000, &bank, 0)

	b.Write32(0x5FE0000, 0x1234)
	if bank.Ctrl.Value != 0x34 {
		t.Errorf("Ctrl = %08x", bank.Ctrl.Value)
	}
	bank.status = 7
	if got := b.Read8(0x5FE0007); got != 7 {
		t.Errorf("Status low byte = %02x", got)
	}
}

func TestBusOverlap(t *testing.T) {
	tests := []struct {
		name       string
		start, end uint32
	}{
		{"same", 0x1000, 0x2000},
		{"head", 0x800, 0x1001},
		{"tail", 0x1FFF, 0x3000},
		{"inside", 0x1800, 0x1900},
		{"around", 0x0, 0x4000},
		{"empty", 0x5000, 0x5000},
		{"too large", 0x7FFF000, 0x8000004},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBus("test")
			b.MapMemorySlice(0x1000, 0x2000, make([]byte, 0x1000), false)
			defer func() {
				if recover() == nil {
					t.Errorf("mapping [%x, %x) did not panic", tt.start, tt.end)
				}
			}()
			b.MapHandlers(tt.start, tt.end, &Device{Name: tt.name})
		})
	}
}

func TestBusAdjacent(t *testing.T) {
	b := NewBus("test")
	b.MapMemorySlice(0x1000, 0x2000, make([]byte, 0x1000), false)
	b.MapMemorySlice(0x2000, 0x3000, make([]byte, 0x1000), false)
	b.MapMemorySlice(0x0, 0x1000, make([]byte, 0x1000), false)

	b.Write8(0x1FFF, 1)
	b.Write8(0x2000, 2)
	b.Write8(0x0FFF, 3)
	if b.Read8(0x1FFF) != 1 || b.Read8(0x2000) != 2 || b.Read8(0xFFF) != 3 {
		t.Errorf("adjacent regions mixed up")
	}
}

func TestBusUnmap(t *testing.T) {
	b := NewBus("test")
	b.MapMemorySlice(0x2400000, 0x2800000, make([]byte, 0x100000), false)
	b.MapMemorySlice(0x2800000, 0x2C00000, make([]byte, 0x100000), false)
	b.Write8(0x2400000, 0x42)

	b.Unmap(0x2400000, 0x2800000)
	if b.Mapped(0x2400000) {
		t.Errorf("region still mapped")
	}
	if got := b.Read8(0x2400000); got != 0xFF {
		t.Errorf("unmapped read = %02x", got)
	}
	if !b.Mapped(0x2800000) {
		t.Errorf("neighbour region unmapped")
	}

	// The range can be reused.
	b.MapMemorySlice(0x2400000, 0x2800000, make([]byte, 0x1000), false)
	if got := b.Read8(0x2400000); got != 0 {
		t.Errorf("remapped read = %02x", got)
	}

	// Regions sharing a page with an unmapped one stay visible.
	b.MapMemorySlice(0x1000, 0x1100, make([]byte, 0x100), false)
	b.MapMemorySlice(0x1100, 0x1200, make([]byte, 0x100), false)
	b.Write8(0x1100, 0x24)
	b.Unmap(0x1000, 0x1100)
	if b.Mapped(0x1000) {
		t.Errorf("region sharing a page still mapped")
	}
	if got := b.Read8(0x1100); got != 0x24 {
		t.Errorf("read from the page neighbour = %02x, want 24", got)
	}

	b.Unmap(0x2400000, 0x2800000)
	if b.pages.Test(0x2400000>>PageShift) || b.pages.Test((0x2800000-1)>>PageShift) {
		t.Errorf("pages of an unmapped region still flagged")
	}
}

func TestBusGeneric(t *testing.T) {
	b := NewBus("test")
	b.MapMemorySlice(0, 0x100, make([]byte, 0x100), false)

	Write[uint16](b, 0x10, 0xBEEF)
	if got := Read[uint8](b, 0x11); got != 0xEF {
		t.Errorf("Read[uint8] = %02x", got)
	}
	Write[uint32](b, 0x20, 0xCAFEBABE)
	if got := Read[uint32](b, 0x20); got != 0xCAFEBABE {
		t.Errorf("Read[uint32] = %08x", got)
	}
	if Size[uint8]() != 1 || Size[uint16]() != 2 || Size[uint32]() != 4 {
		t.Errorf("wrong sizes")
	}
	if OpenBus[uint16]() != 0xFFFF {
		t.Errorf("wrong open bus value")
	}
}

func BenchmarkBusRead32(b *testing.B) {
	bus := NewBus("bench")
	bus.MapMemorySlice(0x200000, 0x300000, make([]byte, 0x100000), false)
	bus.MapMemorySlice(0x6000000, 0x8000000, make([]byte, 0x100000), false)
	bus.MapHandlers(0x5FE0000, 0x5FE0100, &Device{Name: "regs"})

	var addr uint32
	for b.Loop() {
		bus.Read32(0x6000000 + addr)
		bus.Read32(0x200000 + addr)
		addr = (addr + 4) & 0xFFFFF
	}
}
