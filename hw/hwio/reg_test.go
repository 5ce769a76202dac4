package hwio

import "testing"

func TestReg32(t *testing.T) {
	r := Reg32{Value: 0x11223344, RoMask: 0xFF0000F0}

	if got := r.Read32(0); got != 0x11223344 {
		t.Errorf("invalid read: %08x", got)
	}
	if got := r.Read16(0); got != 0x1122 {
		t.Errorf("invalid high lane read: %04x", got)
	}
	if got := r.Read16(2); got != 0x3344 {
		t.Errorf("invalid low lane read: %04x", got)
	}
	for i, want := range []uint8{0x11, 0x22, 0x33, 0x44} {
		if got := r.Read8(uint32(i)); got != want {
			t.Errorf("invalid read8 at %d: %02x, want %02x", i, got, want)
		}
	}

	r.Write32(0, 0xAABBCCDD)
	if r.Value != 0x11BBCC4D {
		t.Errorf("writemask not respected: %08x", r.Value)
	}
	r.Write16(2, 0x5566)
	if r.Value != 0x11BB5546 {
		t.Errorf("lane write not respected: %08x", r.Value)
	}
	r.Write8(1, 0x77)
	if r.Value != 0x11775546 {
		t.Errorf("byte write not respected: %08x", r.Value)
	}
}

func TestReg32Callbacks(t *testing.T) {
	var gotOld, gotVal uint32
	calls := 0
	r := Reg32{
		Value:   0x0000FFFF,
		ReadCb:  func(val uint32) uint32 { return val | 0x80000000 },
		WriteCb: func(old, val uint32) { gotOld, gotVal = old, val; calls++ },
	}

	if got := r.Read32(0); got != 0x8000FFFF {
		t.Errorf("read callback not called: %08x", got)
	}
	if got := r.Read8(0); got != 0x80 {
		t.Errorf("read callback not called on byte read: %02x", got)
	}

	r.Write16(0, 0x1234)
	if calls != 1 || gotOld != 0x0000FFFF || gotVal != 0x1234FFFF {
		t.Errorf("write callback: calls=%d old=%08x val=%08x", calls, gotOld, gotVal)
	}
}

func TestReg32Flags(t *testing.T) {
	ro := Reg32{Value: 4, Flags: ReadOnlyFlag}
	ro.Write32(0, 0xFFFFFFFF)
	ro.Write8(3, 0xFF)
	if ro.Value != 4 {
		t.Errorf("readonly register modified: %08x", ro.Value)
	}

	wo := Reg32{Value: 0xCAFE, Flags: WriteOnlyFlag}
	if got := wo.Read32(0); got != 0 {
		t.Errorf("writeonly register read as %08x", got)
	}
	wo.Write32(0, 0xBEEF)
	if wo.Value != 0xBEEF {
		t.Errorf("writeonly register not written: %08x", wo.Value)
	}
}
