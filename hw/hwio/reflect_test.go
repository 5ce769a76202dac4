package hwio

import (
	"strings"
	"testing"
)

type testBank struct {
	Ctrl   Reg32 `hwio:"offset=0x0,reset=0x12,rwmask=0xFF,wcb"`
	Status Reg32 `hwio:"offset=0x4,readonly,rcb"`
	Data   Reg32 `hwio:"offset=0x8,writeonly"`
	Alt    Reg32 `hwio:"bank=1,offset=0x0,wcb=WriteOther"`
	Hidden Reg32 `hwio:"reset=0x99"`

	ctrlWrites []uint32
	status     uint32
	other      int
}

func (b *testBank) WriteCTRL(old, val uint32)    { b.ctrlWrites = append(b.ctrlWrites, val) }
func (b *testBank) ReadSTATUS(val uint32) uint32 { return b.status }
func (b *testBank) WriteOther(old, val uint32)   { b.other++ }

func TestInitRegs(t *testing.T) {
	var b testBank
	if err := InitRegs(&b); err != nil {
		t.Fatal(err)
	}

	if b.Ctrl.Value != 0x12 || b.Ctrl.RoMask != 0xFFFFFF00 || b.Ctrl.WriteCb == nil {
		t.Errorf("Ctrl = %v, romask=%08x", b.Ctrl, b.Ctrl.RoMask)
	}
	if b.Status.Flags != ReadOnlyFlag || b.Status.ReadCb == nil {
		t.Errorf("Status = %v, flags=%d", b.Status, b.Status.Flags)
	}
	if b.Data.Flags != WriteOnlyFlag {
		t.Errorf("Data flags = %d", b.Data.Flags)
	}
	if b.Hidden.Value != 0x99 || b.Hidden.Name != "Hidden" {
		t.Errorf("Hidden = %v", b.Hidden)
	}

	b.Ctrl.Write32(0, 0xABCD)
	if len(b.ctrlWrites) != 1 || b.ctrlWrites[0] != 0xCD {
		t.Errorf("ctrl writes = %x", b.ctrlWrites)
	}
	b.status = 0x55
	if got := b.Status.Read32(0); got != 0x55 {
		t.Errorf("status read = %x", got)
	}
	b.Alt.Write8(3, 1)
	if b.other != 1 {
		t.Errorf("named write callback not bound")
	}
}

func TestInitRegsErrors(t *testing.T) {
	tests := []struct {
		name string
		bank any
		want string
	}{
		{"not a pointer", testBank{}, "expected pointer to struct"},
		{"unknown option", &struct {
			R Reg32 `hwio:"offest=4"`
		}{}, "unknown hwio tag option"},
		{"bad reset", &struct {
			R Reg32 `hwio:"reset=zz"`
		}{}, "invalid reset"},
		{"missing callback", &struct {
			R Reg32 `hwio:"wcb"`
		}{}, "missing write callback WriteR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitRegs(tt.bank)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("InitRegs() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestBankGetRegs(t *testing.T) {
	var b testBank
	MustInitRegs(&b)

	regs, err := bankGetRegs(&b, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := map[uint32]*Reg32{0: &b.Ctrl, 4: &b.Status, 8: &b.Data}
	if len(regs) != len(want) {
		t.Fatalf("got %d registers, want %d", len(regs), len(want))
	}
	for _, r := range regs {
		if want[r.offset] != r.reg {
			t.Errorf("offset %d: got %s", r.offset, r.reg.Name)
		}
	}

	regs, err = bankGetRegs(&b, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(regs) != 1 || regs[0].reg != &b.Alt {
		t.Errorf("bank 1 = %v", regs)
	}

	if _, err := bankGetRegs(&b, 2); err == nil {
		t.Errorf("empty bank should fail")
	}
}
