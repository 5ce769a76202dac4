package hw

import (
	"errors"
	"testing"

	"saturn/hw/snapshot"
)

func TestParseCartKind(t *testing.T) {
	tests := []struct {
		in      string
		want    CartKind
		wantErr bool
	}{
		{"none", CartNone, false},
		{"dram8", CartDRAM8Mbit, false},
		{"DRAM32", CartDRAM32Mbit, false},
		{"backup", CartBackupRAM, false},
		{"rom", CartNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCartKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCartKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCartKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := NewCartridge(numCartKinds); err == nil {
		t.Errorf("NewCartridge accepted an unknown kind")
	}
}

func TestCartridgeID(t *testing.T) {
	tests := []struct {
		kind CartKind
		id   uint8
	}{
		{CartNone, 0xFF},
		{CartDRAM8Mbit, 0x5A},
		{CartDRAM32Mbit, 0x5C},
		{CartBackupRAM, 0x21},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Cartridge = tt.kind
			s := newTestSaturn(t, cfg)
			if got := s.Bus.Read8(cartIDAddr + 3); got != tt.id {
				t.Errorf("cartridge ID = %02x, want %02x", got, tt.id)
			}
			if got := s.Cart.Cartridge().Kind(); got != tt.kind {
				t.Errorf("inserted cartridge = %v", got)
			}
		})
	}
}

func TestCartridgeDRAM(t *testing.T) {
	s := newTestSaturn(t, DefaultConfig())
	if s.Bus.Mapped(cartDRAMBase) {
		t.Fatalf("DRAM area mapped without a cartridge")
	}

	s.Cart.Insert(NewDRAMCartridge(CartDRAM8Mbit))
	s.Bus.Write32(cartDRAMBase+0x10, 0xDEADBEEF)
	if got := s.Bus.Read32(cartDRAMBase + 0x10); got != 0xDEADBEEF {
		t.Errorf("cartridge RAM = %08x", got)
	}
	// 8Mbit is mirrored over the 4MB area.
	if got := s.Bus.Read32(cartDRAMBase + 3<<20 + 0x10); got != 0xDEADBEEF {
		t.Errorf("cartridge RAM mirror = %08x", got)
	}
	if got := s.Cart.Cartridge().RAM()[0x10]; got != 0xDE {
		t.Errorf("RAM()[0x10] = %02x", got)
	}
}

func TestCartridgeSwap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cartridge = CartDRAM32Mbit
	s := newTestSaturn(t, cfg)

	s.Cart.Insert(NewBackupRAMCartridge())
	if got := s.Bus.Read32(cartDRAMBase); got != 0xFFFFFFFF {
		t.Errorf("DRAM area after swap = %08x, want open bus", got)
	}
	s.Bus.Write8(cartBUPBase+1, 0x42)
	if got := s.Bus.Read8(cartBUPBase + 512*1024 + 1); got != 0x42 {
		t.Errorf("backup RAM mirror = %02x", got)
	}
	if got := s.Bus.Read8(cartIDAddr + 3); got != 0x21 {
		t.Errorf("cartridge ID = %02x", got)
	}

	s.Cart.Eject()
	for _, addr := range []uint32{cartDRAMBase, cartBUPBase, cartIDAddr} {
		if s.Bus.Mapped(addr) {
			t.Errorf("%08x still mapped after eject", addr)
		}
	}
	if got := s.Cart.Cartridge().Kind(); got != CartNone {
		t.Errorf("inserted cartridge after eject = %v", got)
	}
}

func TestCartridgeState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cartridge = CartBackupRAM
	s1 := newTestSaturn(t, cfg)
	s1.Bus.Write8(cartBUPBase, 0x99)

	st := s1.Cart.State()
	if CartKind(st.Kind) != CartBackupRAM || len(st.RAM) != 512*1024 {
		t.Fatalf("State() = kind %d, %d bytes", st.Kind, len(st.RAM))
	}

	s2 := newTestSaturn(t, cfg)
	if err := s2.Cart.SetState(&st); err != nil {
		t.Fatal(err)
	}
	if got := s2.Bus.Read8(cartBUPBase); got != 0x99 {
		t.Errorf("restored backup RAM = %02x", got)
	}

	s3 := newTestSaturn(t, DefaultConfig())
	if err := s3.Cart.SetState(&st); !errors.Is(err, snapshot.ErrInvalidState) {
		t.Errorf("SetState() with another cartridge: error = %v", err)
	}
}
