package hw

import (
	"fmt"
	"strings"

	"saturn/emu/log"
	"saturn/hw/hwio"
	"saturn/hw/snapshot"
)

// A-bus cartridge area.
const (
	cartBase     = 0x02000000
	cartEnd      = 0x05000000
	cartDRAMBase = 0x02400000
	cartDRAMEnd  = 0x02800000
	cartBUPBase  = 0x04000000
	cartBUPEnd   = 0x04800000
	cartIDAddr   = 0x04FFFFFC // ID byte is at +3
)

type CartKind uint8

const (
	CartNone CartKind = iota
	CartDRAM8Mbit
	CartDRAM32Mbit
	CartBackupRAM

	numCartKinds
)

var cartKindNames = [numCartKinds]string{"none", "dram8", "dram32", "backup"}

func (k CartKind) String() string {
	if k < numCartKinds {
		return cartKindNames[k]
	}
	return fmt.Sprintf("CartKind(%d)", k)
}

func ParseCartKind(s string) (CartKind, error) {
	for k, name := range cartKindNames {
		if strings.EqualFold(s, name) {
			return CartKind(k), nil
		}
	}
	return CartNone, fmt.Errorf("unknown cartridge %q (valid: %s)", s, strings.Join(cartKindNames[:], ", "))
}

// Cartridge is what can be plugged in the cartridge slot.
type Cartridge interface {
	Kind() CartKind
	// ID is returned by the cartridge ID register.
	ID() uint8
	// RAM returns the cartridge memory, or nil.
	RAM() []byte
	// Map maps the cartridge memory on the A-bus.
	Map(bus *hwio.Bus)
}

type NoCartridge struct{}

func (NoCartridge) Kind() CartKind  { return CartNone }
func (NoCartridge) ID() uint8       { return 0xFF }
func (NoCartridge) RAM() []byte     { return nil }
func (NoCartridge) Map(_ *hwio.Bus) {}

// DRAMCartridge is the RAM expansion cartridge, 8Mbit or 32Mbit.
type DRAMCartridge struct {
	ram  []byte
	kind CartKind
}

func NewDRAMCartridge(kind CartKind) *DRAMCartridge {
	size := 1 << 20
	if kind == CartDRAM32Mbit {
		size = 4 << 20
	}
	return &DRAMCartridge{ram: make([]byte, size), kind: kind}
}

func (c *DRAMCartridge) Kind() CartKind { return c.kind }
func (c *DRAMCartridge) RAM() []byte    { return c.ram }

func (c *DRAMCartridge) ID() uint8 {
	if c.kind == CartDRAM32Mbit {
		return 0x5C
	}
	return 0x5A
}

func (c *DRAMCartridge) Map(bus *hwio.Bus) {
	bus.MapMem(cartDRAMBase, &hwio.Mem{
		Name:  "cart-dram",
		Data:  c.ram,
		VSize: cartDRAMEnd - cartDRAMBase,
	})
}

// BackupRAMCartridge is a 4Mbit battery backed RAM cartridge.
type BackupRAMCartridge struct {
	ram []byte
}

func NewBackupRAMCartridge() *BackupRAMCartridge {
	return &BackupRAMCartridge{ram: make([]byte, 512*1024)}
}

func (c *BackupRAMCartridge) Kind() CartKind { return CartBackupRAM }
func (c *BackupRAMCartridge) ID() uint8      { return 0x21 }
func (c *BackupRAMCartridge) RAM() []byte    { return c.ram }

func (c *BackupRAMCartridge) Map(bus *hwio.Bus) {
	bus.MapMem(cartBUPBase, &hwio.Mem{
		Name:  "cart-backup",
		Data:  c.ram,
		VSize: cartBUPEnd - cartBUPBase,
	})
}

func NewCartridge(kind CartKind) (Cartridge, error) {
	switch kind {
	case CartNone:
		return NoCartridge{}, nil
	case CartDRAM8Mbit, CartDRAM32Mbit:
		return NewDRAMCartridge(kind), nil
	case CartBackupRAM:
		return NewBackupRAMCartridge(), nil
	}
	return nil, fmt.Errorf("unknown cartridge kind %d", kind)
}

// CartridgeSlot holds the inserted cartridge. Swapping cartridges remaps
// the whole A-bus cartridge area.
type CartridgeSlot struct {
	bus  *hwio.Bus
	cart Cartridge
}

func (s *CartridgeSlot) Init(bus *hwio.Bus) {
	s.bus = bus
	s.Insert(NoCartridge{})
}

func (s *CartridgeSlot) Cartridge() Cartridge { return s.cart }

// Insert replaces the current cartridge with c.
func (s *CartridgeSlot) Insert(c Cartridge) {
	s.bus.Unmap(cartBase, cartEnd)
	s.cart = c
	c.Map(s.bus)
	if c.Kind() != CartNone {
		s.bus.MapHandlers(cartIDAddr, cartIDAddr+4, &hwio.Device{
			Name: "cart-id",
			Read8Cb: func(addr uint32) uint8 {
				if addr&3 == 3 {
					return c.ID()
				}
				return 0xFF
			},
		})
	}
	log.ModCart.DebugZ("cartridge inserted").Stringer("kind", c.Kind()).End()
}

func (s *CartridgeSlot) Eject() { s.Insert(NoCartridge{}) }

func (s *CartridgeSlot) State() snapshot.Cartridge {
	st := snapshot.Cartridge{Kind: uint8(s.cart.Kind())}
	if ram := s.cart.RAM(); ram != nil {
		st.RAM = append([]byte(nil), ram...)
	}
	return st
}

func (s *CartridgeSlot) ValidateState(st *snapshot.Cartridge) error {
	if CartKind(st.Kind) != s.cart.Kind() {
		return fmt.Errorf("%w: cartridge %s in save state, %s inserted",
			snapshot.ErrInvalidState, CartKind(st.Kind), s.cart.Kind())
	}
	if len(st.RAM) != len(s.cart.RAM()) {
		return fmt.Errorf("%w: cartridge RAM is %d bytes, want %d",
			snapshot.ErrInvalidState, len(st.RAM), len(s.cart.RAM()))
	}
	return nil
}

func (s *CartridgeSlot) SetState(st *snapshot.Cartridge) error {
	if err := s.ValidateState(st); err != nil {
		return err
	}
	copy(s.cart.RAM(), st.RAM)
	return nil
}
