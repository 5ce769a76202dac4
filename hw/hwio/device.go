package hwio

// Device is a BankIO implementation that lets a hardware component manage a
// whole range of addresses through callbacks, typically registers with side
// effects.
//
// Callbacks are optional when declaring a Device. When it's mapped, missing
// ones are derived from the others: narrower reads extract their lanes from a
// wider read, wider reads and writes are composed of narrower ones. What
// can't be derived reads as open bus or ignores the write. All accesses are
// big-endian.
type Device struct {
	Name string // name of the device (for debugging)

	Read8Cb  func(addr uint32) uint8
	Read16Cb func(addr uint32) uint16
	Read32Cb func(addr uint32) uint32

	Write8Cb  func(addr uint32, val uint8)
	Write16Cb func(addr uint32, val uint16)
	Write32Cb func(addr uint32, val uint32)
}

func (d *Device) Read8(addr uint32) uint8         { return d.Read8Cb(addr) }
func (d *Device) Read16(addr uint32) uint16       { return d.Read16Cb(addr) }
func (d *Device) Read32(addr uint32) uint32       { return d.Read32Cb(addr) }
func (d *Device) Write8(addr uint32, val uint8)   { d.Write8Cb(addr, val) }
func (d *Device) Write16(addr uint32, val uint16) { d.Write16Cb(addr, val) }
func (d *Device) Write32(addr uint32, val uint32) { d.Write32Cb(addr, val) }

// complete returns a copy of d in which every callback is set.
func (d *Device) complete() *Device {
	c := *d
	r8, r16, r32 := d.Read8Cb, d.Read16Cb, d.Read32Cb
	w8, w16, w32 := d.Write8Cb, d.Write16Cb, d.Write32Cb

	if r8 == nil {
		switch {
		case r16 != nil:
			c.Read8Cb = func(addr uint32) uint8 {
				v := r16(addr &^ 1)
				return uint8(v >> ((1 - addr&1) * 8))
			}
		case r32 != nil:
			c.Read8Cb = func(addr uint32) uint8 {
				v := r32(addr &^ 3)
				return uint8(v >> ((3 - addr&3) * 8))
			}
		default:
			c.Read8Cb = openbusRead8
		}
	}

	if r16 == nil {
		switch {
		case r32 != nil:
			c.Read16Cb = func(addr uint32) uint16 {
				v := r32(addr &^ 3)
				return uint16(v >> ((1 - (addr>>1)&1) * 16))
			}
		case r8 != nil:
			c.Read16Cb = func(addr uint32) uint16 {
				addr &^= 1
				return uint16(r8(addr))<<8 | uint16(r8(addr+1))
			}
		default:
			c.Read16Cb = openbusRead16
		}
	}

	if r32 == nil {
		switch {
		case r16 != nil:
			c.Read32Cb = func(addr uint32) uint32 {
				addr &^= 3
				return uint32(r16(addr))<<16 | uint32(r16(addr+2))
			}
		case r8 != nil:
			c.Read32Cb = func(addr uint32) uint32 {
				addr &^= 3
				return uint32(r8(addr))<<24 | uint32(r8(addr+1))<<16 |
					uint32(r8(addr+2))<<8 | uint32(r8(addr+3))
			}
		default:
			c.Read32Cb = openbusRead32
		}
	}

	if w8 == nil {
		c.Write8Cb = nopWrite8
	}

	if w16 == nil {
		if w8 != nil {
			c.Write16Cb = func(addr uint32, val uint16) {
				addr &^= 1
				w8(addr, uint8(val>>8))
				w8(addr+1, uint8(val))
			}
		} else {
			c.Write16Cb = nopWrite16
		}
	}

	if w32 == nil {
		switch {
		case w16 != nil:
			c.Write32Cb = func(addr uint32, val uint32) {
				addr &^= 3
				w16(addr, uint16(val>>16))
				w16(addr+2, uint16(val))
			}
		case w8 != nil:
			c.Write32Cb = func(addr uint32, val uint32) {
				addr &^= 3
				w8(addr, uint8(val>>24))
				w8(addr+1, uint8(val>>16))
				w8(addr+2, uint8(val>>8))
				w8(addr+3, uint8(val))
			}
		default:
			c.Write32Cb = nopWrite32
		}
	}
	return &c
}

func openbusRead8(_ uint32) uint8   { return OpenBus[uint8]() }
func openbusRead16(_ uint32) uint16 { return OpenBus[uint16]() }
func openbusRead32(_ uint32) uint32 { return OpenBus[uint32]() }
func nopWrite8(_ uint32, _ uint8)   {}
func nopWrite16(_ uint32, _ uint16) {}
func nopWrite32(_ uint32, _ uint32) {}
