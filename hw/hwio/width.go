package hwio

// Width is the set of valid bus access widths. It's deliberately closed: the
// bus has 8, 16 and 32-bit handlers and nothing else.
type Width interface {
	uint8 | uint16 | uint32
}

// BankIO is implemented by everything that can be mapped on a Bus.
type BankIO interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, val uint8)
	Write16(addr uint32, val uint16)
	Write32(addr uint32, val uint32)
}

// Size returns the size in bytes of T.
func Size[T Width]() uint32 {
	var v T
	switch any(v).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	}
	return 4
}

// OpenBus returns the value read from an address nothing responds to.
func OpenBus[T Width]() T {
	return ^T(0)
}

// Read performs a read of width T.
func Read[T Width](b BankIO, addr uint32) T {
	var v T
	switch any(v).(type) {
	case uint8:
		return T(b.Read8(addr))
	case uint16:
		return T(b.Read16(addr))
	}
	return T(b.Read32(addr))
}

// Write performs a write of width T.
func Write[T Width](b BankIO, addr uint32, val T) {
	switch v := any(val).(type) {
	case uint8:
		b.Write8(addr, v)
	case uint16:
		b.Write16(addr, v)
	case uint32:
		b.Write32(addr, v)
	}
}
