package hwio

// 32-bit operations

func GetBit32(v uint32, n uint) bool {
	return GetBiti32(v, n) != 0
}

func GetBiti32(v uint32, n uint) uint32 {
	return v >> n & 0x01
}

// GetBits32 returns the count bits of v starting at bit n.
func GetBits32(v uint32, n, count uint) uint32 {
	return v >> n & (1<<count - 1)
}

func SetBit32(v *uint32, n uint) {
	*v |= 1 << n
}

func ClearBit32(v *uint32, n uint) {
	*v &^= 1 << n
}

func SetBit32To(v *uint32, n uint, b bool) {
	if b {
		SetBit32(v, n)
	} else {
		ClearBit32(v, n)
	}
}

// IsPow2 reports whether v is a power of two. Zero is not.
func IsPow2(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}
