package hwio

import "fmt"

const (
	NumBits  = 0x10000            // one bit per bus page
	wordSize = 64                 // using 64-bit words
	numWords = NumBits / wordSize // 1024 words exactly

	// PageShift converts a bus address into a page index: the 27-bit
	// address space is split in 64K pages of 2KB.
	PageShift = AddressBits - 16
)

// Bitset is a 64Kbit set. Zero value is an empty set (all bits cleared).
type Bitset struct {
	words [numWords]uint64
}

// Test returns true if the bit at index i is set.
func (b *Bitset) Test(i uint) bool {
	return b.words[i/wordSize]&(1<<(i%wordSize)) != 0
}

// SetRange sets all bits in the half-open interval [start, end).
// It panics if start >= end or end > NumBits.
func (b *Bitset) SetRange(start, end uint) {
	b.applyRange(start, end, true)
}

// ClearRange clears all bits in the half-open interval [start, end).
// It panics if start >= end or end > NumBits.
func (b *Bitset) ClearRange(start, end uint) {
	b.applyRange(start, end, false)
}

func (b *Bitset) applyRange(start, end uint, set bool) {
	if start >= end || end > NumBits {
		panic(fmt.Sprintf("invalid range [%d, %d)", start, end))
	}

	apply := func(i uint, mask uint64) {
		if set {
			b.words[i] |= mask
		} else {
			b.words[i] &^= mask
		}
	}

	first, last := start/wordSize, (end-1)/wordSize
	lo := ^uint64(0) << (start % wordSize)
	hi := ^uint64(0) >> (wordSize - 1 - (end-1)%wordSize)

	if first == last {
		apply(first, lo&hi)
		return
	}
	apply(first, lo)
	for i := first + 1; i < last; i++ {
		apply(i, ^uint64(0))
	}
	apply(last, hi)
}

// Reset clears all bits in the Bitset.
func (b *Bitset) Reset() {
	clear(b.words[:])
}
