// Package snapshot holds the serializable state of the emulated machine.
//
// Every hardware component exposes State() and SetState() methods working on
// the structures of this package. SetState validates its input before
// touching anything, so a rejected snapshot leaves the component as it was.
package snapshot

import "errors"

// Version of the save state container. Bump it when the layout of any
// section changes.
const Version = 1

var (
	// ErrInvalidState is wrapped by every validation error.
	ErrInvalidState = errors.New("invalid state")
	ErrBadMagic     = errors.New("not a save state")
	ErrVersion      = errors.New("unsupported save state version")
)

type System struct {
	Version uint32
	Sched   Scheduler
	SCU     SCU
	DMA     DMA
	Video   Video
	WRAML   []byte
	WRAMH   []byte
	Cart    Cartridge
}

// Event is a pending scheduler event. User data isn't part of the snapshot:
// devices keep what they need in their own state.
type Event struct {
	ID     uint8
	Target uint64
}

type Scheduler struct {
	Cycle  uint64
	Events []Event // sorted by ID
}

// DMAChannel is saved field by field, in declaration order, each field with
// its fixed width (bools take one byte).
type DMAChannel struct {
	SrcAddr       uint32
	DstAddr       uint32
	XferCount     uint32
	SrcAddrInc    uint32
	DstAddrInc    uint32
	UpdateSrcAddr bool
	UpdateDstAddr bool
	Enabled       bool
	Indirect      bool
	Trigger       uint8

	Triggered       bool
	Active          bool
	CurrSrcAddr     uint32
	CurrDstAddr     uint32
	CurrXferCount   uint32
	CurrSrcAddrInc  uint32
	CurrDstAddrInc  uint32
	CurrIndirectSrc uint32
	EndIndirect     bool
	XferBuf         uint64
	XferBufLen      uint8
}

type DMA struct {
	Channels [3]DMAChannel
}

type SCU struct {
	IMS   uint32
	IST   uint32
	AIACK uint32

	T0C    uint32
	T1S    uint32
	T1MD   uint32
	Timer0 uint32
}

type Video struct {
	Standard uint8
	Line     uint32
	Phase    uint8
	Frame    uint64
}

type Cartridge struct {
	Kind uint8
	RAM  []byte
}
