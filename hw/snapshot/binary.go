package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

var magic = [8]byte{'S', 'A', 'T', 'S', 'T', 'A', 'T', 'E'}

var order = binary.LittleEndian

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) fixed(v any) {
	if e.err == nil {
		e.err = binary.Write(e.w, order, v)
	}
}

func (e *encoder) blob(b []byte) {
	e.fixed(uint32(len(b)))
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

type decoder struct {
	r   *bytes.Reader
	err error
}

func (d *decoder) fixed(v any) {
	if d.err == nil {
		d.err = binary.Read(d.r, order, v)
	}
}

func (d *decoder) blob() []byte {
	var n uint32
	d.fixed(&n)
	if d.err != nil {
		return nil
	}
	if int64(n) > int64(d.r.Len()) {
		d.err = fmt.Errorf("%w: blob of %d bytes, %d left", ErrInvalidState, n, d.r.Len())
		return nil
	}
	b := make([]byte, n)
	_, d.err = io.ReadFull(d.r, b)
	return b
}

func (s *Scheduler) encode(e *encoder) {
	e.fixed(s.Cycle)
	e.fixed(uint32(len(s.Events)))
	for _, ev := range s.Events {
		e.fixed(ev.ID)
		e.fixed(ev.Target)
	}
}

func (s *Scheduler) decode(d *decoder) {
	var n uint32
	d.fixed(&s.Cycle)
	d.fixed(&n)
	if d.err != nil {
		return
	}
	// 9 bytes per event.
	if int64(n)*9 > int64(d.r.Len()) {
		d.err = fmt.Errorf("%w: %d scheduler events, %d bytes left", ErrInvalidState, n, d.r.Len())
		return
	}
	s.Events = make([]Event, n)
	for i := range s.Events {
		d.fixed(&s.Events[i].ID)
		d.fixed(&s.Events[i].Target)
	}
}

// MarshalBinary encodes the scheduler section alone: cycle (u64), event
// count (u32), then for each event its ID (u8) and target cycle (u64).
func (s *Scheduler) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	e := encoder{w: &buf}
	s.encode(&e)
	return buf.Bytes(), e.err
}

func (s *Scheduler) UnmarshalBinary(data []byte) error {
	d := decoder{r: bytes.NewReader(data)}
	s.decode(&d)
	return d.err
}

// MarshalBinary encodes the whole machine state, prefixed by a magic string
// and the container version.
func (s *System) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	e := encoder{w: &buf}
	e.fixed(magic)
	e.fixed(s.Version)
	s.Sched.encode(&e)
	e.fixed(&s.SCU)
	e.fixed(&s.DMA)
	e.fixed(&s.Video)
	e.blob(s.WRAML)
	e.blob(s.WRAMH)
	e.fixed(s.Cart.Kind)
	e.blob(s.Cart.RAM)
	return buf.Bytes(), e.err
}

func (s *System) UnmarshalBinary(data []byte) error {
	d := decoder{r: bytes.NewReader(data)}

	var m [8]byte
	d.fixed(&m)
	if d.err != nil || m != magic {
		return ErrBadMagic
	}
	d.fixed(&s.Version)
	if d.err == nil && s.Version != Version {
		return fmt.Errorf("%w: %d", ErrVersion, s.Version)
	}

	s.Sched.decode(&d)
	d.fixed(&s.SCU)
	d.fixed(&s.DMA)
	d.fixed(&s.Video)
	s.WRAML = d.blob()
	s.WRAMH = d.blob()
	d.fixed(&s.Cart.Kind)
	s.Cart.RAM = d.blob()

	if d.err != nil {
		return fmt.Errorf("decoding save state: %w", d.err)
	}
	if d.r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidState, d.r.Len())
	}
	return nil
}
