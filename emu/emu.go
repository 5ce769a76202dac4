package emu

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"saturn/bios"
	"saturn/emu/log"
	"saturn/hw"
	"saturn/hw/hwdefs"
	"saturn/hw/sched"
	"saturn/hw/snapshot"
)

// Emulator drives a Saturn according to a Config.
type Emulator struct {
	Saturn *hw.Saturn
	cfg    Config
}

// New powers up a machine. cfg is checked first.
func New(cfg Config) (*Emulator, error) {
	cfg.Check()
	s, err := hw.NewSaturn(cfg.HW())
	if err != nil {
		return nil, fmt.Errorf("power up failed: %w", err)
	}

	if cfg.General.BIOS != "" {
		img, err := bios.Open(cfg.General.BIOS)
		if err != nil {
			return nil, err
		}
		if err := s.LoadBIOS(img.Data); err != nil {
			return nil, err
		}
		log.ModEmu.InfoZ("BIOS loaded").
			String("path", cfg.General.BIOS).
			String("sha1", img.Checksum()).
			End()
	}

	for _, name := range cfg.Debug.BreakOn {
		id, _ := sched.ParseEventID(name)
		s.SetBreakOnEvent(id, true)
	}
	s.BreakOnDMAEnd = cfg.Debug.BreakOnDMAEnd

	return &Emulator{Saturn: s, cfg: cfg}, nil
}

func (e *Emulator) Config() Config { return e.cfg }

// AttachLogContext adds the emulated cycle to every log entry until detach
// is called. Only one emulator should be attached at a time.
func (e *Emulator) AttachLogContext() (detach func()) {
	log.AddContext(e.Saturn.Sched)
	return func() { log.RemoveContext(e.Saturn.Sched) }
}

// RunFrames runs n frames. It stops early on a break other than the end of a
// frame, and returns it along with the number of completed frames.
func (e *Emulator) RunFrames(n int) (int, hwdefs.BreakInfo) {
	for i := range n {
		brk := e.Saturn.RunFrame()
		if brk.Kind() != hwdefs.BreakFrame {
			log.ModEmu.InfoZ("break").Stringer("reason", brk).End()
			return i, brk
		}
	}
	return n, hwdefs.BreakInfo{}
}

func (e *Emulator) SaveState(w io.Writer) error {
	buf, err := e.Saturn.State().MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

func (e *Emulator) LoadState(r io.Reader) error {
	buf, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var st snapshot.System
	if err := st.UnmarshalBinary(buf); err != nil {
		return err
	}
	return e.Saturn.SetState(&st)
}

func (e *Emulator) SaveStateFile(path string) error {
	var buf bytes.Buffer
	if err := e.SaveState(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return err
	}
	log.ModSnap.InfoZ("state saved").String("path", path).Uint64("cycle", e.Saturn.Sched.Now()).End()
	return nil
}

func (e *Emulator) LoadStateFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := e.LoadState(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.ModSnap.InfoZ("state loaded").String("path", path).Uint64("cycle", e.Saturn.Sched.Now()).End()
	return nil
}

// Checksum returns the SHA-256 of the machine state.
func (e *Emulator) Checksum() (string, error) {
	buf, err := e.Saturn.State().MarshalBinary()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}
