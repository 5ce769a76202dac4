package hw

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"saturn/hw/cb"
	"saturn/hw/hwdefs"
	"saturn/hw/snapshot"
)

func TestVideoFrame(t *testing.T) {
	tests := []struct {
		std   hwdefs.VideoStandard
		lines uint64
	}{
		{hwdefs.NTSC, 263},
		{hwdefs.PAL, 313},
	}
	for _, tt := range tests {
		t.Run(tt.std.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Standard = tt.std
			s := newTestSaturn(t, cfg)

			for frame := uint64(1); frame <= 2; frame++ {
				brk := s.RunFrame()
				if got, ok := brk.Frame(); !ok || got != frame {
					t.Fatalf("RunFrame() = %v, want frame %d", brk, frame)
				}
				if want := frame * tt.lines * CyclesPerLine; brk.Cycle() != want {
					t.Errorf("frame %d ended at cycle %d, want %d", frame, brk.Cycle(), want)
				}
			}
			if s.Video.CyclesPerFrame() != tt.lines*CyclesPerLine {
				t.Errorf("CyclesPerFrame() = %d", s.Video.CyclesPerFrame())
			}
		})
	}
}

func TestVideoSignals(t *testing.T) {
	s := newTestSaturn(t, DefaultConfig())
	s.Bus.Write32(regIMS, 0)

	counts := make(map[hwdefs.IntSource]int)
	s.SCU.OnInterrupt = cb.NewOptional(func(src hwdefs.IntSource) { counts[src]++ })
	s.RunFrame()

	want := map[hwdefs.IntSource]int{
		hwdefs.IntHBlankIn:  263,
		hwdefs.IntVBlankIn:  1,
		hwdefs.IntVBlankOut: 1,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("signal counts mismatch (-want +got):\n%s", diff)
	}
}

func TestVideoLine(t *testing.T) {
	s := newTestSaturn(t, DefaultConfig())

	s.RunCycles(CyclesPerLine - 1)
	if got := s.Video.Line(); got != 0 {
		t.Errorf("Line() = %d, want 0", got)
	}
	s.RunCycles(1)
	if got := s.Video.Line(); got != 1 {
		t.Errorf("Line() = %d, want 1", got)
	}

	// VBlank-IN at the start of the first non visible line.
	s.RunCycles(223*CyclesPerLine - 1)
	if istBit(s, hwdefs.IntVBlankIn) {
		t.Errorf("VBlank-IN raised on line %d", s.Video.Line())
	}
	s.RunCycles(1)
	if !istBit(s, hwdefs.IntVBlankIn) || s.Video.Line() != 224 {
		t.Errorf("VBlank-IN not raised at the start of line 224 (line %d)", s.Video.Line())
	}
}

func TestVideoSpriteDraw(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpriteDrawCycles = 1000
	s := newTestSaturn(t, cfg)

	s.RunFrame()
	s.RunCycles(999)
	if istBit(s, hwdefs.IntSpriteDrawEnd) {
		t.Fatalf("sprite draw end raised early")
	}
	s.RunCycles(1)
	if !istBit(s, hwdefs.IntSpriteDrawEnd) {
		t.Fatalf("sprite draw end not raised")
	}
}

func TestVideoValidateState(t *testing.T) {
	tests := []struct {
		name string
		st   snapshot.Video
		ok   bool
	}{
		{"ntsc last line", snapshot.Video{Standard: uint8(hwdefs.NTSC), Line: 262, Phase: phaseHBlank}, true},
		{"pal last line", snapshot.Video{Standard: uint8(hwdefs.PAL), Line: 312}, true},
		{"ntsc line", snapshot.Video{Standard: uint8(hwdefs.NTSC), Line: 263}, false},
		{"standard", snapshot.Video{Standard: 2}, false},
		{"phase", snapshot.Video{Phase: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVideoState(&tt.st)
			if tt.ok && err != nil {
				t.Errorf("ValidateVideoState() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, snapshot.ErrInvalidState) {
				t.Errorf("ValidateVideoState() error = %v, want ErrInvalidState", err)
			}
		})
	}
}
