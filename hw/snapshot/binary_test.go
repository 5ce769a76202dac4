package snapshot

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSchedulerLayout(t *testing.T) {
	s := Scheduler{
		Cycle:  0x0102030405060708,
		Events: []Event{{ID: 3, Target: 0x10}},
	}
	got, err := s.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // cycle
		0x01, 0x00, 0x00, 0x00, // count
		0x03,                                           // id
		0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // target
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scheduler layout mismatch (-want +got):\n%s", diff)
	}

	var s2 Scheduler
	if err := s2.UnmarshalBinary(got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s, s2); diff != "" {
		t.Errorf("scheduler round trip (-want +got):\n%s", diff)
	}
}

func TestSchedulerTruncated(t *testing.T) {
	// Claims 1000 events but carries none.
	data := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0xE8, 0x03, 0, 0}
	var s Scheduler
	if err := s.UnmarshalBinary(data); !errors.Is(err, ErrInvalidState) {
		t.Errorf("UnmarshalBinary() error = %v, want ErrInvalidState", err)
	}
}

func testSystem() *System {
	s := &System{
		Version: Version,
		Sched: Scheduler{
			Cycle:  12345,
			Events: []Event{{ID: 0, Target: 13000}, {ID: 7, Target: 12346}},
		},
		SCU:   SCU{IMS: 0xBFFF, IST: 0x3, T0C: 10},
		Video: Video{Line: 42, Phase: 1, Frame: 7},
		WRAML: bytes.Repeat([]byte{0xAA}, 64),
		WRAMH: bytes.Repeat([]byte{0x55}, 32),
		Cart:  Cartridge{Kind: 2, RAM: []byte{1, 2, 3, 4}},
	}
	s.DMA.Channels[1] = DMAChannel{
		SrcAddr:       0x200000,
		DstAddr:       0x6000000,
		XferCount:     16,
		SrcAddrInc:    4,
		DstAddrInc:    4,
		UpdateSrcAddr: true,
		Enabled:       true,
		Trigger:       7,
		Active:        true,
		CurrSrcAddr:   0x200008,
		XferBuf:       0xDEAD,
		XferBufLen:    2,
	}
	return s
}

func TestSystemRoundTrip(t *testing.T) {
	s := testSystem()
	data, err := s.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("SATSTATE")) {
		t.Errorf("missing magic: %q", data[:8])
	}

	var s2 System
	if err := s2.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s, &s2); diff != "" {
		t.Errorf("system round trip (-want +got):\n%s", diff)
	}
}

func TestSystemErrors(t *testing.T) {
	good, err := testSystem().MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	badVersion := bytes.Clone(good)
	badVersion[8] = 99

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrBadMagic},
		{"bad magic", append([]byte("SATSTATX"), good[8:]...), ErrBadMagic},
		{"bad version", badVersion, ErrVersion},
		{"truncated", good[:len(good)-1], nil},
		{"trailing", append(bytes.Clone(good), 0), ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s System
			err := s.UnmarshalBinary(tt.data)
			if err == nil {
				t.Fatal("UnmarshalBinary() succeeded")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("UnmarshalBinary() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := testSystem().WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	out := strings.Join(strings.Fields(buf.String()), "")
	for _, want := range []string{`"cycle":12345`, `"wram_l_size":64`, `"curr_src":2097160`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON output lacks %s:\n%s", want, out)
		}
	}
}
