package bios

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"saturn/hw"
)

func TestReadFrom(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"full", hw.BIOSSize, false},
		{"4KB", 4096, false},
		{"64KB", 64 * 1024, false},
		{"too small", 2048, true},
		{"too big", 2 * hw.BIOSSize, true},
		{"not a power of two", 3 * 4096, true},
		{"empty", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dump := make([]byte, tt.size)
			for i := range dump {
				dump[i] = byte(i * 7)
			}

			var img Image
			_, err := img.ReadFrom(bytes.NewReader(dump))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFrom() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(img.Data) != hw.BIOSSize || img.Size != tt.size {
				t.Fatalf("image is %d bytes, dump %d", len(img.Data), img.Size)
			}
			for off := 0; off < hw.BIOSSize; off += tt.size {
				if !bytes.Equal(img.Data[off:off+tt.size], dump) {
					t.Fatalf("mirror at %x differs from the dump", off)
				}
			}
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bios.bin")
	if err := os.WriteFile(path, make([]byte, hw.BIOSSize), 0o644); err != nil {
		t.Fatal(err)
	}
	img, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	// SHA-1 of 512KB of zeroes.
	if got, want := img.Checksum(), "6a521e1d2a632c26e53b83d2cc4b0edecfc1e68c"; got != want {
		t.Errorf("Checksum() = %s, want %s", got, want)
	}

	s, err := hw.NewSaturn(hw.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.LoadBIOS(img.Data); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Errorf("Open() of a missing file succeeded")
	}
}
