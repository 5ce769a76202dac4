// Package bios loads system ROM images.
package bios

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"saturn/hw"
)

const minSize = 4 * 1024

type Image struct {
	// Data is always hw.BIOSSize bytes. Smaller dumps are mirrored.
	Data []byte
	// Size of the dump as read.
	Size int
}

// Open loads a BIOS image from file.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img := new(Image)
	if _, err := img.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// ReadFrom implements io.ReaderFrom interface. The dump must be a power of
// two between 4KB and hw.BIOSSize.
func (img *Image) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(io.LimitReader(r, hw.BIOSSize+1))
	if err != nil {
		return 0, err
	}
	n := len(buf)
	if n < minSize || n > hw.BIOSSize || n&(n-1) != 0 {
		return int64(n), fmt.Errorf("invalid bios size %d, must be a power of two between %d and %d", n, minSize, hw.BIOSSize)
	}

	img.Size = n
	img.Data = make([]byte, hw.BIOSSize)
	for off := 0; off < hw.BIOSSize; off += n {
		copy(img.Data[off:], buf)
	}
	return int64(n), nil
}

// Checksum returns the SHA-1 of the dump, as listed in ROM databases.
func (img *Image) Checksum() string {
	sum := sha1.Sum(img.Data[:img.Size])
	return hex.EncodeToString(sum[:])
}
