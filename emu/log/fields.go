package log

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

type FieldType int

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeBool
	FieldTypeString
	FieldTypeHex8
	FieldTypeHex16
	FieldTypeHex32
	FieldTypeHex64
	FieldTypeInt
	FieldTypeUint
	FieldTypeError
	FieldTypeDuration
	FieldTypeStringer
	FieldTypeBlob
)

type ZField struct {
	Type FieldType
	Key  string

	// Possible values. Only one of these is populated, depending on Type
	String    string
	Integer   uint64
	Duration  time.Duration
	Error     error
	Interface any
	Boolean   bool
	Blob      []byte
}

func (f *ZField) Value() string {
	switch f.Type {
	case FieldTypeBool:
		return strconv.FormatBool(f.Boolean)
	case FieldTypeString:
		return f.String
	case FieldTypeUint:
		return strconv.FormatUint(f.Integer, 10)
	case FieldTypeInt:
		return strconv.FormatInt(int64(f.Integer), 10)
	case FieldTypeHex8:
		return fmt.Sprintf("%02x", f.Integer)
	case FieldTypeHex16:
		return fmt.Sprintf("%04x", f.Integer)
	case FieldTypeHex32:
		return fmt.Sprintf("%08x", f.Integer)
	case FieldTypeHex64:
		return fmt.Sprintf("%016x", f.Integer)
	case FieldTypeError:
		if f.Error == nil {
			return "<nil>"
		}
		return f.Error.Error()
	case FieldTypeDuration:
		return f.Duration.String()
	case FieldTypeStringer:
		return f.Interface.(fmt.Stringer).String()
	case FieldTypeBlob:
		return hex.Dump(f.Blob)
	}
	return ""
}

// The builder methods below are all nil-safe: a disabled module hands out a
// nil *EntryZ, so that a whole chain costs a few nil checks.

func (z *EntryZ) add(f ZField) *EntryZ {
	if z == nil {
		return nil
	}
	if z.zfidx < len(z.zfbuf) {
		z.zfbuf[z.zfidx] = f
		z.zfidx++
	}
	return z
}

func (z *EntryZ) Bool(key string, v bool) *EntryZ {
	return z.add(ZField{Type: FieldTypeBool, Key: key, Boolean: v})
}

func (z *EntryZ) String(key string, v string) *EntryZ {
	return z.add(ZField{Type: FieldTypeString, Key: key, String: v})
}

func (z *EntryZ) Stringer(key string, v fmt.Stringer) *EntryZ {
	return z.add(ZField{Type: FieldTypeStringer, Key: key, Interface: v})
}

func (z *EntryZ) Hex8(key string, v uint8) *EntryZ {
	return z.add(ZField{Type: FieldTypeHex8, Key: key, Integer: uint64(v)})
}

func (z *EntryZ) Hex16(key string, v uint16) *EntryZ {
	return z.add(ZField{Type: FieldTypeHex16, Key: key, Integer: uint64(v)})
}

func (z *EntryZ) Hex32(key string, v uint32) *EntryZ {
	return z.add(ZField{Type: FieldTypeHex32, Key: key, Integer: uint64(v)})
}

func (z *EntryZ) Hex64(key string, v uint64) *EntryZ {
	return z.add(ZField{Type: FieldTypeHex64, Key: key, Integer: v})
}

func (z *EntryZ) Int(key string, v int) *EntryZ {
	return z.add(ZField{Type: FieldTypeInt, Key: key, Integer: uint64(v)})
}

func (z *EntryZ) Int64(key string, v int64) *EntryZ {
	return z.add(ZField{Type: FieldTypeInt, Key: key, Integer: uint64(v)})
}

func (z *EntryZ) Uint(key string, v uint) *EntryZ {
	return z.add(ZField{Type: FieldTypeUint, Key: key, Integer: uint64(v)})
}

func (z *EntryZ) Uint64(key string, v uint64) *EntryZ {
	return z.add(ZField{Type: FieldTypeUint, Key: key, Integer: v})
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	return z.add(ZField{Type: FieldTypeError, Key: key, Error: err})
}

func (z *EntryZ) Duration(key string, d time.Duration) *EntryZ {
	return z.add(ZField{Type: FieldTypeDuration, Key: key, Duration: d})
}

func (z *EntryZ) Blob(key string, b []byte) *EntryZ {
	return z.add(ZField{Type: FieldTypeBlob, Key: key, Blob: b})
}
