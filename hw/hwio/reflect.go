package hwio

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// bankReg is a register found in a bank, along with its offset.
type bankReg struct {
	offset uint32
	reg    *Reg32
}

var reg32Type = reflect.TypeOf(Reg32{})

// InitRegs initializes all Reg32 fields of the struct pointed to by bank,
// according to their "hwio" struct tag:
//
//	reset=0x12      Value of the register at reset.
//	rwmask=0xFF     Bits that can be written (default: all).
//	readonly        Writes are ignored.
//	writeonly       Reads return 0.
//	rcb[=Name]      Read callback, method ReadNAME(val uint32) uint32 by default.
//	wcb[=Name]      Write callback, method WriteNAME(old, val uint32) by default.
//
// NAME is the field name in upper case. The offset and bank options are used
// by Bus.MapBank.
func InitRegs(bank any) error {
	v := reflect.ValueOf(bank)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("InitRegs: expected pointer to struct, got %T", bank)
	}
	sv := v.Elem()
	st := sv.Type()

	for i := range st.NumField() {
		field := st.Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok || field.Type != reg32Type {
			continue
		}

		opts, err := parseTag(tag)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}

		reg := sv.Field(i).Addr().Interface().(*Reg32)
		*reg = Reg32{Name: field.Name}

		if s, ok := opts["reset"]; ok {
			if reg.Value, err = parseUint32(s); err != nil {
				return fmt.Errorf("field %s: invalid reset: %w", field.Name, err)
			}
		}
		if s, ok := opts["rwmask"]; ok {
			mask, err := parseUint32(s)
			if err != nil {
				return fmt.Errorf("field %s: invalid rwmask: %w", field.Name, err)
			}
			reg.RoMask = ^mask
		}
		if _, ok := opts["readonly"]; ok {
			reg.Flags |= ReadOnlyFlag
		}
		if _, ok := opts["writeonly"]; ok {
			reg.Flags |= WriteOnlyFlag
		}

		if name, ok := opts["rcb"]; ok {
			if name == "" {
				name = "Read" + strings.ToUpper(field.Name)
			}
			m := v.MethodByName(name)
			if !m.IsValid() {
				return fmt.Errorf("field %s: missing read callback %s", field.Name, name)
			}
			fn, ok := m.Interface().(func(uint32) uint32)
			if !ok {
				return fmt.Errorf("field %s: %s has wrong signature %s", field.Name, name, m.Type())
			}
			reg.ReadCb = fn
		}
		if name, ok := opts["wcb"]; ok {
			if name == "" {
				name = "Write" + strings.ToUpper(field.Name)
			}
			m := v.MethodByName(name)
			if !m.IsValid() {
				return fmt.Errorf("field %s: missing write callback %s", field.Name, name)
			}
			fn, ok := m.Interface().(func(uint32, uint32))
			if !ok {
				return fmt.Errorf("field %s: %s has wrong signature %s", field.Name, name, m.Type())
			}
			reg.WriteCb = fn
		}
	}
	return nil
}

// MustInitRegs is like InitRegs but panics on error.
func MustInitRegs(bank any) {
	if err := InitRegs(bank); err != nil {
		panic(err)
	}
}

// bankGetRegs returns the registers of bank that belong to bank number
// bankNum and have an offset.
func bankGetRegs(bank any, bankNum int) ([]bankReg, error) {
	v := reflect.ValueOf(bank)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected pointer to struct, got %T", bank)
	}
	sv := v.Elem()
	st := sv.Type()

	var regs []bankReg
	for i := range st.NumField() {
		field := st.Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok || field.Type != reg32Type {
			continue
		}
		opts, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		soff, ok := opts["offset"]
		if !ok {
			continue
		}
		num := 0
		if s, ok := opts["bank"]; ok {
			if num, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("field %s: invalid bank: %w", field.Name, err)
			}
		}
		if num != bankNum {
			continue
		}
		off, err := parseUint32(soff)
		if err != nil {
			return nil, fmt.Errorf("field %s: invalid offset: %w", field.Name, err)
		}
		regs = append(regs, bankReg{
			offset: off,
			reg:    sv.Field(i).Addr().Interface().(*Reg32),
		})
	}
	if len(regs) == 0 {
		return nil, errors.New("no register found in bank " + strconv.Itoa(bankNum))
	}
	return regs, nil
}

func parseTag(tag string) (map[string]string, error) {
	opts := make(map[string]string)
	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		key, val, _ := strings.Cut(opt, "=")
		switch key {
		case "offset", "bank", "reset", "rwmask", "readonly", "writeonly", "rcb", "wcb":
		default:
			return nil, fmt.Errorf("unknown hwio tag option %q", key)
		}
		opts[key] = val
	}
	return opts, nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	return uint32(v), err
}
