package decimal

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// Data is the raw word layout of a Decimal. Its fields have the same order,
// widths and offsets as Decimal, so one can be viewed as the other in place.
type Data struct {
	Flags uint32
	Hi    uint32
	Lo    uint32
	Mid   uint32
}

// Compile-time layout checks: each line fails with a constant overflow if the
// two structs diverge.
var (
	_ [unsafe.Sizeof(Data{}) - unsafe.Sizeof(Decimal{})]struct{}
	_ [unsafe.Sizeof(Decimal{}) - unsafe.Sizeof(Data{})]struct{}
	_ [unsafe.Offsetof(Data{}.Hi) - unsafe.Offsetof(Decimal{}.hi)]struct{}
	_ [unsafe.Offsetof(Decimal{}.hi) - unsafe.Offsetof(Data{}.Hi)]struct{}
	_ [unsafe.Offsetof(Data{}.Lo) - unsafe.Offsetof(Decimal{}.lo)]struct{}
	_ [unsafe.Offsetof(Decimal{}.lo) - unsafe.Offsetof(Data{}.Lo)]struct{}
	_ [unsafe.Offsetof(Data{}.Mid) - unsafe.Offsetof(Decimal{}.mid)]struct{}
	_ [unsafe.Offsetof(Decimal{}.mid) - unsafe.Offsetof(Data{}.Mid)]struct{}
)

// AsData views d as its raw words without copying. Writes through the result
// modify d.
func AsData(d *Decimal) *Data {
	return (*Data)(unsafe.Pointer(d))
}

// FromData views p as a Decimal without copying.
func FromData(p *Data) *Decimal {
	return (*Decimal)(unsafe.Pointer(p))
}

// Bits returns a copy of the raw words of d. Two decimals with equal Bits are
// bit-identical, which is stricter than Equal.
func (d Decimal) Bits() Data { return *AsData(&d) }

// Scale returns the scale encoded in Flags.
func (p *Data) Scale() uint8 { return uint8((p.Flags & scaleMask) >> scaleShift) }

// Negative reports whether the sign bit is set.
func (p *Data) Negative() bool { return p.Flags&signMask != 0 }

// Valid reports whether the reserved flag bits are clear and the scale is in
// range.
func (p *Data) Valid() bool {
	return p.Flags&^(scaleMask|signMask) == 0 && p.Scale() <= MaxScale
}

const binarySize = 16

// MarshalBinary encodes the four words little-endian in layout order.
func (d Decimal) MarshalBinary() ([]byte, error) {
	p := AsData(&d)
	buf := make([]byte, binarySize)
	binary.LittleEndian.PutUint32(buf[0:], p.Flags)
	binary.LittleEndian.PutUint32(buf[4:], p.Hi)
	binary.LittleEndian.PutUint32(buf[8:], p.Lo)
	binary.LittleEndian.PutUint32(buf[12:], p.Mid)
	return buf, nil
}

func (d *Decimal) UnmarshalBinary(buf []byte) error {
	if len(buf) != binarySize {
		return fmt.Errorf("decimal: binary form must be %d bytes, got %d", binarySize, len(buf))
	}
	p := Data{
		Flags: binary.LittleEndian.Uint32(buf[0:]),
		Hi:    binary.LittleEndian.Uint32(buf[4:]),
		Lo:    binary.LittleEndian.Uint32(buf[8:]),
		Mid:   binary.LittleEndian.Uint32(buf[12:]),
	}
	if !p.Valid() {
		return fmt.Errorf("decimal: invalid flags %#08x", p.Flags)
	}
	*d = *FromData(&p)
	return nil
}
