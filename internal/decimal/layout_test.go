package decimal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAsDataDoesNotAllocate(t *testing.T) {
	number := MustParse("12.10")
	var sink *Data
	allocs := testing.AllocsPerRun(1000, func() {
		sink = AsData(&number)
	})
	require.Zero(t, allocs)
	require.Equal(t, uint8(2), sink.Scale())

	allocs = testing.AllocsPerRun(1000, func() {
		_ = number.Bits()
	})
	require.Zero(t, allocs)
}

func TestAsDataSharesMemory(t *testing.T) {
	d := FromInt64(-1210)
	p := AsData(&d)
	require.True(t, p.Negative())
	require.Equal(t, uint32(1210), p.Lo)

	p.Flags |= 2 << scaleShift
	require.Equal(t, "-12.10", d.String())
	require.Same(t, &d, FromData(p))
}

func TestDataWords(t *testing.T) {
	// 2^95 occupies only the top bit of the high word.
	d := MustParse("39614081257132168796771975168")
	p := d.Bits()
	require.Equal(t, Data{Hi: 0x80000000}, p)

	d = MustParse("-4294967296.5")
	p = d.Bits()
	require.True(t, p.Negative())
	require.Equal(t, uint8(1), p.Scale())
	require.Equal(t, uint32(10), p.Mid)
	require.Equal(t, uint32(5), p.Lo)
}

func TestBinaryRoundTrip(t *testing.T) {
	in := MustParse("-79228162514264337593543950.335")
	buf, err := in.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, buf, 16)

	var out Decimal
	require.NoError(t, out.UnmarshalBinary(buf))
	require.Equal(t, in.Bits(), out.Bits())

	require.Error(t, out.UnmarshalBinary(buf[:8]))
	buf[0] = 0xFF
	require.Error(t, out.UnmarshalBinary(buf))
}
