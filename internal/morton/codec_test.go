package morton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLiteralValues(t *testing.T) {
	k, err := Encode(1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 9, k)

	k, err = Encode(3, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 15, k)

	k, err = Encode(0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, k)
}

func TestDecodeLiteralValues(t *testing.T) {
	assert.EqualValues(t, 1, DecodeX(9))
	assert.EqualValues(t, 2, DecodeY(9))
}

func TestEncodeRejectsNegativeAndOverflow(t *testing.T) {
	_, err := Encode(-1, 0)
	assert.ErrorIs(t, err, ErrBadCoordinate)

	_, err = Encode(0, -1)
	assert.ErrorIs(t, err, ErrBadCoordinate)

	_, err = Encode(MaxCoord+1, 0)
	assert.ErrorIs(t, err, ErrBadCoordinate)
}

func TestCodecBijection(t *testing.T) {
	samples := []int64{0, 1, 2, 3, 4, 100, 12345, 1 << 20, MaxCoord, MaxCoord - 1}
	for _, x := range samples {
		for _, y := range samples {
			k, err := Encode(x, y)
			require.NoError(t, err)
			gotX, gotY := Decode(k)
			assert.Equal(t, x, gotX, "x roundtrip for (%d,%d)", x, y)
			assert.Equal(t, y, gotY, "y roundtrip for (%d,%d)", x, y)
		}
	}
}

func TestQuadrantMonotonicity(t *testing.T) {
	// Keys sharing the same top 2k bits decode into the same 2^(31-k) cell.
	a, err := Encode(100, 200)
	require.NoError(t, err)
	b, err := Encode(101, 201)
	require.NoError(t, err)

	shift := uint(4)
	shiftedA := a >> shift
	shiftedB := b >> shift

	if shiftedA == shiftedB {
		ax, ay := Decode(a)
		bx, by := Decode(b)
		assert.Equal(t, ax>>2, bx>>2)
		assert.Equal(t, ay>>2, by>>2)
	}
}

func TestBitLength(t *testing.T) {
	assert.Equal(t, 0, BitLength(0))
	assert.Equal(t, 1, BitLength(1))
	assert.Equal(t, 4, BitLength(0b1001))
	assert.Equal(t, 14, BitLength(0x3CF0))
}
