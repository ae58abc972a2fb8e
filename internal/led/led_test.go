package led

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"
)

func TestSimKeepsLastFrame(t *testing.T) {
	s := NewSim(2)
	require.NoError(t, s.Write([]byte{1, 2, 3, 4, 5, 6}))
	frame := []byte{9, 9, 9, 8, 8, 8}
	require.NoError(t, s.Write(frame))
	frame[0] = 0
	assert.Equal(t, []byte{9, 9, 9, 8, 8, 8}, s.Last())
	assert.Equal(t, 2, s.Frames())

	assert.Error(t, s.Write([]byte{1, 2, 3}))
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Write(frame), ErrClosed)
}

func TestPermutation(t *testing.T) {
	for _, tc := range []struct {
		order string
		want  [3]int
	}{
		{"GRB", [3]int{0, 1, 2}},
		{"grb", [3]int{0, 1, 2}},
		{"RGB", [3]int{1, 0, 2}},
		{"BRG", [3]int{0, 2, 1}},
		{"", [3]int{0, 1, 2}},
	} {
		got, err := permutation(tc.order)
		require.NoError(t, err, tc.order)
		assert.Equal(t, tc.want, got, tc.order)
	}
	for _, bad := range []string{"RG", "RRB", "RGW"} {
		_, err := permutation(bad)
		assert.Error(t, err, bad)
	}
}

func TestSPIWritesEncodedFrame(t *testing.T) {
	var buf bytes.Buffer
	s, err := Wrap(spitest.NewRecordRaw(&buf), SPIOpts{Count: 4, ColorOrder: "GRB"})
	require.NoError(t, err)

	before := buf.Len()
	require.NoError(t, s.Write(bytes.Repeat([]byte{0xff, 0, 0x80}, 4)))
	// every colour bit becomes three wire bits
	assert.GreaterOrEqual(t, buf.Len()-before, 4*3*3)

	assert.Error(t, s.Write([]byte{1, 2, 3}), "short frame")
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Write(make([]byte, 12)), ErrClosed)
	assert.NoError(t, s.Close(), "second close is a no-op")
}

func TestEstimateAmps(t *testing.T) {
	white := bytes.Repeat([]byte{255}, 30) // 10 LEDs
	assert.InDelta(t, 0.6, EstimateAmps(white, 0), 1e-9)
	assert.InDelta(t, 0.3, EstimateAmps(white, 10), 1e-9)
	assert.Zero(t, EstimateAmps(make([]byte, 30), 20))
}
