package bitboard

import (
	"testing"

	"github.com/matryer/is"
)

func TestDilate8(t *testing.T) {
	is := is.New(t)
	// a single cell in the middle of the 8x8 layout becomes a 3x3 block.
	center := uint64(1) << 27
	expected := uint64(0)
	for _, p := range []int{18, 19, 20, 26, 27, 28, 34, 35, 36} {
		expected |= uint64(1) << p
	}
	is.Equal(Dilate8(center), expected)
	is.Equal(Dilate8(0), uint64(0))
}

func TestDilate8Idempotent(t *testing.T) {
	is := is.New(t)
	b := uint64(0x0000001008000000)
	d := Dilate8(b)
	is.Equal(d&b, b)
	is.Equal(Population(d), 14)
}

func TestGetBit(t *testing.T) {
	is := is.New(t)
	b := uint64(0b1010)
	is.True(!GetBit(b, 0))
	is.True(GetBit(b, 1))
	is.True(!GetBit(b, 2))
	is.True(GetBit(b, 3))
	is.True(GetBit(uint64(1)<<63, 63))
}

func TestPopBit(t *testing.T) {
	is := is.New(t)
	b := uint64(1)<<5 | uint64(1)<<17 | uint64(1)<<63
	var popped []int
	for b != 0 {
		popped = append(popped, PopBit(&b))
	}
	is.Equal(popped, []int{5, 17, 63})
	is.Equal(b, uint64(0))
}

func TestPopBitEmpty(t *testing.T) {
	is := is.New(t)
	defer func() {
		is.True(recover() != nil)
	}()
	var b uint64
	PopBit(&b)
}

func TestPopulation(t *testing.T) {
	is := is.New(t)
	is.Equal(Population(0), 0)
	is.Equal(Population(0x007E7E7E7E7E7E00), 36)
	is.Equal(Population(^uint64(0)), 64)
}
