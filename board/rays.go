package board

// ray describes one of the eight scan directions. Shifting template by
// the move index yields the cells leaving the move in that direction, up
// to eight steps; cells pushed past either end of the word are dropped.
type ray struct {
	shift     uint
	towardMSB bool
	template  uint64
}

const (
	// toward the low bits: west, north-east, north, north-west
	rayTemplateLSB1 uint64 = 0xFF00000000000000
	rayTemplateLSB7 uint64 = 0x0204081020408100
	rayTemplateLSB8 uint64 = 0x0101010101010101
	rayTemplateLSB9 uint64 = 0x0080402010080402

	// toward the high bits: east, south-west, south, south-east
	rayTemplateMSB1 uint64 = 0x00000000000001FE
	rayTemplateMSB7 uint64 = 0x0102040810204080
	rayTemplateMSB8 uint64 = 0x0101010101010100
	rayTemplateMSB9 uint64 = 0x8040201008040200
)

var rays = [8]ray{
	{shift: 9, towardMSB: false, template: rayTemplateLSB9},
	{shift: 8, towardMSB: false, template: rayTemplateLSB8},
	{shift: 7, towardMSB: false, template: rayTemplateLSB7},
	{shift: 1, towardMSB: false, template: rayTemplateLSB1},
	{shift: 1, towardMSB: true, template: rayTemplateMSB1},
	{shift: 7, towardMSB: true, template: rayTemplateMSB7},
	{shift: 8, towardMSB: true, template: rayTemplateMSB8},
	{shift: 9, towardMSB: true, template: rayTemplateMSB9},
}
