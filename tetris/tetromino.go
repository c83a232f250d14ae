package tetris

import "strings"

// ShapeID identifies one of the seven tetrominoes. The zero value is not a shape.
type ShapeID uint8

const (
	I ShapeID = iota + 1
	L
	J
	O
	S
	Z
	T
)

// Shapes lists every playable shape in table order.
var Shapes = [...]ShapeID{I, L, J, O, S, Z, T}

var shapeNames = [...]string{"", "I", "L", "J", "O", "S", "Z", "T"}

func (s ShapeID) Valid() bool { return s >= I && s <= T }

func (s ShapeID) String() string {
	if !s.Valid() {
		return "?"
	}
	return shapeNames[s]
}

// mask is a 4x4 occupancy grid stored row-major: index = y*4 + x.
type mask [16]bool

// shapeTable holds the single canonical mask of every shape. Rotations are
// never stored, they are read through rotate().
var shapeTable = [...]mask{
	/*
		. . X .
		. . X .
		. . X .
		. . X .
	*/
	I: newMask("..X.", "..X.", "..X.", "..X."),
	/*
		. X . .
		. X . .
		. X X .
		. . . .
	*/
	L: newMask(".X..", ".X..", ".XX.", "...."),
	/*
		. . X .
		. . X .
		. X X .
		. . . .
	*/
	J: newMask("..X.", "..X.", ".XX.", "...."),
	/*
		. . . .
		. X X .
		. X X .
		. . . .
	*/
	O: newMask("....", ".XX.", ".XX.", "...."),
	/*
		. X . .
		. X X .
		. . X .
		. . . .
	*/
	S: newMask(".X..", ".XX.", "..X.", "...."),
	/*
		. . X .
		. X X .
		. X . .
		. . . .
	*/
	Z: newMask("..X.", ".XX.", ".X..", "...."),
	/*
		. . X .
		. X X .
		. . X .
		. . . .
	*/
	T: newMask("..X.", ".XX.", "..X.", "...."),
}

func newMask(rows ...string) mask {
	var m mask
	for y, r := range rows {
		for x, c := range strings.Split(r, "") {
			m[y*4+x] = c == "X"
		}
	}
	return m
}

// rotate maps the local cell (px, py) of a 4x4 box to the index of the
// canonical mask cell that shows up there after r quarter turns clockwise.
//
//	r%4 == 0: py*4 + px
//	r%4 == 1: 12 + py - px*4
//	r%4 == 2: 15 - py*4 - px
//	r%4 == 3: 3 - py + px*4
//
// r is not normalised: a negative r leaves a negative remainder, which
// matches no case and reads index 0.
func rotate(px, py, r int) int {
	switch r % 4 {
	case 0:
		return py*4 + px
	case 1:
		return 12 + py - px*4
	case 2:
		return 15 - py*4 - px
	case 3:
		return 3 - py + px*4
	}
	return 0
}

// Occupied reports whether the local cell (px, py) of the shape's 4x4 box is
// filled at the given rotation.
func (s ShapeID) Occupied(px, py, rotation int) bool {
	if !s.Valid() {
		return false
	}
	return shapeTable[s][rotate(px, py, rotation)]
}

// Piece is a tetromino placed on the field. X and Y locate the top-left
// corner of its 4x4 box in field coordinates.
type Piece struct {
	Shape    ShapeID
	X, Y     int
	Rotation int
}

// Cells returns the field coordinates of the piece's blocks.
func (p Piece) Cells() [][2]int {
	cells := make([][2]int, 0, 4)
	for py := range 4 {
		for px := range 4 {
			if p.Shape.Occupied(px, py, p.Rotation) {
				cells = append(cells, [2]int{p.X + px, p.Y + py})
			}
		}
	}
	return cells
}
