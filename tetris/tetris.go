// Package tetris contains the logic of the game: the playing field, the
// tetromino table and the state machine that drives a session.
package tetris

import "fmt"

const (
	DefaultWidth  = 12
	DefaultHeight = 20

	// A field must hold a 4x4 piece box inside its boundary ring and spawn
	// it at x = width/2 - 2 without touching a wall.
	MinWidth  = 6
	MinHeight = 5
)

// CellState is the kind of a field cell.
type CellState uint8

const (
	Empty CellState = iota
	Boundary
	Locked
)

func (c CellState) String() string {
	switch c {
	case Empty:
		return "empty"
	case Boundary:
		return "boundary"
	case Locked:
		return "locked"
	}
	return fmt.Sprintf("CellState(%d)", uint8(c))
}

// Cell is one field cell. Shape carries the color of a Locked cell and is
// zero otherwise.
type Cell struct {
	State CellState
	Shape ShapeID
}

// Field is the playing grid. Columns 0 and width-1 and the bottom row are
// Boundary cells that never change; only interior cells move between Empty
// and Locked.
//
//	  0 1 2 3 4 5 6 7 8 9 10 11
//	0 # . . . . . . . . . .  #
//	1 # . . . . . . . . . .  #
//	  ...
//	19 # # # # # # # # # # # #
type Field struct {
	width, height int
	cells         []Cell
}

// NewField returns an initialised field. It panics when the dimensions are
// smaller than MinWidth x MinHeight.
func NewField(width, height int) *Field {
	if width < MinWidth || height < MinHeight {
		panic(fmt.Sprintf("tetris: field %dx%d is smaller than %dx%d", width, height, MinWidth, MinHeight))
	}
	f := &Field{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
	f.Init()
	return f
}

// Init paints the boundary ring and empties the interior.
func (f *Field) Init() {
	for y := range f.height {
		for x := range f.width {
			c := Cell{}
			if x == 0 || x == f.width-1 || y == f.height-1 {
				c.State = Boundary
			}
			f.cells[y*f.width+x] = c
		}
	}
}

func (f *Field) Width() int  { return f.width }
func (f *Field) Height() int { return f.height }

func (f *Field) InBounds(x, y int) bool {
	return x >= 0 && x < f.width && y >= 0 && y < f.height
}

// At returns the cell at (x, y) and false when the coordinate is off the field.
func (f *Field) At(x, y int) (Cell, bool) {
	if !f.InBounds(x, y) {
		return Cell{}, false
	}
	return f.cells[y*f.width+x], true
}

// set writes an interior cell. Boundary cells and coordinates off the field
// are refused.
func (f *Field) set(x, y int, c Cell) bool {
	if !f.InBounds(x, y) || f.cells[y*f.width+x].State == Boundary {
		return false
	}
	f.cells[y*f.width+x] = c
	return true
}

// Fit reports whether p's shape placed at (x, y) with the given rotation
// overlaps nothing. Only shape cells landing on the field are checked: the
// boundary ring is the wall, not this function.
func (f *Field) Fit(p Piece, x, y, rotation int) bool {
	for py := range 4 {
		for px := range 4 {
			if !p.Shape.Occupied(px, py, rotation) {
				continue
			}
			c, ok := f.At(x+px, y+py)
			if ok && c.State != Empty {
				return false
			}
		}
	}
	return true
}

// rowFull reports whether every interior cell of row y is Locked.
func (f *Field) rowFull(y int) bool {
	if y < 0 || y >= f.height-1 {
		return false
	}
	for x := 1; x < f.width-1; x++ {
		if f.cells[y*f.width+x].State != Locked {
			return false
		}
	}
	return true
}

// collapse removes row y by moving every interior row above it down by one
// and emptying the top row.
func (f *Field) collapse(y int) {
	for r := y; r > 0; r-- {
		for x := 1; x < f.width-1; x++ {
			f.cells[r*f.width+x] = f.cells[(r-1)*f.width+x]
		}
	}
	for x := 1; x < f.width-1; x++ {
		f.cells[x] = Cell{}
	}
}

// Rows returns a copy of the grid indexed [y][x].
func (f *Field) Rows() [][]Cell {
	rows := make([][]Cell, f.height)
	for y := range rows {
		rows[y] = make([]Cell, f.width)
		copy(rows[y], f.cells[y*f.width:(y+1)*f.width])
	}
	return rows
}
