package tetris

import "math/rand/v2"

// NewTestGame creates a game with a fixed seed whose current piece is the
// given shape at the spawn location. The next piece is I, or O when shape is I.
func NewTestGame(shape ShapeID) *Game {
	g := New(&Options{Rand: rand.New(rand.NewPCG(1, 2))})
	g.current = g.spawnPiece(shape)
	next := I
	if shape == I {
		next = O
	}
	g.next = g.spawnPiece(next)
	return g
}

// LockTestCell marks an interior cell as Locked with the given shape's color.
func (g *Game) LockTestCell(x, y int, shape ShapeID) {
	g.field.set(x, y, Cell{State: Locked, Shape: shape})
}
