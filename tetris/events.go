package tetris

// Listener receives notifications from a Game. Calls happen synchronously on
// the goroutine driving the game.
type Listener interface {
	GameStarted()
	PieceSpawned(shape ShapeID)
	LinesCleared(lines, points int)
	LevelUp(level int)
	GameOver(score int)
}

type nopListener struct{}

func (nopListener) GameStarted()          {}
func (nopListener) PieceSpawned(ShapeID)  {}
func (nopListener) LinesCleared(int, int) {}
func (nopListener) LevelUp(int)           {}
func (nopListener) GameOver(int)          {}
