package tetris_test

import (
	"math/rand/v2"
	"reflect"
	"testing"
	"termtris/tetris"
)

type recordingListener struct {
	started  int
	spawned  []tetris.ShapeID
	cleared  []int
	levels   []int
	gameOver []int
}

func (r *recordingListener) GameStarted()                  { r.started++ }
func (r *recordingListener) PieceSpawned(s tetris.ShapeID) { r.spawned = append(r.spawned, s) }
func (r *recordingListener) LinesCleared(n, _ int)         { r.cleared = append(r.cleared, n) }
func (r *recordingListener) LevelUp(l int)                 { r.levels = append(r.levels, l) }
func (r *recordingListener) GameOver(score int)            { r.gameOver = append(r.gameOver, score) }

func TestNewGame(t *testing.T) {
	l := &recordingListener{}
	g := tetris.New(&tetris.Options{Rand: rand.New(rand.NewPCG(7, 7)), Listener: l})

	if g.Level() != 1 {
		t.Errorf("wanted level 1, got %d", g.Level())
	}
	if g.Score() != 0 || g.LinesRemoved() != 0 || g.PiecesDropped() != 0 {
		t.Errorf("wanted zeroed counters, got score %d lines %d drops %d", g.Score(), g.LinesRemoved(), g.PiecesDropped())
	}
	if g.PiecesSpawned() != 1 {
		t.Errorf("wanted 1 piece spawned, got %d", g.PiecesSpawned())
	}
	if g.Phase() != tetris.Playing {
		t.Errorf("wanted phase playing, got %s", g.Phase())
	}
	if c := g.Current(); c.X != 4 || c.Y != 0 || c.Rotation != 0 || !c.Shape.Valid() {
		t.Errorf("wanted a valid piece at the spawn location, got %+v", c)
	}
	if g.Current().Shape == g.Next().Shape {
		t.Errorf("wanted next shape to differ from %s", g.Current().Shape)
	}
	f := g.Field()
	for y := range f.Height() {
		for x := range f.Width() {
			c, _ := f.At(x, y)
			border := x == 0 || x == f.Width()-1 || y == f.Height()-1
			if border && c.State != tetris.Boundary || !border && c.State != tetris.Empty {
				t.Errorf("(%d,%d): unexpected %s cell", x, y, c.State)
			}
		}
	}
	if l.started != 1 || len(l.spawned) != 1 {
		t.Errorf("wanted 1 start and 1 spawn event, got %d and %d", l.started, len(l.spawned))
	}
}

func TestNewGameCustomField(t *testing.T) {
	g := tetris.New(&tetris.Options{Width: 10, Height: 22})
	if g.Field().Width() != 10 || g.Field().Height() != 22 {
		t.Errorf("wanted a 10x22 field, got %dx%d", g.Field().Width(), g.Field().Height())
	}
	if g.Current().X != 3 {
		t.Errorf("wanted spawn X 3, got %d", g.Current().X)
	}
}

func TestMoveActions(t *testing.T) {
	// Initial state of the test:
	//
	// .	0 1 2 3 4 5 6 7 8 9 10 11
	// 0	# . . . . . O . . . .  #
	// 1	# . . . . . O . . . .  #
	// 2	# . . . . O O . . . .  #
	tests := []struct {
		name         string
		action       tetris.Action
		repeat       int
		updateStack  func(g *tetris.Game)
		wantOK       bool
		wantLocation []int // x, y
		wantRotation int
	}{
		{
			name:         "Move left unblocked",
			action:       tetris.MoveLeft,
			wantOK:       true,
			wantLocation: []int{3, 0},
		},
		{
			name:         "Move left blocked",
			action:       tetris.MoveLeft,
			updateStack:  func(g *tetris.Game) { g.LockTestCell(4, 2, tetris.T) },
			wantLocation: []int{4, 0},
		},
		{
			name:         "Move left stops at the wall",
			action:       tetris.MoveLeft,
			repeat:       10,
			wantLocation: []int{0, 0},
		},
		{
			name:         "Move right unblocked",
			action:       tetris.MoveRight,
			wantOK:       true,
			wantLocation: []int{5, 0},
		},
		{
			name:         "Move right blocked",
			action:       tetris.MoveRight,
			updateStack:  func(g *tetris.Game) { g.LockTestCell(7, 1, tetris.T) },
			wantLocation: []int{4, 0},
		},
		{
			name:         "Move right stops at the wall",
			action:       tetris.MoveRight,
			repeat:       10,
			wantLocation: []int{8, 0},
		},
		{
			name:         "Move down unblocked",
			action:       tetris.MoveDown,
			wantOK:       true,
			wantLocation: []int{4, 1},
		},
		{
			name:         "Move down blocked",
			action:       tetris.MoveDown,
			updateStack:  func(g *tetris.Game) { g.LockTestCell(5, 3, tetris.T) },
			wantLocation: []int{4, 0},
		},
		{
			name:         "Drop moves down until blocked",
			action:       tetris.DropDown,
			wantOK:       true,
			wantLocation: []int{4, 16},
		},
		{
			name:         "Rotate right when unblocked",
			action:       tetris.RotateRight,
			wantOK:       true,
			wantLocation: []int{4, 0},
			wantRotation: 1,
		},
		{
			name:         "Rotate right when blocked",
			action:       tetris.RotateRight,
			updateStack:  func(g *tetris.Game) { g.LockTestCell(7, 2, tetris.T) },
			wantLocation: []int{4, 0},
		},
		{
			name:         "Rotate left when unblocked",
			action:       tetris.RotateLeft,
			wantOK:       true,
			wantLocation: []int{4, 0},
			wantRotation: 3,
		},
		{
			name:         "Rotate left when blocked",
			action:       tetris.RotateLeft,
			updateStack:  func(g *tetris.Game) { g.LockTestCell(4, 1, tetris.T) },
			wantLocation: []int{4, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := tetris.NewTestGame(tetris.J)
			if tt.updateStack != nil {
				tt.updateStack(g)
			}
			ok := g.Action(tt.action)
			for range tt.repeat {
				g.Action(tt.action)
			}
			if tt.repeat == 0 && ok != tt.wantOK {
				t.Errorf("wanted action to return %t, got %t", tt.wantOK, ok)
			}
			c := g.Current()
			if c.X != tt.wantLocation[0] || c.Y != tt.wantLocation[1] {
				t.Errorf("wanted tetromino at %v, got (%d,%d)", tt.wantLocation, c.X, c.Y)
			}
			if c.Rotation != tt.wantRotation {
				t.Errorf("wanted rotation %d, got %d", tt.wantRotation, c.Rotation)
			}
		})
	}
}

func TestHardDrop(t *testing.T) {
	g := tetris.NewTestGame(tetris.J)
	if !g.HardDrop() {
		t.Errorf("expected the first drop to move the piece")
	}
	if g.HardDrop() {
		t.Errorf("expected the second drop not to move the piece")
	}
	if g.PiecesDropped() != 2 {
		t.Errorf("wanted 2 pieces dropped, got %d", g.PiecesDropped())
	}
	if g.Current().Y != 16 {
		t.Errorf("wanted the piece to rest at Y 16, got %d", g.Current().Y)
	}
	if c, _ := g.Field().At(6, 18); c.State != tetris.Empty {
		t.Errorf("expected hard drop to leave locking to the next tick, got %s", c.State)
	}
}

func TestTickGravity(t *testing.T) {
	g := tetris.NewTestGame(tetris.J)
	g.Tick(0.5)
	if g.Current().Y != 0 {
		t.Errorf("wanted Y 0 before the delay expires, got %d", g.Current().Y)
	}
	g.Tick(0.5)
	if g.Current().Y != 0 {
		t.Errorf("wanted Y 0 when the timer equals the delay, got %d", g.Current().Y)
	}
	g.Tick(0.1)
	if g.Current().Y != 1 {
		t.Errorf("wanted Y 1 after the delay expires, got %d", g.Current().Y)
	}
	if g.FallTimer() != 0 {
		t.Errorf("wanted the fall timer reset, got %v", g.FallTimer())
	}
}

func TestTickLocksAndSpawns(t *testing.T) {
	g := tetris.NewTestGame(tetris.J)
	g.HardDrop()
	g.Tick(1.1)

	for _, p := range [][2]int{{6, 16}, {6, 17}, {5, 18}, {6, 18}} {
		if c, _ := g.Field().At(p[0], p[1]); c != (tetris.Cell{State: tetris.Locked, Shape: tetris.J}) {
			t.Errorf("%v: wanted a locked J cell, got %+v", p, c)
		}
	}
	if g.Current().Shape != tetris.I || g.Current().Y != 0 {
		t.Errorf("wanted the next I piece at the top, got %+v", g.Current())
	}
	if g.PiecesSpawned() != 2 {
		t.Errorf("wanted 2 pieces spawned, got %d", g.PiecesSpawned())
	}
	if g.Phase() != tetris.Playing {
		t.Errorf("wanted phase playing, got %s", g.Phase())
	}
}

func TestTickClearsLines(t *testing.T) {
	l := &recordingListener{}
	g := tetris.New(&tetris.Options{Listener: l, Rand: rand.New(rand.NewPCG(3, 4))})
	for g.Current().Shape != tetris.I {
		g.NewGame()
	}
	// I at rotation 0 fills column 6, rows 15 to 18. Every other interior
	// cell of those rows is already locked.
	for y := 15; y < 19; y++ {
		for x := 1; x < 11; x++ {
			if x != 6 {
				g.LockTestCell(x, y, tetris.T)
			}
		}
	}
	g.HardDrop()
	g.Tick(1.1)

	if g.LinesRemoved() != 4 || g.Score() != 1600 {
		t.Errorf("wanted 4 lines and 1600 points, got %d and %d", g.LinesRemoved(), g.Score())
	}
	if !reflect.DeepEqual(l.cleared, []int{4}) {
		t.Errorf("wanted one 4-line clear event, got %v", l.cleared)
	}
	for y := range 19 {
		for x := 1; x < 11; x++ {
			if c, _ := g.Field().At(x, y); c.State != tetris.Empty {
				t.Errorf("(%d,%d): wanted empty, got %s", x, y, c.State)
			}
		}
	}
}

func TestHeldDirections(t *testing.T) {
	g := tetris.NewTestGame(tetris.J)
	g.SetHeld(tetris.MoveLeft, true)
	g.Tick(0.01)
	g.Tick(0.01)
	if g.Current().X != 2 {
		t.Errorf("wanted X 2 after two held ticks, got %d", g.Current().X)
	}
	if !g.Held(tetris.MoveLeft) {
		t.Errorf("expected left to be held")
	}
	g.SetHeld(tetris.MoveLeft, false)
	g.Tick(0.01)
	if g.Current().X != 2 {
		t.Errorf("wanted X 2 after release, got %d", g.Current().X)
	}

	g.SetHeld(tetris.MoveRight, true)
	g.SetHeld(tetris.MoveLeft, true)
	g.Tick(0.01)
	if g.Current().X != 2 {
		t.Errorf("wanted both held directions to cancel out, got X %d", g.Current().X)
	}
}

func TestTogglePause(t *testing.T) {
	g := tetris.NewTestGame(tetris.J)
	g.TogglePause()
	if g.Phase() != tetris.Paused {
		t.Fatalf("wanted phase paused, got %s", g.Phase())
	}
	if g.MoveLeft() || g.RotateRight() || g.HardDrop() {
		t.Errorf("expected actions to be rejected while paused")
	}
	g.Tick(5)
	if g.Current().Y != 0 || g.FallTimer() != 0 {
		t.Errorf("expected a paused tick to do nothing, got Y %d timer %v", g.Current().Y, g.FallTimer())
	}
	g.TogglePause()
	if g.Phase() != tetris.Playing {
		t.Errorf("wanted phase playing, got %s", g.Phase())
	}
}

func TestGameOver(t *testing.T) {
	// .	0 1 2 3 4 5 6 7 8 9 10 11
	// 0	# . . . . . . . . . .  #
	// 1	# . . . . O O . . . .  #
	// 2	# . . . . O O . . . .  #
	// 3	# . X X X X X X X X X  #
	// ...
	// 18	# . X X X X X X X X X  #
	g := tetris.NewTestGame(tetris.O)
	for y := 3; y < 19; y++ {
		for x := 2; x < 11; x++ {
			g.LockTestCell(x, y, tetris.T)
		}
	}
	g.Tick(1.1)
	if g.Phase() != tetris.GameOver {
		t.Fatalf("wanted phase game over, got %s", g.Phase())
	}
	if g.LinesRemoved() != 0 {
		t.Errorf("wanted no lines removed, got %d", g.LinesRemoved())
	}

	before := g.Snapshot()
	g.Tick(5)
	if g.MoveLeft() || g.HardDrop() {
		t.Errorf("expected actions to be rejected after game over")
	}
	g.TogglePause()
	if after := g.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("expected no state change after game over")
	}

	g.NewGame()
	if g.Phase() != tetris.Playing || g.PiecesSpawned() != 1 {
		t.Errorf("wanted a fresh game, got phase %s with %d pieces", g.Phase(), g.PiecesSpawned())
	}
	if c, _ := g.Field().At(5, 10); c.State != tetris.Empty {
		t.Errorf("expected new game to clear the field, got %s", c.State)
	}
}

func TestGameOverListener(t *testing.T) {
	l := &recordingListener{}
	g := tetris.New(&tetris.Options{Listener: l, Rand: rand.New(rand.NewPCG(5, 6))})
	for g.Phase() != tetris.GameOver {
		g.HardDrop()
		g.Tick(1.1)
		if g.Current().Shape == g.Next().Shape {
			t.Fatalf("next shape %s repeats the current shape", g.Next().Shape)
		}
	}
	if len(l.gameOver) != 1 {
		t.Errorf("wanted one game over event, got %d", len(l.gameOver))
	}
	if len(l.spawned) != g.PiecesSpawned() {
		t.Errorf("wanted %d spawn events, got %d", g.PiecesSpawned(), len(l.spawned))
	}
}
