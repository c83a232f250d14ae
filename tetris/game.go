package tetris

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	MoveLeft    Action = "left"      // Moves the Tetromino one step to the left.
	MoveRight   Action = "right"     // Moves the Tetromino one step to the right.
	MoveDown    Action = "down"      // Moves the Tetromino one step down.
	DropDown    Action = "drop"      // Drops the Tetromino down the stack.
	RotateRight Action = "rotatecw"  // Rotates the Tetromino clockwise.
	RotateLeft  Action = "rotateccw" // Rotates the Tetromino counter-clockwise.
)

type Phase int

const (
	Playing Phase = iota
	Paused
	GameOver
)

func (p Phase) String() string {
	switch p {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case GameOver:
		return "game over"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// levelThreshold is the number of spawned pieces per level.
const levelThreshold = 20

// lineScores is indexed by the number of lines removed by a single lock.
var lineScores = [...]int{0, 100, 300, 500, 1600}

type Options struct {
	// Width and Height default to DefaultWidth and DefaultHeight.
	Width, Height int
	// Rand picks the shapes. Defaults to a time-seeded source.
	Rand     *rand.Rand
	Logger   *slog.Logger
	Listener Listener
}

// Game owns the field and the session state. It is not safe for concurrent
// use: every call is expected from the goroutine running the frame loop.
type Game struct {
	ID uuid.UUID

	field   *Field
	current Piece
	next    Piece

	level         int
	score         int
	linesRemoved  int
	piecesSpawned int
	piecesDropped int
	fallTimer     float64
	phase         Phase

	heldLeft, heldRight bool

	rng      *rand.Rand
	logger   *slog.Logger
	listener Listener
}

// New returns a Game with a fresh session already in progress.
func New(o *Options) *Game {
	if o == nil {
		o = &Options{}
	}
	w, h := o.Width, o.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	g := &Game{
		field:    NewField(w, h),
		rng:      o.Rand,
		logger:   o.Logger,
		listener: o.Listener,
	}
	if g.rng == nil {
		seed := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}
	if g.listener == nil {
		g.listener = nopListener{}
	}
	g.NewGame()
	return g
}

// NewGame resets every counter, clears the field, deals the first pieces
// and starts playing.
func (g *Game) NewGame() {
	g.ID = uuid.New()
	g.field.Init()
	g.level = 1
	g.score = 0
	g.linesRemoved = 0
	g.piecesSpawned = 0
	g.piecesDropped = 0
	g.fallTimer = 0
	g.heldLeft, g.heldRight = false, false
	g.next = g.spawnPiece(g.randomShape())
	g.spawn()
	g.phase = Playing
	g.listener.GameStarted()
	g.logger.Info("new game", slog.String("game_id", g.ID.String()))
}

func (g *Game) TogglePause() {
	switch g.phase {
	case Playing:
		g.phase = Paused
	case Paused:
		g.phase = Playing
	}
	g.logger.Debug("toggle pause", slog.String("game_id", g.ID.String()), slog.String("phase", g.phase.String()))
}

// Action runs a single player action and reports whether the piece moved.
func (g *Game) Action(a Action) bool {
	switch a {
	case MoveLeft:
		return g.MoveLeft()
	case MoveRight:
		return g.MoveRight()
	case MoveDown:
		return g.StepDown()
	case DropDown:
		return g.HardDrop()
	case RotateRight:
		return g.RotateRight()
	case RotateLeft:
		return g.RotateLeft()
	}
	return false
}

// SetHeld records whether a horizontal move key is held down. Every playing
// tick moves the piece once per held direction.
func (g *Game) SetHeld(a Action, held bool) {
	switch a {
	case MoveLeft:
		g.heldLeft = held
	case MoveRight:
		g.heldRight = held
	}
}

func (g *Game) MoveLeft() bool  { return g.try(g.current.X-1, g.current.Y, g.current.Rotation) }
func (g *Game) MoveRight() bool { return g.try(g.current.X+1, g.current.Y, g.current.Rotation) }

// RotateLeft adds 3 instead of subtracting 1 so the rotation never goes negative.
func (g *Game) RotateLeft() bool  { return g.try(g.current.X, g.current.Y, g.current.Rotation+3) }
func (g *Game) RotateRight() bool { return g.try(g.current.X, g.current.Y, g.current.Rotation+1) }

// StepDown moves the piece one row down and reports false once it rests.
func (g *Game) StepDown() bool { return g.try(g.current.X, g.current.Y+1, g.current.Rotation) }

// HardDrop steps the piece down until it rests. It counts as one drop no
// matter how far the piece fell and reports whether it fell at all.
func (g *Game) HardDrop() bool {
	if g.phase != Playing {
		return false
	}
	moved := false
	for g.StepDown() {
		moved = true
	}
	g.piecesDropped++
	return moved
}

// try commits the position when it fits. A rejected move leaves the piece as it was.
func (g *Game) try(x, y, rotation int) bool {
	if g.phase != Playing || !g.field.Fit(g.current, x, y, rotation) {
		return false
	}
	g.current.X, g.current.Y, g.current.Rotation = x, y, rotation
	return true
}

// Tick advances the simulation by dt seconds.
func (g *Game) Tick(dt float64) {
	if g.phase != Playing {
		return
	}
	if g.heldLeft {
		g.MoveLeft()
	}
	if g.heldRight {
		g.MoveRight()
	}

	g.fallTimer += dt
	if g.piecesSpawned >= levelThreshold*g.level {
		g.level++
		g.listener.LevelUp(g.level)
		g.logger.Debug("level up", slog.String("game_id", g.ID.String()), slog.Int("level", g.level))
	}
	if g.fallTimer <= g.FallDelay() {
		return
	}
	g.fallTimer = 0
	if g.StepDown() {
		return
	}

	g.lock()
	g.checkLines()
	g.spawn()
	if !g.field.Fit(g.current, g.current.X, g.current.Y, g.current.Rotation) {
		g.phase = GameOver
		g.listener.GameOver(g.score)
		g.logger.Info("game over",
			slog.String("game_id", g.ID.String()),
			slog.Int("score", g.score),
			slog.Int("lines", g.linesRemoved),
			slog.Int("level", g.level),
		)
	}
}

// FallDelay is the number of seconds between gravity steps. It reaches zero
// at level 3 and keeps decreasing; a non-positive delay drops the piece on
// every tick.
func (g *Game) FallDelay() float64 {
	return 1.0 - 0.5*float64(g.level-1)
}

func (g *Game) spawnPiece(s ShapeID) Piece {
	return Piece{Shape: s, X: g.field.width/2 - 2}
}

func (g *Game) randomShape() ShapeID {
	return Shapes[g.rng.IntN(len(Shapes))]
}

// spawn promotes the next piece to current and deals a next piece of a
// different shape.
func (g *Game) spawn() {
	g.current = g.spawnPiece(g.next.Shape)
	s := g.randomShape()
	for s == g.current.Shape {
		s = g.randomShape()
	}
	g.next = g.spawnPiece(s)
	g.piecesSpawned++
	g.listener.PieceSpawned(g.current.Shape)
}

// lock copies the current piece into the field. The position was validated
// by the last successful move.
func (g *Game) lock() {
	for _, c := range g.current.Cells() {
		g.field.set(c[0], c[1], Cell{State: Locked, Shape: g.current.Shape})
	}
}

// checkLines removes the full rows covered by the current piece's box, top
// to bottom, and scores them. It returns the number of rows removed.
func (g *Game) checkLines() int {
	var lines []int
	for py := range 4 {
		y := g.current.Y + py
		if y >= g.field.height-1 {
			break
		}
		if g.field.rowFull(y) {
			lines = append(lines, y)
		}
	}
	if len(lines) == 0 {
		return 0
	}
	for _, y := range lines {
		g.field.collapse(y)
	}

	points := lineScores[len(lines)]
	g.score += points
	g.linesRemoved += len(lines)
	g.listener.LinesCleared(len(lines), points)
	g.logger.Debug("lines cleared",
		slog.String("game_id", g.ID.String()),
		slog.Int("lines", len(lines)),
		slog.Int("score", g.score),
	)
	return len(lines)
}

func (g *Game) Field() *Field      { return g.field }
func (g *Game) Current() Piece     { return g.current }
func (g *Game) Next() Piece        { return g.next }
func (g *Game) Level() int         { return g.level }
func (g *Game) Score() int         { return g.score }
func (g *Game) LinesRemoved() int  { return g.linesRemoved }
func (g *Game) PiecesSpawned() int { return g.piecesSpawned }
func (g *Game) PiecesDropped() int { return g.piecesDropped }
func (g *Game) Phase() Phase       { return g.phase }
func (g *Game) FallTimer() float64 { return g.fallTimer }

// Held reports whether SetHeld marked the direction as held.
func (g *Game) Held(a Action) bool {
	return (a == MoveLeft && g.heldLeft) || (a == MoveRight && g.heldRight)
}

// Snapshot is a copy of the game state that stays valid after the game moves on.
type Snapshot struct {
	ID            uuid.UUID
	Stack         [][]Cell // [y][x]
	Current       Piece
	Next          Piece
	Level         int
	Score         int
	LinesRemoved  int
	PiecesSpawned int
	PiecesDropped int
	Phase         Phase
}

// Snapshot returns a copy of the current state for renderers.
func (g *Game) Snapshot() *Snapshot {
	return &Snapshot{
		ID:            g.ID,
		Stack:         g.field.Rows(),
		Current:       g.current,
		Next:          g.next,
		Level:         g.level,
		Score:         g.score,
		LinesRemoved:  g.linesRemoved,
		PiecesSpawned: g.piecesSpawned,
		PiecesDropped: g.piecesDropped,
		Phase:         g.phase,
	}
}
