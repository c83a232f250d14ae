package terminal

import (
	_ "embed"
	"fmt"
	"strings"
	"termtris/tetris"
	"text/template"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	resetPos   = "\033[H"              // Reset cursor position to 0,0
	hideCursor = "\033[2J\033[?25l"    // also clear screen
	showCursor = "\033[?25h\033[0m\r\n" // restores cursor and colors

	emptyCell = "  "
	wallCell  = "\x1b[2m##\x1b[0m"

	sideWidth = 24
)

//go:embed "layout.tmpl"
var layout string

var colors = [...]string{
	tetris.I: Cyan,
	tetris.J: Blue,
	tetris.L: Orange,
	tetris.O: Yellow,
	tetris.S: Green,
	tetris.Z: Red,
	tetris.T: Magenta,
}

// frame is the data the layout template renders.
type frame struct {
	Rows []string
	Side []string
}

func loadTemplate() (*template.Template, error) {
	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	l = strings.ReplaceAll(l, "Terminal Tetris", "\033[1mTerminal Tetris\033[0m")
	return template.New("layout").Parse(l)
}

func block(s tetris.ShapeID) string {
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", colors[s])
}

func newFrame(s *tetris.Snapshot) *frame {
	f := &frame{Rows: fieldRows(s), Side: sidebar(s)}
	for len(f.Rows) < len(f.Side) {
		f.Rows = append(f.Rows, "")
	}
	for len(f.Side) < len(f.Rows) {
		f.Side = append(f.Side, "")
	}
	for i, l := range f.Side {
		f.Side[i] = fmt.Sprintf("%-*s", sideWidth, l)
	}
	return f
}

// fieldRows renders the stack with the current piece drawn over it.
func fieldRows(s *tetris.Snapshot) []string {
	cells := make([][]string, len(s.Stack))
	for y, row := range s.Stack {
		cells[y] = make([]string, len(row))
		for x, c := range row {
			switch c.State {
			case tetris.Boundary:
				cells[y][x] = wallCell
			case tetris.Locked:
				cells[y][x] = block(c.Shape)
			default:
				cells[y][x] = emptyCell
			}
		}
	}

	if s.Current.Shape.Valid() {
		for _, p := range s.Current.Cells() {
			x, y := p[0], p[1]
			if y >= 0 && y < len(cells) && x >= 0 && x < len(cells[y]) {
				cells[y][x] = block(s.Current.Shape)
			}
		}
	}

	rendered := make([]string, len(cells))
	for y, row := range cells {
		rendered[y] = strings.Join(row, "")
	}
	return rendered
}

func nextPiece(s *tetris.Snapshot) []string {
	rendered := make([]string, 4)
	for py := range 4 {
		row := []string{emptyCell, emptyCell, emptyCell, emptyCell}
		for px := range 4 {
			if s.Next.Shape.Occupied(px, py, 0) {
				row[px] = block(s.Next.Shape)
			}
		}
		rendered[py] = strings.Join(row, "")
	}
	return rendered
}

func sidebar(s *tetris.Snapshot) []string {
	side := []string{"NEXT"}
	side = append(side, nextPiece(s)...)
	side = append(side,
		"",
		fmt.Sprintf("LEVEL  %8d", s.Level),
		fmt.Sprintf("SCORE  %8d", s.Score),
		fmt.Sprintf("LINES  %8d", s.LinesRemoved),
		fmt.Sprintf("PIECES %8d", s.PiecesSpawned),
		fmt.Sprintf("DROPS  %8d", s.PiecesDropped),
		"",
	)
	switch s.Phase {
	case tetris.Paused:
		side = append(side, "PAUSED")
	case tetris.GameOver:
		side = append(side, "GAME OVER")
	default:
		side = append(side, "")
	}
	return append(side,
		"",
		"a/d move    s down",
		"e/q rotate  space drop",
		"p pause  n new  esc quit",
	)
}
