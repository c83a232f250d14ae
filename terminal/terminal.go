// Package terminal plays the game in a raw-mode terminal: it maps key events
// onto engine calls, runs the fixed-timestep frame loop and draws the field.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"termtris/tetris"
	"text/template"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"
)

// Engine is the part of *tetris.Game the terminal drives.
type Engine interface {
	Action(tetris.Action) bool
	TogglePause()
	NewGame()
	Tick(dt float64)
	Snapshot() *tetris.Snapshot
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time { return t.ticker.C }
func (t *wrappedTicker) Stop()               { t.ticker.Stop() }

type Terminal struct {
	writer       io.Writer
	game         Engine
	template     *template.Template
	logger       *slog.Logger
	keysEventsCh <-chan keyboard.KeyEvent
	ticker       Ticker
	frameTime    time.Duration
	now          func() time.Time
}

type Options struct {
	Writer io.Writer
	Logger *slog.Logger
	// FrameTime is the simulation step. Defaults to 1/30s.
	FrameTime time.Duration
}

// New puts the terminal in raw mode and starts listening to the keyboard.
// Close must be called to restore the terminal.
func New(g Engine, o *Options) (*Terminal, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal")
	}
	tp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	kc, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}

	var w io.Writer = os.Stdout
	if o.Writer != nil {
		w = o.Writer
	}
	l := o.Logger
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	ft := o.FrameTime
	if ft <= 0 {
		ft = time.Second / 30
	}
	return &Terminal{
		writer:       w,
		game:         g,
		template:     tp,
		logger:       l,
		keysEventsCh: kc,
		ticker:       newWrappedTicker(ft),
		frameTime:    ft,
		now:          time.Now,
	}, nil
}

func (t *Terminal) Close() {
	t.ticker.Stop()
	keyboard.Close()
}

// Run plays until the player quits or ctx is done. Elapsed time is consumed
// in whole frames: every frame period that has passed runs one Tick, then the
// screen is drawn once.
func (t *Terminal) Run(ctx context.Context) error {
	fmt.Fprint(t.writer, hideCursor)
	defer fmt.Fprint(t.writer, showCursor)

	last := t.now()
	var lag time.Duration
	t.render()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-t.keysEventsCh:
			if !ok {
				return errors.New("keyboard events channel closed unexpectedly")
			}
			if event.Err != nil {
				return fmt.Errorf("keyboard event: %w", event.Err)
			}
			if t.handleKey(event) {
				return nil
			}
			t.render()
		case now := <-t.ticker.C():
			lag += now.Sub(last)
			last = now
			for lag > t.frameTime {
				lag -= t.frameTime
				t.game.Tick(t.frameTime.Seconds())
			}
			t.render()
		}
	}
}

// handleKey forwards a key event to the game and reports whether the player quit.
// Terminals do not report key releases, so moves are issued once per event.
func (t *Terminal) handleKey(event keyboard.KeyEvent) bool {
	switch {
	case event.Key == keyboard.KeyCtrlC || event.Key == keyboard.KeyEsc:
		return true
	case event.Rune == 'p':
		t.game.TogglePause()
	case event.Rune == 'n':
		t.game.NewGame()
	default:
		a, ok := actionFor(event)
		if !ok {
			return false
		}
		moved := t.game.Action(a)
		t.logger.Debug("action", slog.String("action", string(a)), slog.Bool("moved", moved))
	}
	return false
}

func actionFor(event keyboard.KeyEvent) (tetris.Action, bool) {
	switch {
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		return tetris.MoveDown, true
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		return tetris.MoveLeft, true
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		return tetris.MoveRight, true
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'e':
		return tetris.RotateRight, true
	case event.Rune == 'q':
		return tetris.RotateLeft, true
	case event.Key == keyboard.KeySpace:
		return tetris.DropDown, true
	}
	return "", false
}

func (t *Terminal) render() {
	fmt.Fprint(t.writer, resetPos)
	if err := t.template.Execute(t.writer, newFrame(t.game.Snapshot())); err != nil {
		t.logger.Error("unable to execute template", slog.String("error", err.Error()))
	}
}
