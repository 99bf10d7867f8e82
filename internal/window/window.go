// Package window hosts a benchmark in a desktop window.
//
// The window's game loop is the event loop: every Update performs exactly one
// benchmark activation on the UI thread, and Draw presents the canvas that
// activation produced.
package window

import (
	"context"
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/wesleyorama2/chartperf/internal/bench"
	"github.com/wesleyorama2/chartperf/internal/config"
)

// Stepper is advanced once per tick of the window loop.
type Stepper interface {
	Step() (bench.State, error)
	Image() *image.RGBA
}

// Run opens a window for cfg and blocks until s reports Done, s fails, ctx
// is cancelled, or the window is closed. A cancelled ctx returns ctx.Err().
func Run(ctx context.Context, name string, cfg config.WindowConfig, s Stepper) error {
	g := newGame(ctx, s, cfg)

	title := cfg.Title
	if title == "" {
		title = name
	}
	ebiten.SetWindowTitle("chartperf - " + title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetVsyncEnabled(false)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type game struct {
	ctx    context.Context
	s      Stepper
	width  int
	height int
	frame  *ebiten.Image
	done   bool
}

func newGame(ctx context.Context, s Stepper, cfg config.WindowConfig) *game {
	return &game{ctx: ctx, s: s, width: cfg.Width, height: cfg.Height}
}

func (g *game) Update() error {
	if g.done {
		return ebiten.Termination
	}
	if err := g.ctx.Err(); err != nil {
		return err
	}
	state, err := g.s.Step()
	if err != nil {
		return err
	}
	g.done = state == bench.Done
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	img := g.s.Image()
	b := img.Bounds()
	if g.frame == nil || g.frame.Bounds().Dx() != b.Dx() || g.frame.Bounds().Dy() != b.Dy() {
		if g.frame != nil {
			g.frame.Deallocate()
		}
		g.frame = ebiten.NewImage(b.Dx(), b.Dy())
	}

	g.frame.WritePixels(img.Pix)
	screen.DrawImage(g.frame, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
