package canopy

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunOptions tweaks Run.
type RunOptions struct {
	// QuitOnEscape ends the game loop when Escape is pressed.
	QuitOnEscape bool
	// Input, when set, replaces the engine's input source.
	Input InputSource
}

// game adapts an Engine to ebiten.Game.
type game struct {
	engine   *Engine
	renderer *EbitenRenderer
	opts     RunOptions
	err      error
}

func (g *game) Update() error {
	if g.err != nil {
		return g.err
	}
	if g.opts.QuitOnEscape && inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return g.engine.Update(1 / float64(ebiten.TPS()))
}

func (g *game) Draw(screen *ebiten.Image) {
	g.renderer.SetTarget(screen)
	if err := g.engine.Draw(1 / float64(ebiten.TPS())); err != nil {
		// Surfaced from the next Update, which ends the loop.
		g.err = err
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.engine.SetWindowSize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Run opens a window sized by the engine config, runs the Initialize and
// LoadContent phases, and drives Update and Draw from the ebiten game loop
// until the window closes or an error occurs. The engine draws through an
// EbitenRenderer; any other renderer is replaced.
func Run(e *Engine, opts RunOptions) error {
	r, ok := e.renderer.(*EbitenRenderer)
	if !ok {
		r = NewEbitenRenderer(nil)
		e.SetRenderer(r)
	}
	if opts.Input != nil {
		e.SetInputSource(opts.Input)
	}
	if err := e.Initialize(); err != nil {
		return err
	}
	if err := e.LoadContent(); err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			e.log.Warn("close engine", "err", err)
		}
	}()

	w := e.cfg.Window
	ebiten.SetWindowSize(w.Width, w.Height)
	ebiten.SetWindowTitle(w.Title)
	return ebiten.RunGame(&game{engine: e, renderer: r, opts: opts})
}
