package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/noneuclid/pkg/levels"
	"github.com/taigrr/noneuclid/pkg/render"
	"github.com/taigrr/noneuclid/pkg/world"
)

func runPlay(ctx context.Context, o *options) error {
	if o.fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", o.fps)
	}
	// The terminal is in alt-screen mode, so logs only go to a file.
	logger, closeLog, err := o.newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	engine, err := o.newEngine(logger)
	if err != nil {
		return err
	}
	defer engine.Unload()

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	if err := term.Resize(width, height); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}

	// Any-event mouse tracking with SGR coordinates.
	fmt.Fprint(os.Stdout, "\x1b[?1003h\x1b[?1006h")
	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			logger.Error("terminal shutdown", "err", err)
		}
	}()

	in := newInputState()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-term.Events():
				if !ok {
					return nil
				}
				if in.handle(ev) {
					cancel()
					return nil
				}
			}
		}
	})
	g.Go(func() error {
		defer cancel()
		return frameLoop(ctx, o, engine, term, in, width, height, logger)
	})
	return g.Wait()
}

// frameLoop simulates and draws until ctx is done.
func frameLoop(ctx context.Context, o *options, engine *world.Engine, term *uv.Terminal, in *inputState, cols, rows int, logger *log.Logger) error {
	screen := render.NewTerminalRenderer(term, cols, rows)
	fb := render.NewFramebuffer(screen.FramebufferSize())
	hud := NewHUD()

	frameTime := time.Second / time.Duration(o.fps)
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if c, r, ok := in.takeResize(); ok {
			cols, rows = c, r
			term.Erase()
			if err := term.Resize(cols, rows); err != nil {
				return fmt.Errorf("resize terminal: %w", err)
			}
			screen.Resize(cols, rows)
			fb.Resize(screen.FramebufferSize())
		}
		if key, ok := in.takeLevel(); ok {
			if err := switchLevel(engine, key); err != nil {
				logger.Error("switch level", "key", key, "err", err)
			}
		}

		now := time.Now()
		elapsed := now.Sub(last)
		last = now
		if _, err := engine.Advance(elapsed, in.frame()); err != nil {
			return err
		}
		if err := engine.Render(fb); err != nil {
			return err
		}

		showHUD := in.showHUD()
		if showHUD {
			drawCrosshair(fb)
		}
		screen.Render(fb)
		hud.UpdateFPS()
		if showHUD {
			hud.Draw(term, cols, rows, hudStatus{
				level:  engine.Scene().Name(),
				pscale: engine.Player().PScale,
				stats:  engine.Stats(),
			})
		}
		if err := screen.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
	}
}

// switchLevel loads the level for a number key, or reloads the current one
// when key is empty.
func switchLevel(engine *world.Engine, key string) error {
	if key == "" {
		return engine.Load(engine.Scene())
	}
	n, err := strconv.Atoi(key)
	all := levels.All()
	if err != nil || n < 1 || n > len(all) {
		return fmt.Errorf("no level %q", key)
	}
	return engine.Load(all[n-1])
}
