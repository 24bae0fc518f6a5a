package main

import (
	"fmt"
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/taigrr/noneuclid/pkg/levels"
	"github.com/taigrr/noneuclid/pkg/render"
	"github.com/taigrr/noneuclid/pkg/world"
)

func newSnapshotCmd(o *options) *cobra.Command {
	var (
		out           string
		width, height int
		steps         int
		walk          bool
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render one frame of a level to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if width <= 0 || height <= 0 {
				return fmt.Errorf("invalid size %dx%d", width, height)
			}
			logger, closeLog, err := o.newLogger(os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			engine, err := o.newEngine(logger)
			if err != nil {
				return err
			}
			defer engine.Unload()

			in := world.Input{}
			if walk {
				in.Forward = 1
			}
			for range steps {
				if err := engine.Step(in); err != nil {
					return err
				}
			}

			fb := render.NewFramebuffer(width, height)
			if err := engine.Render(fb); err != nil {
				return err
			}
			if err := fb.SavePNG(out); err != nil {
				return err
			}
			st := engine.Stats()
			logger.Info("snapshot saved",
				"path", out,
				"level", engine.Scene().Name(),
				"passes", st.Passes,
				"portals", st.PortalsDrawn,
				"pscale", engine.Player().PScale,
			)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "frame.png", "output PNG path")
	f.IntVar(&width, "width", 320, "image width in pixels")
	f.IntVar(&height, "height", 180, "image height in pixels")
	f.IntVar(&steps, "steps", 0, "simulation steps to run before rendering")
	f.BoolVar(&walk, "walk", false, "walk forward during the simulation steps")
	return cmd
}

var (
	levelName = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5fd7ff")).Width(10)
	levelDesc = lipgloss.NewStyle().Faint(true)
)

func printLevels(w io.Writer) error {
	for i, s := range levels.All() {
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			fmt.Sprintf("%d  ", i+1),
			levelName.Render(s.Name()),
			levelDesc.Render(s.Description()),
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
