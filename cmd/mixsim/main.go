// Command mixsim is the thin reference driver of spec.md §6: it loads
// configuration, emits initial particles, runs the fixed substep
// pipeline, and periodically writes frames and telemetry. Flag wiring
// follows the cobra single-command pattern the broader example pack uses
// for its own run subcommands (cpmech/gosl-backed gofem and inmap both
// build their CLIs on spf13/cobra).
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mixfluid/config"
	"mixfluid/emit"
	"mixfluid/frameio"
	"mixfluid/preview"
	"mixfluid/sim"
	"mixfluid/simerr"
	"mixfluid/telemetry"
)

var (
	configPath string
	frames     int
	outDir     string
	previewOn  bool
	liveOn     bool
	showMode   string
	debug      bool
)

func main() {
	root := &cobra.Command{
		Use:   "mixsim",
		Short: "multi-phase SPH mixture fluid simulator",
		RunE:  run,
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a YAML config file, overriding embedded defaults")
	root.Flags().IntVar(&frames, "frames", 0, "number of frames to run (0 uses the config value)")
	root.Flags().StringVar(&outDir, "out-dir", "", "directory for exported frames (empty uses the config value)")
	root.Flags().BoolVar(&previewOn, "preview", false, "render a preview image each frame (shown only in the --live window; not written to disk)")
	root.Flags().BoolVar(&liveOn, "live", false, "open a live SDL2 preview window")
	root.Flags().StringVar(&showMode, "show-mode", "", "composition or pressure (empty uses the config value)")
	root.Flags().BoolVar(&debug, "debug", false, "abort on the first index overflow instead of warning once")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode implements spec.md §6's CLI contract: 0 on normal termination,
// nonzero on bucket overflow or invariant failure.
func exitCode(err error) int {
	switch err.(type) {
	case *simerr.IndexOverflow:
		return 2
	default:
		return 1
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	entry := log.WithField("component", "mixsim")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if outDir != "" {
		cfg.Driver.OutDir = outDir
	}
	if frames > 0 {
		cfg.Driver.Frames = frames
	}
	if showMode != "" {
		cfg.Preview.ShowMode = showMode
	}
	if debug {
		cfg.Driver.Debug = true
	}
	sim.Debug = cfg.Driver.Debug

	emitResult, err := emitLayout(cfg)
	if err != nil {
		return err
	}

	system, err := sim.New(cfg.SimConfig(), cfg.GridConfig(), emitResult.Pos, emitResult.Alpha, emitResult.NFluid, emitResult.NWall, entry)
	if err != nil {
		return err
	}

	frameWriter := frameio.Writer{Dir: cfg.Driver.OutDir, Prefix: cfg.Driver.FramePrefix}
	telem, err := telemetry.NewWriter(cfg.Driver.OutDir)
	if err != nil {
		return err
	}
	defer telem.Close()

	var canvas preview.Canvas
	var live *preview.LiveWindow
	if previewOn || liveOn {
		canvas = preview.Canvas{Width: cfg.Preview.Width, Height: cfg.Preview.Height, PixelsPerUnit: float64(cfg.Preview.Width) / cfg.Physics.Bound[0]}
	}
	if liveOn {
		live, err = preview.NewLiveWindow(cfg.Preview.Width, cfg.Preview.Height)
		if err != nil {
			return err
		}
		defer live.Close()
	}

	mode := preview.Composition
	if cfg.Preview.ShowMode == "pressure" {
		mode = preview.Pressure
	}

	for frame := 0; frame < cfg.Driver.Frames; frame++ {
		for sub := 0; sub < cfg.Driver.SubstepsPerFrame; sub++ {
			if err := system.Step(); err != nil {
				entry.WithField("frame", frame).Error(err)
				return err
			}
		}

		if err := frameWriter.WriteFrame(frame, system.FluidPositions()); err != nil {
			entry.Warn(err)
		}
		rec := telemetry.Summarize(frame, system.Pressure, system.Vel, system.RhoBar)
		if err := telem.Write(rec); err != nil {
			entry.Warn(err)
		}

		if previewOn || liveOn {
			verts := preview.BuildVertices(system.Pos, system.NFluid, system.Alpha, cfg.Physics.Phases, system.Pressure, pressureRange(system.Pressure), mode)
			img, err := canvas.Render(verts, fmt.Sprintf("frame %d", frame))
			if err != nil {
				entry.Warn(err)
			} else if live != nil {
				if err := live.Blit(img); err != nil {
					entry.Warn(err)
				}
				if live.PollQuit() {
					entry.Info("preview window closed, stopping at frame boundary")
					break
				}
			}
		}
	}

	return nil
}

func emitLayout(cfg *config.Config) (emit.Result, error) {
	bound := cfg.GridConfig().Bound
	return emit.Emit(emit.Layout{
		Phases: cfg.Physics.Phases,
		Blocks: []emit.BlockSpec{
			{Phase: 0, Min: bound.Scale(0.1), Max: bound.Scale(0.5), Spacing: cfg.Emitter.ParticleDistance},
		},
		Bound:   bound,
		WallGap: cfg.Emitter.ParticleDistance,
		Walls:   cfg.Emitter.WallLayout != "" && cfg.Emitter.WallLayout != "none",
	})
}

func pressureRange(p []float64) [2]float64 {
	if len(p) == 0 {
		return [2]float64{0, 1}
	}
	lo, hi := p[0], p[0]
	for _, v := range p {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return [2]float64{lo, hi}
}
