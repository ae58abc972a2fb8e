// showsim runs the engine headless at a fixed step and logs a summary once
// per simulated second. The same seed gives the same run.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-embers/internal/app"
	"github.com/coreman2200/funtimes-embers/internal/audio"
	"github.com/coreman2200/funtimes-embers/internal/driver/fake"
	"github.com/coreman2200/funtimes-embers/internal/layout"
	"github.com/coreman2200/funtimes-embers/internal/led"
	"github.com/coreman2200/funtimes-embers/internal/particle"
	"github.com/coreman2200/funtimes-embers/internal/render"
	"github.com/coreman2200/funtimes-embers/internal/sequence"
)

func main() {
	var (
		showPath = flag.String("show", "", "show program (.yaml/.json); without it the spawn policy runs")
		seconds  = flag.Float64("seconds", 10, "simulated seconds")
		fps      = flag.Int("fps", 60, "simulation steps per second")
		seed     = flag.Int64("seed", 1, "random seed")
		effect   = flag.String("effect", "burst", "effect for random spawns")
		preset   = flag.String("preset", "", "preset of -effect")
		spawnP   = flag.Float64("spawn", 0.05, "random launch probability per step")
		maxLive  = flag.Int("max-live", 8, "max live emitters for random launches")
		cube     = flag.Bool("cube", true, "also voxelize onto a simulated 5x26x5 cube")
		wavPath  = flag.String("wav", "", "write a soundtrack")
		jsonLogs = flag.Bool("json", false, "JSON logs instead of console")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	if !*jsonLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}

	opts := app.Options{
		FPS:    *fps,
		Effect: *effect,
		Preset: *preset,
		Spawn:  render.SpawnPolicy{Probability: *spawnP, MaxLive: *maxLive},
		Seed:   *seed,
		Manual: true,
	}
	if *showPath != "" {
		prog, err := sequence.LoadFile(*showPath)
		if err != nil {
			log.Fatal().Err(err).Msg("show")
		}
		opts.Show, opts.StartShow = &prog, true
		opts.Spawn = render.SpawnPolicy{}
	}
	if *cube {
		opts.Layout = layout.Layout{
			Dim:   layout.Dim{X: 5, Y: 26, Z: 5},
			Order: layout.Serpentine{XFlipEveryRow: true, YFlipEveryPanel: true},
		}
		opts.Driver = led.NewSim(opts.Layout.Count())
	}
	summary := fake.New(max(1, *fps), 0)
	opts.Sinks = append(opts.Sinks, summary)
	if *wavPath != "" {
		opts.Sinks = append(opts.Sinks, audio.NewRecorder(*wavPath, render.DefaultCamera, *seed))
	}

	core, err := app.InitCore(context.Background(), opts)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}

	steps := int(*seconds * float64(max(1, *fps)))
	start := time.Now()
	ran := app.NewConductor(core, *fps).RunFor(context.Background(), steps, func(i int) bool {
		if opts.Show == nil {
			return true
		}
		if st := core.Status().Show.(sequence.Status); st.State == sequence.Idle {
			log.Info().Int("step", i).Msg("show finished")
			return false
		}
		return true
	})
	if err := core.Close(); err != nil {
		log.Warn().Err(err).Msg("close")
	}
	log.Info().
		Int("steps", ran).
		Int("launched", summary.Total(particle.EventLaunched)).
		Dur("wall", time.Since(start)).
		Msg("done")
}
