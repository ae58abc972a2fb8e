package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-embers/internal/app"
	"github.com/coreman2200/funtimes-embers/internal/audio"
	"github.com/coreman2200/funtimes-embers/internal/config"
	"github.com/coreman2200/funtimes-embers/internal/layout"
	"github.com/coreman2200/funtimes-embers/internal/led"
	"github.com/coreman2200/funtimes-embers/internal/render"
	"github.com/coreman2200/funtimes-embers/internal/sequence"
	"github.com/coreman2200/funtimes-embers/internal/term"
)

func main() {
	// ---- Flags (remain usable; the config file can override most) ----
	var (
		x          = flag.Int("x", 5, "LEDs per row (X)")
		y          = flag.Int("y", 26, "LED rows per panel (Y)")
		z          = flag.Int("z", 5, "Panels/depth (Z)")
		xFlip      = flag.Bool("x-flip-every-row", true, "serpentine: flip every row along X")
		yFlip      = flag.Bool("y-flip-every-panel", true, "serpentine: flip every panel along Y")
		pitchMM    = flag.Float64("pitch-mm", 10, "LED pitch (mm)")
		panelGapMM = flag.Float64("panel-gap-mm", 50, "panel gap (mm) along Z")
		fps        = flag.Int("fps", 60, "target frames per second")
		brightness = flag.Float64("brightness", 0.8, "global brightness 0..1")
		driver     = flag.String("driver", "sim", "driver: spi | sim")
		colorOrder = flag.String("color", "GRB", "LED color order (e.g. GRB, RGB)")
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		configPath = flag.String("config", "config.yaml", "path to config.yaml or config.toml")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")

		effectName = flag.String("effect", "shell", "effect used by random spawns")
		preset     = flag.String("preset", "", "preset of -effect (first preset if empty)")
		spawnP     = flag.Float64("spawn", 0.05, "random launch probability per frame")
		maxLive    = flag.Int("max-live", 12, "max live emitters for random launches (0 = unbounded)")
		seed       = flag.Int64("seed", 0, "random seed (0 = time based)")
		showPath   = flag.String("show", "", "show program (.yaml/.json) to load")
		watch      = flag.Bool("watch", false, "reload the show when the file changes")
		termView   = flag.Bool("term", false, "draw a preview in this terminal")
		toneMap    = flag.Bool("tone-map", false, "filmic tone curve on the cube instead of linear output")
		wavPath    = flag.String("wav", "", "write a soundtrack of launches and bursts on exit")
		logPath    = flag.String("log", "", "log file (default stdout, or embers.log with -term)")
	)
	flag.Parse()

	// ---- Load config (optional) ----
	var cfg *config.Config
	var cfgErr error
	if c, err := config.Load(*configPath); err != nil {
		cfgErr = err
	} else {
		cfg = c
	}

	// ---- Effective params (config overrides flags where available) ----
	eX, eY, eZ := *x, *y, *z
	eXFlip, eYFlip := *xFlip, *yFlip
	ePitch, eGap := *pitchMM, *panelGapMM
	eFPS, eBright := *fps, *brightness
	eColor, eAddr := *colorOrder, *addr
	eEffect, ePreset := *effectName, *preset
	eSpawn := render.SpawnPolicy{Probability: *spawnP, MaxLive: *maxLive}
	eSeed := *seed
	eShow, eWatch, eStart := *showPath, *watch, *showPath != ""
	eTerm, eWAV := *termView, *wavPath
	eToneMap := *toneMap
	bounds, camera := render.DefaultLaunchBounds, render.DefaultCamera
	var power app.Power
	var params map[string]float64

	if cfg != nil {
		if cfg.Dim.X > 0 {
			eX = cfg.Dim.X
		}
		if cfg.Dim.Y > 0 {
			eY = cfg.Dim.Y
		}
		if cfg.Dim.Z > 0 {
			eZ = cfg.Dim.Z
		}
		eXFlip = eXFlip || cfg.XFlipEveryRow
		eYFlip = eYFlip || cfg.YFlipEveryPanel
		ePitch = firstNonZeroFloat(cfg.PitchMM, ePitch)
		eGap = firstNonZeroFloat(cfg.PanelGapMM, eGap)
		if cfg.FPS > 0 {
			eFPS = cfg.FPS
		}
		if cfg.Brightness > 0 {
			eBright = cfg.Brightness
		}
		if cfg.ColorOrder != "" {
			eColor = cfg.ColorOrder
		}
		if cfg.Addr != "" {
			eAddr = cfg.Addr
		}
		if cfg.Effect != "" {
			eEffect, ePreset = cfg.Effect, cfg.Preset
		}
		eSpawn.Probability = firstNonZeroFloat(cfg.Spawn.Probability, eSpawn.Probability)
		if cfg.Spawn.MaxLive > 0 {
			eSpawn.MaxLive = cfg.Spawn.MaxLive
		}
		if cfg.Seed != 0 {
			eSeed = cfg.Seed
		}
		if cfg.Show.Path != "" {
			eShow, eWatch, eStart = cfg.Show.Path, eWatch || cfg.Show.Watch, cfg.Show.Start
		}
		eTerm = eTerm || cfg.Term
		if cfg.WAV != "" {
			eWAV = cfg.WAV
		}
		if !cfg.Bounds.IsZero() {
			bounds = render.Bounds{Min: mgl64.Vec3(cfg.Bounds.Min), Max: mgl64.Vec3(cfg.Bounds.Max)}
		}
		if !cfg.Camera.IsZero() {
			camera = render.Camera{Min: mgl64.Vec3(cfg.Camera.Min), Max: mgl64.Vec3(cfg.Camera.Max)}
		}
		eToneMap = eToneMap || cfg.ToneMap
		power = app.Power{LimitAmps: cfg.Power.LimitAmps, WhiteCap: cfg.Power.WhiteCap, SoftStartMs: cfg.Power.SoftStartMs}
		params = cfg.Params
	}

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	out := os.Stdout
	if *logPath == "" && eTerm {
		*logPath = "embers.log"
	}
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal().Err(err).Str("path", *logPath).Msg("open log")
		}
		defer f.Close()
		out = f
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: out != os.Stdout})
	if cfgErr != nil {
		log.Warn().Err(cfgErr).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	}

	// ---- Build layout ----
	l := layout.Layout{
		Dim:        layout.Dim{X: eX, Y: eY, Z: eZ},
		Order:      layout.Serpentine{XFlipEveryRow: eXFlip, YFlipEveryPanel: eYFlip},
		PanelGapMM: eGap,
		PitchMM:    ePitch,
	}

	// ---- Driver selection: -sim-only overrides; otherwise config.driver then -driver ----
	selected := *driver
	if cfg != nil && cfg.Driver != "" {
		selected = cfg.Driver
	}
	if *simOnly {
		selected = "sim"
	}
	var drv led.Driver
	switch selected {
	case "sim":
		drv = led.NewSim(l.Count())
	case "spi":
		o := led.SPIOpts{Count: l.Count(), ColorOrder: eColor}
		if cfg != nil {
			o.Dev, o.SpeedHz = cfg.SPI.Dev, cfg.SPI.SpeedHz
		}
		d, err := led.NewSPI(o)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "spi").
				Str("dev", o.Dev).
				Int("speed_hz", o.SpeedHz).
				Msg("SPI init failed; falling back to SIM")
			drv = led.NewSim(l.Count())
			selected = "sim"
		} else {
			drv = d
		}
	default:
		log.Warn().Str("driver", selected).Msg("unknown driver; using SIM")
		drv = led.NewSim(l.Count())
		selected = "sim"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Extra sinks ----
	var sinks []render.Sink
	var preview *term.Preview
	if eTerm {
		p, err := term.Open(camera)
		if err != nil {
			log.Warn().Err(err).Msg("terminal preview unavailable")
		} else {
			preview = p
			sinks = append(sinks, p)
		}
	}
	if eWAV != "" {
		sinks = append(sinks, audio.NewRecorder(eWAV, camera, eSeed))
	}

	// ---- Show ----
	var show *sequence.Program
	if eShow != "" {
		prog, err := sequence.LoadFile(eShow)
		if err != nil {
			log.Warn().Err(err).Msg("show load failed; running without a show")
		} else {
			show = &prog
		}
	}

	core, err := app.InitCore(ctx, app.Options{
		Layout:     l,
		Driver:     drv,
		Bounds:     bounds,
		Camera:     camera,
		FPS:        eFPS,
		Effect:     eEffect,
		Preset:     ePreset,
		Spawn:      eSpawn,
		Seed:       eSeed,
		Brightness: eBright,
		Power:      power,
		ToneMap:    eToneMap,
		Params:     params,
		Sinks:      sinks,
		Show:       show,
		StartShow:  eStart,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}

	if eShow != "" && eWatch {
		go func() {
			err := sequence.Watch(ctx, eShow, func(p sequence.Program) {
				if err := core.LoadShow(p); err != nil {
					log.Warn().Err(err).Msg("show reload")
				}
			})
			if err != nil {
				log.Warn().Err(err).Str("path", eShow).Msg("show watch unavailable")
			}
		}()
	}
	if preview != nil {
		preview.SetStatus(eEffect)
		go preview.Events(ctx, stop, func() {
			if err := core.Launch("", "", nil); err != nil {
				log.Warn().Err(err).Msg("launch")
			}
		})
	}

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	core.Hub.Routes(mux)

	srv := &http.Server{
		Addr:         eAddr,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", eAddr).Str("driver", selected).Str("effect", eEffect).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	log.Info().Msg("shutting down")
	_ = srv.Close()
	if err := core.Close(); err != nil {
		log.Warn().Err(err).Msg("close")
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func firstNonZeroFloat(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}
