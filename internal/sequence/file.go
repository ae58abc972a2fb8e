package sequence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Parse decodes a program. JSON is read by the same decoder since it is
// valid YAML.
func Parse(data []byte) (Program, error) {
	var prog Program
	if err := yaml.Unmarshal(data, &prog); err != nil {
		return Program{}, err
	}
	if len(prog.Clips) == 0 {
		return Program{}, ErrNoClips
	}
	for i, c := range prog.Clips {
		if c.DurationS <= 0 {
			return Program{}, fmt.Errorf("clip %d (%q): durationS must be > 0", i, c.Name)
		}
	}
	return prog, nil
}

// LoadFile reads a .yaml, .yml or .json show program.
func LoadFile(path string) (Program, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return Program{}, fmt.Errorf("show %s: unsupported extension", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Program{}, err
	}
	prog, err := Parse(data)
	if err != nil {
		return Program{}, fmt.Errorf("show %s: %w", path, err)
	}
	return prog, nil
}

// Watch calls onLoad with every successfully re-read version of path until
// ctx is done. The directory is watched so editors that replace the file
// are seen too. Bad edits are logged and skipped.
func Watch(ctx context.Context, path string, onLoad func(Program)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	lg := log.With().Str("component", "show").Str("path", path).Logger()

	const settle = 100 * time.Millisecond
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			lg.Warn().Err(err).Msg("watch")
		case <-timer.C:
			prog, err := LoadFile(abs)
			if err != nil {
				lg.Warn().Err(err).Msg("reload failed")
				continue
			}
			lg.Info().Int("clips", len(prog.Clips)).Msg("reloaded")
			onLoad(prog)
		}
	}
}
