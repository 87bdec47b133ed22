package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalid marks configuration errors. They are raised before any
// pipeline stage runs.
var ErrInvalid = errors.New("invalid config")

type Service struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type Services struct {
	VAD           Service `yaml:"vad"`
	Transcription Service `yaml:"transcription"`
}

type Audio struct {
	SampleRate int  `yaml:"sample_rate"`
	EmitTail   bool `yaml:"emit_tail"`
}

type Frames struct {
	LengthS float64 `yaml:"length_s"`
	HopS    float64 `yaml:"hop_s"`
}

type Detection struct {
	OnsetThreshold  float64 `yaml:"onset_threshold"`
	OffsetThreshold float64 `yaml:"offset_threshold"`
	MinSpeechS      float64 `yaml:"min_speech_duration_s"`
	MinSilenceGapS  float64 `yaml:"min_silence_gap_s"`
	PaddingS        float64 `yaml:"padding_s"`
	Smoothing       float64 `yaml:"smoothing"` // EMA weight for the local energy scorer
}

type Transcription struct {
	Enabled     bool `yaml:"enabled"`
	Concurrency int  `yaml:"concurrency"`
	MaxAttempts int  `yaml:"max_attempts"`
}

type Root struct {
	Pipeline struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		LogLvl  string `yaml:"log_level"`
	} `yaml:"pipeline"`
	Audio         Audio         `yaml:"audio"`
	Frames        Frames        `yaml:"frames"`
	Detection     Detection     `yaml:"detection"`
	Transcription Transcription `yaml:"transcription"`
	Services      Services      `yaml:"services"`
	Paths         struct {
		Reports string `yaml:"reports"`
	} `yaml:"paths"`
}

// Default returns the built-in configuration used when no config file is
// found. Thresholds follow the documented pipeline defaults; everything is
// overridable from the file or CLI flags.
func Default() *Root {
	var c Root
	c.Pipeline.Name = "procteo-audio"
	c.Pipeline.LogLvl = "info"
	c.Audio.SampleRate = 16000
	c.Frames.LengthS = 0.5
	c.Frames.HopS = 0.5
	c.Detection.OnsetThreshold = 0.5
	c.Detection.OffsetThreshold = 0.35
	c.Detection.MinSpeechS = 0.3
	c.Detection.MinSilenceGapS = 0.2
	c.Detection.PaddingS = 0.25
	c.Detection.Smoothing = 0.2
	c.Transcription.Concurrency = 2
	c.Transcription.MaxAttempts = 1
	c.Paths.Reports = "reports"
	return &c
}

// Load reads the YAML config for the current CONFIG_ENV, falling back to
// Default when no file exists at any known location.
func Load() (*Root, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadPaths(
		filepath.Join("config", env, "config.yaml"),
		filepath.Join("config", "config.yaml"),
		"config.yaml",
	)
}

// LoadPaths reads the first existing file among paths on top of Default.
// When none exists the defaults are returned as-is.
func LoadPaths(paths ...string) (*Root, error) {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		cfg := Default()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", p, err)
		}
		return cfg, nil
	}
	return Default(), nil
}

// Validate checks threshold ordering and duration sanity. It must be called
// before a run starts; any error here is fatal and wraps ErrInvalid.
func (c *Root) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}
	if c.Audio.SampleRate <= 0 {
		return fail("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Frames.LengthS <= 0 {
		return fail("frames.length_s must be positive, got %g", c.Frames.LengthS)
	}
	if c.Frames.HopS <= 0 || c.Frames.HopS > c.Frames.LengthS {
		return fail("frames.hop_s must be in (0, length_s], got %g", c.Frames.HopS)
	}
	d := c.Detection
	if d.OnsetThreshold < 0 || d.OnsetThreshold > 1 {
		return fail("detection.onset_threshold must be in [0,1], got %g", d.OnsetThreshold)
	}
	if d.OffsetThreshold < 0 || d.OffsetThreshold > d.OnsetThreshold {
		return fail("detection.offset_threshold must be in [0, onset], got %g", d.OffsetThreshold)
	}
	if d.MinSpeechS < 0 || d.MinSilenceGapS < 0 || d.PaddingS < 0 {
		return fail("detection durations must be non-negative")
	}
	if d.Smoothing < 0 || d.Smoothing >= 1 {
		return fail("detection.smoothing must be in [0,1), got %g", d.Smoothing)
	}
	if c.Transcription.Enabled {
		if c.Transcription.Concurrency < 1 {
			return fail("transcription.concurrency must be >= 1, got %d", c.Transcription.Concurrency)
		}
		if c.Transcription.MaxAttempts < 1 {
			return fail("transcription.max_attempts must be >= 1, got %d", c.Transcription.MaxAttempts)
		}
	}
	return nil
}
