package stagefx

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gogpu/gg"
)

// ErrInvalidConfig is returned by Validate and LoadConfig for unusable values.
var ErrInvalidConfig = errors.New("stagefx: invalid config")

// DefaultWordmark is the word the intro overlay punches out.
const DefaultWordmark = "EHDU"

// Timings are the three acts of the intro.
type Timings struct {
	Reveal     time.Duration
	Typography time.Duration
	Split      time.Duration
}

// DefaultTimings returns 1200/1200/900 ms.
func DefaultTimings() Timings {
	return Timings{
		Reveal:     1200 * time.Millisecond,
		Typography: 1200 * time.Millisecond,
		Split:      900 * time.Millisecond,
	}
}

// Total returns the length of an unskipped intro.
func (t Timings) Total() time.Duration {
	return t.Reveal + t.Typography + t.Split
}

// IntroConfig configures an IntroSequencer.
type IntroConfig struct {
	Timings  Timings
	Wordmark string
}

// DefaultIntroConfig returns the standard intro.
func DefaultIntroConfig() IntroConfig {
	return IntroConfig{Timings: DefaultTimings(), Wordmark: DefaultWordmark}
}

// Validate reports the first unusable field.
func (c IntroConfig) Validate() error {
	t := c.Timings
	if t.Reveal < 0 || t.Typography < 0 || t.Split < 0 {
		return fmt.Errorf("intro timings %v/%v/%v: %w: negative duration", t.Reveal, t.Typography, t.Split, ErrInvalidConfig)
	}
	return nil
}

// LiquidConfig configures a LiquidText.
type LiquidConfig struct {
	Text          string
	Style         GlyphStyle
	MaxPixelRatio float64
}

// DefaultLiquidConfig returns the default style with the pixel ratio capped at 2.
func DefaultLiquidConfig() LiquidConfig {
	return LiquidConfig{Text: DefaultWordmark, Style: DefaultGlyphStyle(), MaxPixelRatio: DefaultMaxPixelRatio}
}

// Validate reports the first unusable field.
func (c LiquidConfig) Validate() error {
	if c.MaxPixelRatio <= 0 {
		return fmt.Errorf("liquid max pixel ratio %v: %w: must be positive", c.MaxPixelRatio, ErrInvalidConfig)
	}
	s := c.Style
	if s.HeightFill <= 0 || s.WidthFill <= 0 || s.SmallHeightFill <= 0 || s.SmallWidthFill <= 0 {
		return fmt.Errorf("liquid style fills: %w: must be positive", ErrInvalidConfig)
	}
	if s.GlowRadius < 0 {
		return fmt.Errorf("liquid glow radius %v: %w: negative", s.GlowRadius, ErrInvalidConfig)
	}
	for i, st := range s.Gradient {
		if st.Offset < 0 || st.Offset > 1 {
			return fmt.Errorf("liquid gradient stop %d offset %v: %w: outside [0, 1]", i, st.Offset, ErrInvalidConfig)
		}
	}
	return nil
}

// Config bundles both effects' settings.
type Config struct {
	Intro  IntroConfig
	Liquid LiquidConfig
}

// DefaultConfig returns defaults for both effects.
func DefaultConfig() Config {
	return Config{Intro: DefaultIntroConfig(), Liquid: DefaultLiquidConfig()}
}

// Validate checks both sections.
func (c Config) Validate() error {
	if err := c.Intro.Validate(); err != nil {
		return err
	}
	return c.Liquid.Validate()
}

// --- JSON form ---

type configJSON struct {
	Intro  *introJSON  `json:"intro"`
	Liquid *liquidJSON `json:"liquid"`
}

type introJSON struct {
	RevealMs     *int   `json:"reveal_ms"`
	TypographyMs *int   `json:"typography_ms"`
	SplitMs      *int   `json:"split_ms"`
	Wordmark     string `json:"wordmark"`
}

type liquidJSON struct {
	Text          string   `json:"text"`
	MaxPixelRatio *float64 `json:"max_pixel_ratio"`
	GlowRadius    *float64 `json:"glow_radius"`
	Gradient      []string `json:"gradient"`
}

// LoadConfig parses a JSON config. Absent fields keep their defaults.
// Durations are whole milliseconds and gradient stops are hex colors spread
// evenly across the width.
//
//	{"intro": {"reveal_ms": 1200, "wordmark": "EHDU"},
//	 "liquid": {"text": "EHDU", "gradient": ["#00F0FF", "#8B00FF", "#00F0FF"]}}
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	var raw configJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if in := raw.Intro; in != nil {
		setMillis(&cfg.Intro.Timings.Reveal, in.RevealMs)
		setMillis(&cfg.Intro.Timings.Typography, in.TypographyMs)
		setMillis(&cfg.Intro.Timings.Split, in.SplitMs)
		if in.Wordmark != "" {
			cfg.Intro.Wordmark = in.Wordmark
		}
	}
	if lq := raw.Liquid; lq != nil {
		if lq.Text != "" {
			cfg.Liquid.Text = lq.Text
		}
		if lq.MaxPixelRatio != nil {
			cfg.Liquid.MaxPixelRatio = *lq.MaxPixelRatio
		}
		if lq.GlowRadius != nil {
			cfg.Liquid.Style.GlowRadius = *lq.GlowRadius
		}
		if len(lq.Gradient) > 0 {
			stops, err := parseGradient(lq.Gradient)
			if err != nil {
				return cfg, err
			}
			cfg.Liquid.Style.Gradient = stops
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a JSON config file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("read config: %w", err)
	}
	return LoadConfig(data)
}

func setMillis(dst *time.Duration, ms *int) {
	if ms != nil {
		*dst = time.Duration(*ms) * time.Millisecond
	}
}

// parseGradient turns hex colors into evenly spaced gradient stops.
func parseGradient(hex []string) ([]GradientStop, error) {
	stops := make([]GradientStop, len(hex))
	for i, h := range hex {
		c, err := parseHexColor(h)
		if err != nil {
			return nil, fmt.Errorf("gradient stop %d: %w", i, err)
		}
		off := 0.0
		if len(hex) > 1 {
			off = float64(i) / float64(len(hex)-1)
		}
		stops[i] = GradientStop{Offset: off, Color: c}
	}
	return stops, nil
}

// parseHexColor validates a #RGB, #RGBA, #RRGGBB or #RRGGBBAA string and
// converts it with gg.Hex.
func parseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	switch len(h) {
	case 3, 4, 6, 8:
	default:
		return Color{}, fmt.Errorf("color %q: %w: bad length", s, ErrInvalidConfig)
	}
	for _, r := range h {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return Color{}, fmt.Errorf("color %q: %w: not hex", s, ErrInvalidConfig)
		}
	}
	c := gg.Hex(h)
	return Color{R: c.R, G: c.G, B: c.B, A: c.A}, nil
}
