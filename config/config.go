// Package config loads board settings from TOML.
//
// Any key missing from the file keeps its value from Default, so a config file
// only needs the settings it changes:
//
//	rows = 22
//	gravity = "800ms"
//
//	[palette]
//	T = 13
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/plus3/blockfall/grid"
	"github.com/plus3/blockfall/shape"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Duration is a time.Duration that decodes from strings such as "500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config describes one board session.
type Config struct {
	Rows       int            `toml:"rows"`
	Cols       int            `toml:"cols"`
	Background int            `toml:"background"`
	Gravity    Duration       `toml:"gravity"`
	LockDelay  Duration       `toml:"lock_delay"`
	Seed       uint64         `toml:"seed"`
	LogLevel   string         `toml:"log_level"`
	Haptics    bool           `toml:"haptics"`
	Palette    map[string]int `toml:"palette"`
}

// Default returns a standard 20x10 board.
func Default() Config {
	return Config{
		Rows:       20,
		Cols:       10,
		Background: 0,
		Gravity:    Duration{time.Second},
		LockDelay:  Duration{500 * time.Millisecond},
		Seed:       1,
		LogLevel:   "info",
		Haptics:    true,
		Palette: map[string]int{
			"I": 1,
			"O": 2,
			"T": 3,
			"S": 4,
			"Z": 5,
			"J": 6,
			"L": 7,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML text over the defaults and validates the result.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("%w: unknown keys: %s", ErrInvalid, strings.Join(names, ", "))
}

// Validate reports the first setting that cannot describe a playable board.
func (c Config) Validate() error {
	if c.Rows < 4 || c.Cols < 4 {
		return fmt.Errorf("%w: board must be at least 4x4, got %dx%d", ErrInvalid, c.Rows, c.Cols)
	}
	if c.Gravity.Duration <= 0 {
		return fmt.Errorf("%w: gravity must be positive", ErrInvalid)
	}
	if c.LockDelay.Duration < 0 {
		return fmt.Errorf("%w: lock_delay must not be negative", ErrInvalid)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	_, err := c.Markers()
	return err
}

// Bounds returns the grid range for the board, with row 0 as the floor.
func (c Config) Bounds() grid.Bounds {
	return grid.Bounds{RowMin: 0, RowMax: c.Rows - 1, ColMin: 0, ColMax: c.Cols - 1}
}

// BackgroundMarker returns the empty cell marker.
func (c Config) BackgroundMarker() grid.Marker {
	return grid.Marker(c.Background)
}

// Level returns the parsed log level. Invalid levels fall back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Markers resolves the palette into one marker per kind. Every kind needs a
// colour distinct from the background.
func (c Config) Markers() (map[shape.Kind]grid.Marker, error) {
	out := make(map[shape.Kind]grid.Marker, len(c.Palette))

	names := make([]string, 0, len(c.Palette))
	for name := range c.Palette {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		kind, err := shape.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: palette: %v", ErrInvalid, err)
		}
		m := grid.Marker(c.Palette[name])
		if m == c.BackgroundMarker() {
			return nil, fmt.Errorf("%w: palette %s uses the background marker %d", ErrInvalid, name, m)
		}
		out[kind] = m
	}

	for _, kind := range shape.Catalog() {
		if _, ok := out[kind]; !ok {
			return nil, fmt.Errorf("%w: palette missing %s", ErrInvalid, kind)
		}
	}
	return out, nil
}
