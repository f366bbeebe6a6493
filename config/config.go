// Package config loads engine defaults from TOML.
//
//	[undo]
//	max_transactions = 50
//	max_memory_mib = 512
//
//	[brush]
//	shape = "circle"
//	size = 1
//	color = "#000000ff"
//	blend = "alpha"
//	pixel_perfect = false
//
//	[fill]
//	tolerance = 0
//	connectivity = 4
//	contiguous = true
//
//	[parallel]
//	workers = 0
//
// Missing keys keep their defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/pixpaint"
	"github.com/gogpu/pixpaint/brush"
	"github.com/gogpu/pixpaint/fill"
	"github.com/gogpu/pixpaint/undo"
)

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds engine defaults.
type Config struct {
	Undo     Undo     `toml:"undo"`
	Brush    Brush    `toml:"brush"`
	Fill     Fill     `toml:"fill"`
	Parallel Parallel `toml:"parallel"`
}

// Undo configures the undo log caps.
type Undo struct {
	MaxTransactions int   `toml:"max_transactions"`
	MaxMemoryMiB    int64 `toml:"max_memory_mib"`
}

// Brush holds the default paint tool parameters.
type Brush struct {
	Shape        string `toml:"shape"`
	Size         int    `toml:"size"`
	Color        string `toml:"color"`
	Blend        string `toml:"blend"`
	PixelPerfect bool   `toml:"pixel_perfect"`
}

// Fill holds the default fill tool parameters.
type Fill struct {
	Tolerance    int  `toml:"tolerance"`
	Connectivity int  `toml:"connectivity"`
	Contiguous   bool `toml:"contiguous"`
}

// Parallel sizes the worker pool. Zero means GOMAXPROCS.
type Parallel struct {
	Workers int `toml:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Undo: Undo{
			MaxTransactions: undo.DefaultMaxTransactions,
			MaxMemoryMiB:    undo.DefaultMaxBytes >> 20,
		},
		Brush: Brush{
			Shape: "circle",
			Size:  1,
			Color: "#000000ff",
			Blend: "alpha",
		},
		Fill: Fill{
			Connectivity: 4,
			Contiguous:   true,
		},
	}
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses a TOML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Marshal encodes c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports the first out-of-range value.
func (c Config) Validate() error {
	switch {
	case c.Undo.MaxTransactions < 1:
		return fmt.Errorf("%w: undo.max_transactions must be at least 1, got %d", ErrInvalidConfig, c.Undo.MaxTransactions)
	case c.Undo.MaxMemoryMiB < 1:
		return fmt.Errorf("%w: undo.max_memory_mib must be at least 1, got %d", ErrInvalidConfig, c.Undo.MaxMemoryMiB)
	case c.Brush.Size < 1:
		return fmt.Errorf("%w: brush.size must be at least 1, got %d", ErrInvalidConfig, c.Brush.Size)
	case c.Fill.Tolerance < 0 || c.Fill.Tolerance > 255:
		return fmt.Errorf("%w: fill.tolerance must be in 0..255, got %d", ErrInvalidConfig, c.Fill.Tolerance)
	case c.Parallel.Workers < 0:
		return fmt.Errorf("%w: parallel.workers must not be negative, got %d", ErrInvalidConfig, c.Parallel.Workers)
	}
	if _, ok := brush.ParseShape(c.Brush.Shape); !ok {
		return fmt.Errorf("%w: unknown brush.shape %q", ErrInvalidConfig, c.Brush.Shape)
	}
	if _, ok := pixpaint.Hex(c.Brush.Color); !ok {
		return fmt.Errorf("%w: brush.color %q is not a hex color", ErrInvalidConfig, c.Brush.Color)
	}
	if _, ok := pixpaint.ParseBlendMode(c.Brush.Blend); !ok {
		return fmt.Errorf("%w: unknown brush.blend %q", ErrInvalidConfig, c.Brush.Blend)
	}
	if _, ok := fill.ParseConnectivity(c.Fill.Connectivity); !ok {
		return fmt.Errorf("%w: fill.connectivity must be 4 or 8, got %d", ErrInvalidConfig, c.Fill.Connectivity)
	}
	return nil
}

// UndoOptions returns the undo log options for c.
func (c Config) UndoOptions() []undo.Option {
	return []undo.Option{
		undo.WithMaxTransactions(c.Undo.MaxTransactions),
		undo.WithMaxBytes(c.Undo.MaxMemoryMiB << 20),
	}
}

// BrushParams returns the brush parameters for c. c must be valid.
func (c Config) BrushParams() brush.Params {
	shape, _ := brush.ParseShape(c.Brush.Shape)
	color, _ := pixpaint.Hex(c.Brush.Color)
	mode, _ := pixpaint.ParseBlendMode(c.Brush.Blend)
	return brush.Params{
		Shape:        shape,
		Size:         c.Brush.Size,
		Color:        color,
		Blend:        mode,
		PixelPerfect: c.Brush.PixelPerfect,
	}
}

// FillParams returns the fill options for c. c must be valid.
func (c Config) FillParams() fill.Options {
	conn, _ := fill.ParseConnectivity(c.Fill.Connectivity)
	return fill.Options{
		Tolerance:    uint8(c.Fill.Tolerance), //nolint:gosec // validated to 0..255
		Connectivity: conn,
		Contiguous:   c.Fill.Contiguous,
	}
}
