package fractal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Config is the on-disk description of one render.
//
// Params holds the parameters of the selected kind and is decoded over the
// kind's defaults, so a config only names what it changes. Either Viewport
// or Fit must be given; Fit frames the fractal's natural bounds.
type Config struct {
	Kind      Kind            `json:"kind"`
	Viewport  *Viewport       `json:"viewport,omitempty"`
	Fit       *FitConfig      `json:"fit,omitempty"`
	Antialias int             `json:"antialias"`
	ColorMap  *ColorMapConfig `json:"color_map,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`

	// Spec and View are resolved by LoadConfig.
	Spec Spec     `json:"-"`
	View Viewport `json:"-"`
}

// FitConfig frames the natural bounds of a fractal in a cols x rows image.
type FitConfig struct {
	Cols    int     `json:"cols"`
	Rows    int     `json:"rows"`
	Padding float64 `json:"padding,omitempty"`
}

// ColorMapConfig describes a ColorMap. An empty stop list selects
// DefaultColorMap (or RainbowColorMap for the pendulum).
type ColorMapConfig struct {
	Stops     []ColorStop `json:"stops,omitempty"`
	Sentinel  *RGBA       `json:"sentinel,omitempty"`
	TableSize int         `json:"table_size,omitempty"`
}

// NewSpec returns the default parameters for kind.
func NewSpec(kind Kind) (Spec, error) {
	switch kind {
	case KindMandelbrot:
		return DefaultMandelbrot(), nil
	case KindJulia:
		return DefaultJulia(), nil
	case KindBarnsleyFern:
		return DefaultBarnsleyFern(), nil
	case KindSierpinski:
		return DefaultSierpinski(), nil
	case KindPendulum:
		return DefaultPendulum(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// NaturalBounds returns the parameter-space region that frames spec.
func NaturalBounds(spec Spec) Rect {
	switch s := spec.(type) {
	case *BarnsleyFernSpec:
		return s.Bounds()
	case *SierpinskiSpec:
		return s.Bounds()
	case *JuliaSpec:
		return Rect{Min: Pt(-1.6, -1), Max: Pt(1.6, 1)}
	case *PendulumSpec:
		return Rect{Min: Pt(-3*math.Pi, -6), Max: Pt(3*math.Pi, 6)}
	default:
		return Rect{Min: Pt(-2.5, -1.25), Max: Pt(1, 1.25)}
	}
}

// LoadConfig decodes and validates a JSON config. Unknown fields are
// rejected. The returned error matches ErrInvalidConfig for every
// validation problem.
func LoadConfig(r io.Reader) (*Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidConfig, err)
	}

	spec, err := NewSpec(c.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(c.Params) > 0 {
		// Decoding into a non-empty slice reuses its elements, so
		// user-supplied maps would inherit omitted default coefficients.
		if fern, ok := spec.(*BarnsleyFernSpec); ok && hasParam(c.Params, "maps") {
			fern.Maps = nil
		}
		pd := json.NewDecoder(bytes.NewReader(c.Params))
		pd.DisallowUnknownFields()
		if err := pd.Decode(spec); err != nil {
			return nil, fmt.Errorf("%w: %s params: %w", ErrInvalidConfig, c.Kind, err)
		}
	}
	c.Spec = spec

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// hasParam reports whether the params object names key. Matching is
// case-insensitive, as in encoding/json.
func hasParam(params json.RawMessage, key string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(params, &fields); err != nil {
		return false
	}
	for k := range fields {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// LoadConfigFile reads and decodes a config file.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return LoadConfig(f)
}

// Validate checks every part of the config and resolves View.
func (c *Config) Validate() error {
	v := validator{subject: "config"}
	v.check(c.Antialias >= 0, "antialias", "must not be negative, got %d", c.Antialias)
	v.check(c.Viewport != nil || c.Fit != nil, "viewport", "either viewport or fit is required")
	v.check(c.Spec != nil, "kind", "missing")
	if err := v.err(); err != nil {
		return err
	}

	if c.Viewport != nil {
		c.View = *c.Viewport
	} else {
		fit := c.Fit
		fv := validator{subject: "fit"}
		fv.check(fit.Cols > 0, "cols", "must be positive, got %d", fit.Cols)
		fv.check(fit.Rows > 0, "rows", "must be positive, got %d", fit.Rows)
		fv.check(fit.Padding == 0 || fit.Padding >= 1, "padding", "must be at least 1, got %v", fit.Padding)
		if err := errors.Join(fv.err(), c.Spec.Validate()); err != nil {
			return err
		}
		c.View = FitViewport(NaturalBounds(c.Spec), fit.Cols, fit.Rows, fit.Padding)
	}

	_, cmErr := c.BuildColorMap()
	return errors.Join(c.View.Validate(), c.Spec.Validate(), cmErr)
}

// AntialiasLevel returns the sub-samples per pixel edge, at least 1.
func (c *Config) AntialiasLevel() int {
	return max(c.Antialias, 1)
}

// BuildColorMap constructs the configured color map.
func (c *Config) BuildColorMap() (*ColorMap, error) {
	var opts []ColorMapOption
	var stops []ColorStop
	if cm := c.ColorMap; cm != nil {
		stops = cm.Stops
		if cm.Sentinel != nil {
			opts = append(opts, WithSentinel(*cm.Sentinel))
		}
		if cm.TableSize != 0 {
			opts = append(opts, WithTableSize(cm.TableSize))
		}
	}
	if len(stops) == 0 {
		if c.Kind == KindPendulum {
			return RainbowColorMap(opts...), nil
		}
		stops = DefaultColorMap().Stops()
	}
	return NewColorMap(stops, opts...)
}
