package fractal

import (
	"math"
)

// Kind names a fractal family. It is the tag used by Config.
type Kind string

// Supported fractal kinds.
const (
	KindMandelbrot   Kind = "mandelbrot"
	KindJulia        Kind = "julia"
	KindBarnsleyFern Kind = "barnsley-fern"
	KindPendulum     Kind = "driven-damped-pendulum"
	KindSierpinski   Kind = "sierpinski"
)

// Spec selects a fractal family and carries its parameters.
//
// The set of implementations is closed: *MandelbrotSpec, *JuliaSpec,
// *BarnsleyFernSpec, *PendulumSpec and *SierpinskiSpec. A Spec is read-only
// while a render is in flight.
type Spec interface {
	// Kind returns the family tag.
	Kind() Kind

	// Validate reports out-of-domain parameters as a *ValidationError.
	Validate() error

	sealed()
}

// EscapeParams are shared by the escape-time fractals.
type EscapeParams struct {
	// MaxIterations caps the iteration loop; points that survive it are
	// treated as members of the set.
	MaxIterations int `json:"max_iterations"`

	// EscapeRadius must exceed 2 for the smooth renormalization to hold.
	EscapeRadius float64 `json:"escape_radius"`

	// Refinement is the number of extra iterations run after escape before
	// computing the smooth value. More steps give smoother bands.
	Refinement int `json:"refinement,omitempty"`
}

// maxEscapeRadius keeps the squared radius finite.
const maxEscapeRadius = 1e150

func (p EscapeParams) validate(v *validator) {
	v.check(p.MaxIterations > 0, "max_iterations", "must be positive, got %d", p.MaxIterations)
	v.check(isFinite(p.EscapeRadius) && p.EscapeRadius > 2, "escape_radius", "must be finite and greater than 2, got %v", p.EscapeRadius)
	v.check(!isFinite(p.EscapeRadius) || p.EscapeRadius <= maxEscapeRadius, "escape_radius", "must not exceed %g, got %v", maxEscapeRadius, p.EscapeRadius)
	v.check(p.Refinement >= 0, "refinement", "must not be negative, got %d", p.Refinement)
}

// MandelbrotSpec iterates z <- z^2 + c from z = 0 with c the pixel point.
type MandelbrotSpec struct {
	EscapeParams
}

// JuliaSpec iterates z <- z^2 + C from z = the pixel point.
type JuliaSpec struct {
	EscapeParams
	C Point `json:"c"`
}

// ChaosParams are shared by the iterated-function-system fractals.
type ChaosParams struct {
	// Samples is the total number of recorded points across all generators.
	Samples int64 `json:"samples"`

	// WarmUp points are discarded by every generator before recording.
	WarmUp int `json:"warm_up"`

	// Generators is the number of independent point streams. It fixes the
	// sampled point set regardless of how many workers run them.
	Generators int `json:"generators"`

	// Seed seeds generator g with Seed+g.
	Seed uint64 `json:"seed"`
}

func (p ChaosParams) validate(v *validator) {
	v.check(p.Samples > 0, "samples", "must be positive, got %d", p.Samples)
	v.check(p.WarmUp >= 0, "warm_up", "must not be negative, got %d", p.WarmUp)
	v.check(p.Generators > 0, "generators", "must be positive, got %d", p.Generators)
}

// AffineMap is one weighted map of an iterated function system.
type AffineMap struct {
	Transform Matrix  `json:"transform"`
	Weight    float64 `json:"weight"`
}

// BarnsleyFernSpec is a general weighted IFS; DefaultBarnsleyFern returns
// the classic four-map fern.
type BarnsleyFernSpec struct {
	ChaosParams
	Maps []AffineMap `json:"maps"`
}

// SierpinskiSpec contracts toward the vertices of a regular polygon with
// Vertices corners inscribed in the unit circle.
type SierpinskiSpec struct {
	ChaosParams
	Vertices int `json:"vertices"`

	// Ratio is the fraction of the distance jumped toward the chosen
	// vertex. Zero selects OptimalRatio(Vertices).
	Ratio float64 `json:"ratio,omitempty"`
}

// PendulumSpec describes the driven damped pendulum
//
//	q'' = A cos(w t) - b q' - sin q
//
// Each pixel is an initial state (q, q'). The pixel value is the number of
// full revolutions of the periodic orbit it settles into.
type PendulumSpec struct {
	Damping        float64 `json:"damping"`         // b
	DriveAmplitude float64 `json:"drive_amplitude"` // A
	DriveFrequency float64 `json:"drive_frequency"` // w

	// Phase is the drive phase at which the state is sampled, as a fraction
	// of one drive period.
	Phase float64 `json:"phase,omitempty"`

	StepsPerPeriod int     `json:"steps_per_period"`
	MaxPeriods     int     `json:"max_periods"`
	Tolerance      float64 `json:"tolerance"`
}

func (*MandelbrotSpec) Kind() Kind   { return KindMandelbrot }
func (*JuliaSpec) Kind() Kind        { return KindJulia }
func (*BarnsleyFernSpec) Kind() Kind { return KindBarnsleyFern }
func (*SierpinskiSpec) Kind() Kind   { return KindSierpinski }
func (*PendulumSpec) Kind() Kind     { return KindPendulum }

func (*MandelbrotSpec) sealed()   {}
func (*JuliaSpec) sealed()        {}
func (*BarnsleyFernSpec) sealed() {}
func (*SierpinskiSpec) sealed()   {}
func (*PendulumSpec) sealed()     {}

// Validate implements Spec.
func (s *MandelbrotSpec) Validate() error {
	v := validator{subject: string(KindMandelbrot)}
	s.EscapeParams.validate(&v)
	return v.err()
}

// Validate implements Spec.
func (s *JuliaSpec) Validate() error {
	v := validator{subject: string(KindJulia)}
	s.EscapeParams.validate(&v)
	v.check(s.C.IsFinite(), "c", "must be finite, got %v", s.C)
	return v.err()
}

// weightTolerance bounds how far IFS weights may sum from 1.
const weightTolerance = 1e-6

// Validate implements Spec.
func (s *BarnsleyFernSpec) Validate() error {
	v := validator{subject: string(KindBarnsleyFern)}
	s.ChaosParams.validate(&v)
	v.check(len(s.Maps) > 0, "maps", "at least one map is required")

	total := 0.0
	for _, m := range s.Maps {
		t := m.Transform
		finite := isFinite(t.A) && isFinite(t.B) && isFinite(t.C) &&
			isFinite(t.D) && isFinite(t.E) && isFinite(t.F)
		v.check(finite, "maps.transform", "coefficients must be finite, got %+v", t)
		v.check(isFinite(m.Weight) && m.Weight >= 0, "maps.weight", "must be finite and non-negative, got %v", m.Weight)
		total += m.Weight
	}
	if len(s.Maps) > 0 {
		v.check(math.Abs(total-1) <= weightTolerance, "maps.weight", "weights must sum to 1, got %v", total)
	}
	return v.err()
}

// Validate implements Spec.
func (s *SierpinskiSpec) Validate() error {
	v := validator{subject: string(KindSierpinski)}
	s.ChaosParams.validate(&v)
	v.check(s.Vertices >= 3, "vertices", "must be at least 3, got %d", s.Vertices)
	v.check(isFinite(s.Ratio) && s.Ratio >= 0 && s.Ratio < 1, "ratio", "must be in [0, 1), got %v", s.Ratio)
	return v.err()
}

// Validate implements Spec.
func (s *PendulumSpec) Validate() error {
	v := validator{subject: string(KindPendulum)}
	v.check(isFinite(s.Damping) && s.Damping >= 0, "damping", "must be finite and non-negative, got %v", s.Damping)
	v.check(isFinite(s.DriveAmplitude), "drive_amplitude", "must be finite, got %v", s.DriveAmplitude)
	v.check(isFinite(s.DriveFrequency) && s.DriveFrequency > 0, "drive_frequency", "must be positive and finite, got %v", s.DriveFrequency)
	v.check(isFinite(s.Phase), "phase", "must be finite, got %v", s.Phase)
	v.check(s.StepsPerPeriod > 0, "steps_per_period", "must be positive, got %d", s.StepsPerPeriod)
	v.check(s.MaxPeriods > 0, "max_periods", "must be positive, got %d", s.MaxPeriods)
	v.check(isFinite(s.Tolerance) && s.Tolerance > 0, "tolerance", "must be positive and finite, got %v", s.Tolerance)
	return v.err()
}

// DefaultMandelbrot returns the parameters used when a config omits them.
func DefaultMandelbrot() *MandelbrotSpec {
	return &MandelbrotSpec{EscapeParams{MaxIterations: 500, EscapeRadius: 16, Refinement: 2}}
}

// DefaultJulia returns a connected Julia set near the Mandelbrot boundary.
func DefaultJulia() *JuliaSpec {
	return &JuliaSpec{
		EscapeParams: EscapeParams{MaxIterations: 500, EscapeRadius: 16, Refinement: 2},
		C:            Pt(-0.4, 0.6),
	}
}

// DefaultBarnsleyFern returns Barnsley's original four maps.
func DefaultBarnsleyFern() *BarnsleyFernSpec {
	return &BarnsleyFernSpec{
		ChaosParams: ChaosParams{Samples: 4_000_000, WarmUp: 32, Generators: 16, Seed: 1},
		Maps: []AffineMap{
			{Transform: Matrix{A: 0, B: 0, C: 0, D: 0, E: 0.16, F: 0}, Weight: 0.01},
			{Transform: Matrix{A: 0.85, B: 0.04, C: 0, D: -0.04, E: 0.85, F: 1.6}, Weight: 0.85},
			{Transform: Matrix{A: 0.2, B: -0.26, C: 0, D: 0.23, E: 0.22, F: 1.6}, Weight: 0.07},
			{Transform: Matrix{A: -0.15, B: 0.28, C: 0, D: 0.26, E: 0.24, F: 0.44}, Weight: 0.07},
		},
	}
}

// DefaultSierpinski returns the classic triangle.
func DefaultSierpinski() *SierpinskiSpec {
	return &SierpinskiSpec{
		ChaosParams: ChaosParams{Samples: 2_000_000, WarmUp: 32, Generators: 16, Seed: 1},
		Vertices:    3,
	}
}

// DefaultPendulum returns the canonical pendulum: unit drive at unit
// frequency with light damping.
func DefaultPendulum() *PendulumSpec {
	return &PendulumSpec{
		Damping:        0.1,
		DriveAmplitude: 1,
		DriveFrequency: 1,
		StepsPerPeriod: 64,
		MaxPeriods:     200,
		Tolerance:      1e-4,
	}
}

// ReduceWork returns a copy of spec whose point budget is multiplied by
// fraction (clamped to (0, 1]). Only the IFS fractals have a budget that
// is independent of resolution; other kinds are returned unchanged.
func ReduceWork(spec Spec, fraction float64) Spec {
	if !(fraction > 0) || fraction >= 1 {
		return spec
	}
	scale := func(p ChaosParams) ChaosParams {
		p.Samples = max(1, int64(math.Ceil(float64(p.Samples)*fraction)))
		return p
	}
	switch s := spec.(type) {
	case *BarnsleyFernSpec:
		c := *s
		c.ChaosParams = scale(c.ChaosParams)
		return &c
	case *SierpinskiSpec:
		c := *s
		c.ChaosParams = scale(c.ChaosParams)
		return &c
	default:
		return spec
	}
}
