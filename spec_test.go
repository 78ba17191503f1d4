package fractal

import (
	"errors"
	"math"
	"testing"
)

func TestSpecValidate(t *testing.T) {
	badFern := DefaultBarnsleyFern()
	badFern.Maps = append(badFern.Maps, AffineMap{Transform: Identity(), Weight: 0.5})

	nanFern := DefaultBarnsleyFern()
	nanFern.Maps = []AffineMap{{Transform: Matrix{A: math.NaN()}, Weight: 1}}

	tests := []struct {
		name  string
		spec  Spec
		field string
	}{
		{"mandelbrot iterations", &MandelbrotSpec{EscapeParams{MaxIterations: 0, EscapeRadius: 4}}, "max_iterations"},
		{"mandelbrot radius", &MandelbrotSpec{EscapeParams{MaxIterations: 10, EscapeRadius: 2}}, "escape_radius"},
		{"mandelbrot huge radius", &MandelbrotSpec{EscapeParams{MaxIterations: 10, EscapeRadius: 1e200}}, "escape_radius"},
		{"mandelbrot refinement", &MandelbrotSpec{EscapeParams{MaxIterations: 10, EscapeRadius: 4, Refinement: -1}}, "refinement"},
		{"julia c", &JuliaSpec{EscapeParams: DefaultJulia().EscapeParams, C: Pt(math.Inf(1), 0)}, "c"},
		{"fern weights", badFern, "maps.weight"},
		{"fern no maps", &BarnsleyFernSpec{ChaosParams: DefaultBarnsleyFern().ChaosParams}, "maps"},
		{"fern NaN", nanFern, "maps.transform"},
		{"sierpinski vertices", &SierpinskiSpec{ChaosParams: DefaultSierpinski().ChaosParams, Vertices: 2}, "vertices"},
		{"sierpinski ratio", &SierpinskiSpec{ChaosParams: DefaultSierpinski().ChaosParams, Vertices: 3, Ratio: 1}, "ratio"},
		{"sierpinski samples", &SierpinskiSpec{ChaosParams: ChaosParams{Generators: 1}, Vertices: 3}, "samples"},
		{"sierpinski generators", &SierpinskiSpec{ChaosParams: ChaosParams{Samples: 1}, Vertices: 3}, "generators"},
		{"pendulum frequency", &PendulumSpec{DriveFrequency: 0, StepsPerPeriod: 1, MaxPeriods: 1, Tolerance: 1}, "drive_frequency"},
		{"pendulum tolerance", &PendulumSpec{DriveFrequency: 1, StepsPerPeriod: 1, MaxPeriods: 1}, "tolerance"},
		{"pendulum steps", &PendulumSpec{DriveFrequency: 1, MaxPeriods: 1, Tolerance: 1}, "steps_per_period"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %T, want *ValidationError", err)
			}
			found := false
			for _, f := range verr.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() fields = %v, want one for %q", verr.Fields, tt.field)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := (&MandelbrotSpec{EscapeParams{MaxIterations: -1, EscapeRadius: 1}}).Validate()
	want := "fractal: invalid mandelbrot: max_iterations: must be positive, got -1; " +
		"escape_radius: must be finite and greater than 2, got 1"
	if err.Error() != want {
		t.Errorf("Error() = %q\nwant      %q", err.Error(), want)
	}
}

func TestReduceWork(t *testing.T) {
	fern := DefaultBarnsleyFern()

	reduced := ReduceWork(fern, 0.25).(*BarnsleyFernSpec)
	if reduced.Samples != fern.Samples/4 {
		t.Errorf("Samples = %d, want %d", reduced.Samples, fern.Samples/4)
	}
	if fern.Samples != DefaultBarnsleyFern().Samples {
		t.Error("ReduceWork modified its argument")
	}
	if reduced.Generators != fern.Generators || reduced.Seed != fern.Seed {
		t.Error("ReduceWork changed the point streams")
	}

	tiny := ReduceWork(&SierpinskiSpec{ChaosParams: ChaosParams{Samples: 3, Generators: 1}, Vertices: 3}, 1e-9)
	if got := tiny.(*SierpinskiSpec).Samples; got != 1 {
		t.Errorf("Samples = %d, want at least 1", got)
	}

	mandel := DefaultMandelbrot()
	if got := ReduceWork(mandel, 0.1); got != Spec(mandel) {
		t.Error("ReduceWork changed an escape-time spec")
	}
	if got := ReduceWork(fern, 1); got != Spec(fern) {
		t.Error("ReduceWork(1) should return the spec unchanged")
	}
	if got := ReduceWork(fern, math.NaN()); got != Spec(fern) {
		t.Error("ReduceWork(NaN) should return the spec unchanged")
	}
}

func TestFamilyOf(t *testing.T) {
	tests := []struct {
		spec Spec
		want Family
	}{
		{DefaultMandelbrot(), FamilyEscapeTime},
		{DefaultJulia(), FamilyEscapeTime},
		{DefaultBarnsleyFern(), FamilyDensity},
		{DefaultSierpinski(), FamilyDensity},
		{DefaultPendulum(), FamilyAttractor},
	}
	for _, tt := range tests {
		if got := FamilyOf(tt.spec); got != tt.want {
			t.Errorf("FamilyOf(%s) = %v, want %v", tt.spec.Kind(), got, tt.want)
		}
	}
}
