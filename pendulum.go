package fractal

import (
	"math"

	"github.com/gogpu/fractal/internal/ode"
)

// Basin is the long-term behavior of one pendulum trajectory.
type Basin struct {
	// Class is the number of full revolutions, round(q / 2pi), of the
	// periodic orbit the trajectory settled into.
	Class int

	// Converged is false when MaxPeriods elapsed first or the state
	// became non-finite.
	Converged bool

	// Periods is the number of drive periods simulated.
	Periods int
}

// Period returns the drive period 2pi/w.
func (s *PendulumSpec) Period() float64 {
	return 2 * math.Pi / s.DriveFrequency
}

// Basin integrates the pendulum from start = (angle, rate), one drive
// period per cycle with StepsPerPeriod fixed RK4 steps, until the state
// sampled at the drive phase repeats within Tolerance (squared distance).
func (s *PendulumSpec) Basin(start Point) Basin {
	period := s.Period()
	t0 := s.Phase * period
	t1 := t0 + period

	a, b, w := s.DriveAmplitude, s.Damping, s.DriveFrequency
	dynamics := func(t float64, x ode.State) ode.State {
		return ode.State{x[1], a*math.Cos(w*t) - b*x[1] - math.Sin(x[0])}
	}

	x := ode.State{start.X, start.Y}
	for k := 1; k <= s.MaxPeriods; k++ {
		prev := x
		x = ode.RK4(dynamics, t0, t1, s.StepsPerPeriod, prev)
		if !isFinite(x[0]) || !isFinite(x[1]) {
			return Basin{Periods: k}
		}
		dq, dv := x[0]-prev[0], x[1]-prev[1]
		if dq*dq+dv*dv <= s.Tolerance {
			return Basin{
				Class:     int(math.Round(x[0] / (2 * math.Pi))),
				Converged: true,
				Periods:   k,
			}
		}
	}
	return Basin{Periods: s.MaxPeriods}
}

func evalPendulum(s *PendulumSpec, p Point) RawSample {
	b := s.Basin(p)
	if !b.Converged {
		return RawSample{Iterations: b.Periods}
	}
	return RawSample{Value: float64(b.Class), Iterations: b.Periods, Escaped: true}
}
