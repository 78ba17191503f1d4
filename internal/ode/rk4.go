// Package ode integrates small fixed-size ODE systems with explicit
// fixed-step methods.
package ode

// State is the state of a two-dimensional first-order system.
type State [2]float64

// Func returns the time derivative of x at time t.
type Func func(t float64, x State) State

func axpy(a float64, d, x State) State {
	return State{x[0] + a*d[0], x[1] + a*d[1]}
}

// RK4Step advances x by one classical fourth-order Runge-Kutta step of size h.
func RK4Step(f Func, t, h float64, x State) State {
	k1 := f(t, x)
	k2 := f(t+0.5*h, axpy(0.5*h, k1, x))
	k3 := f(t+0.5*h, axpy(0.5*h, k2, x))
	k4 := f(t+h, axpy(h, k3, x))
	return State{
		x[0] + h/6*(k1[0]+2*k2[0]+2*k3[0]+k4[0]),
		x[1] + h/6*(k1[1]+2*k2[1]+2*k3[1]+k4[1]),
	}
}

// RK4 integrates from t0 to t1 in steps equal steps and returns the final
// state. Step times are computed from the step index so rounding does not
// accumulate. steps below 1 returns x unchanged.
func RK4(f Func, t0, t1 float64, steps int, x State) State {
	if steps < 1 {
		return x
	}
	h := (t1 - t0) / float64(steps)
	for i := range steps {
		t := t0 + (t1-t0)*float64(i)/float64(steps)
		x = RK4Step(f, t, h, x)
	}
	return x
}
