package fractal

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/gogpu/fractal/internal/parallel"
)

// OptimalRatio returns the jump fraction toward the chosen vertex that makes
// the sub-polygons of a Sierpinski n-gon touch without overlapping:
// 1/(1+a) with a = tan(pi/n) when n%4 == 0, 2 sin(pi/2n) when n is odd,
// and sin(pi/n) when n%4 == 2.
func OptimalRatio(n int) float64 {
	fn := float64(n)
	var alpha float64
	switch {
	case n%4 == 0:
		alpha = math.Tan(math.Pi / fn)
	case n%2 == 1:
		alpha = 2 * math.Sin(math.Pi/(2*fn))
	default:
		alpha = math.Sin(math.Pi / fn)
	}
	return 1 / (1 + alpha)
}

// PolygonVertices returns the corners of a regular n-gon on the unit
// circle, starting at the top: (sin(2pi i/n), cos(2pi i/n)).
func PolygonVertices(n int) []Point {
	vs := make([]Point, n)
	for i := range vs {
		a := 2 * math.Pi * float64(i) / float64(n)
		vs[i] = Pt(math.Sin(a), math.Cos(a))
	}
	return vs
}

// EffectiveRatio returns Ratio, or OptimalRatio(Vertices) when Ratio is 0.
func (s *SierpinskiSpec) EffectiveRatio() float64 {
	if s.Ratio == 0 {
		return OptimalRatio(s.Vertices)
	}
	return s.Ratio
}

// Maps returns the contraction maps p' = r v + (1-r) p, one per vertex,
// with equal weights.
func (s *SierpinskiSpec) Maps() []AffineMap {
	r := s.EffectiveRatio()
	vs := PolygonVertices(s.Vertices)
	maps := make([]AffineMap, len(vs))
	for i, v := range vs {
		maps[i] = AffineMap{
			Transform: Translate(r*v.X, r*v.Y).Multiply(Scale(1-r, 1-r)),
			Weight:    1 / float64(len(vs)),
		}
	}
	return maps
}

// Bounds returns the bounding box of the polygon.
func (s *SierpinskiSpec) Bounds() Rect {
	return BoundsOf(PolygonVertices(s.Vertices))
}

// boundsProbe is the number of points used to estimate the extent of an
// arbitrary IFS attractor.
const boundsProbe = 20000

// Bounds estimates the bounding box of the attractor from a short
// deterministic run of the chaos game.
func (s *BarnsleyFernSpec) Bounds() Rect {
	g := newChaosGame(s.Maps, Point{})
	rng := newGeneratorRand(s.Seed, 0)
	p := Point{}
	for range s.WarmUp {
		p = g.step(rng, p)
	}
	pts := make([]Point, boundsProbe)
	for i := range pts {
		p = g.step(rng, p)
		pts[i] = p
	}
	return BoundsOf(pts)
}

// chaosGame draws successive points of a weighted IFS.
type chaosGame struct {
	maps       []Matrix
	thresholds []float64 // cumulative normalized weights
	start      Point
}

func newChaosGame(maps []AffineMap, start Point) *chaosGame {
	g := &chaosGame{
		maps:       make([]Matrix, len(maps)),
		thresholds: make([]float64, len(maps)),
		start:      start,
	}
	total := 0.0
	for _, m := range maps {
		total += m.Weight
	}
	acc := 0.0
	for i, m := range maps {
		g.maps[i] = m.Transform
		acc += m.Weight
		g.thresholds[i] = acc / total
	}
	return g
}

// pick returns the index of the map selected by a uniform draw u in [0, 1).
func (g *chaosGame) pick(u float64) int {
	for i, t := range g.thresholds {
		if u < t {
			return i
		}
	}
	return len(g.thresholds) - 1
}

func (g *chaosGame) step(rng *rand.Rand, p Point) Point {
	return g.maps[g.pick(rng.Float64())].TransformPoint(p)
}

// newGeneratorRand returns the random stream of generator g.
func newGeneratorRand(seed uint64, g int) *rand.Rand {
	s := seed + uint64(g)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// cellMapper maps parameter-space points to sub-pixel cells of a buffer.
type cellMapper struct {
	inv        Matrix
	n          int // sub-cells per pixel edge
	cols, rows int
}

// index returns the RawBuffer.Data index of the sub-cell containing p, or
// -1 when p falls outside the view.
func (m cellMapper) index(p Point) int {
	q := m.inv.TransformPoint(p)
	fx := math.Floor(q.X * float64(m.n))
	fy := math.Floor(q.Y * float64(m.n))
	if !(fx >= 0 && fy >= 0 && fx < float64(m.cols*m.n) && fy < float64(m.rows*m.n)) {
		return -1
	}
	sx, sy := int(fx), int(fy)
	col, i := sx/m.n, sx%m.n
	row, j := sy/m.n, sy%m.n
	return (row*m.cols+col)*m.n*m.n + j*m.n + i
}

// run plays the chaos game for one generator, adding every recorded point
// to counts.
func (g *chaosGame) run(rng *rand.Rand, warmUp int, budget int64, cells cellMapper, counts []uint32) {
	p := g.start
	for range warmUp {
		p = g.step(rng, p)
	}
	for range budget {
		p = g.step(rng, p)
		if i := cells.index(p); i >= 0 {
			counts[i]++
		}
	}
}

// maxAccumulatorBytes bounds the memory spent on private accumulators.
const maxAccumulatorBytes = 256 << 20

// computeChaos runs the generators of an IFS fractal and merges their
// private accumulators into buf.
//
// Generator g always uses seed Seed+g and the g-th share of the budget, so
// the sampled point multiset does not depend on the worker count. Workers
// only decide which private accumulator a generator adds into, and the
// accumulators are merged by addition.
func computeChaos(ctx context.Context, pool *parallel.WorkerPool, buf *RawBuffer, view Viewport,
	p ChaosParams, maps []AffineMap, start Point,
) error {
	game := newChaosGame(maps, start)
	n := int(math.Round(math.Sqrt(float64(buf.Subsamples))))
	cells := cellMapper{inv: view.InverseTransform(), n: n, cols: buf.Cols, rows: buf.Rows}

	spans := parallel.Split(int(p.Samples), p.Generators)
	budget := func(g int) int64 {
		if g < len(spans) {
			return int64(spans[g].Len())
		}
		return 0
	}

	groups := min(pool.Workers(), p.Generators)
	if perGroup := len(buf.Data) * 4; perGroup > 0 {
		groups = max(1, min(groups, maxAccumulatorBytes/perGroup))
	}
	accs := make([][]uint32, groups)

	err := pool.Run(groups, func(task int) {
		counts := make([]uint32, len(buf.Data))
		for g := task; g < p.Generators; g += groups {
			if ctx.Err() != nil {
				return
			}
			game.run(newGeneratorRand(p.Seed, g), p.WarmUp, budget(g), cells, counts)
		}
		accs[task] = counts
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rowLen := buf.Cols * buf.Subsamples
	return pool.Run(buf.Rows, func(row int) {
		lo, hi := row*rowLen, (row+1)*rowLen
		for i := lo; i < hi; i++ {
			var total uint64
			for _, counts := range accs {
				total += uint64(counts[i])
			}
			buf.Data[i] = RawSample{
				Value:      float64(total),
				Iterations: int(total),
				Escaped:    total > 0,
			}
		}
	})
}
