package spectral

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/notargets/gopic/amr"
	"github.com/notargets/gopic/physconst"
)

// KSpace holds the spectral state of one box: wavenumbers, the analytic
// propagation coefficients for the current dt and the transformed fields.
type KSpace struct {
	N      [3]int
	K      [3][]float64 // exact, used for staggering shifts
	KMod   [3][]float64 // as seen by the stencil, used by the push
	C, S   []float64    // cos(c|k|dt) and sin(c|k|dt)/(c|k|)
	Fields [][]complex128
	plans  [3]*fourier.CmplxFFT
	line   [3][]complex128
	work   [3][]complex128
}

func (ks *KSpace) Index(i, j, k int) int { return i + ks.N[0]*(j+ks.N[1]*k) }

func (ks *KSpace) NumPts() int { return ks.N[0] * ks.N[1] * ks.N[2] }

// Solver advances fields in Fourier space box by box. Each box is treated
// as periodic over its extent, guard cells absorbing the wraparound.
type Solver struct {
	ba     amr.BoxArray
	dm     amr.DistributionMapping
	dx     [3]float64
	order  [3]int
	nodal  bool
	dt     float64
	algo   Algorithm
	spaces []*KSpace
}

// NewSolver builds the spectral state over the cell centered boxes of ba.
// order holds the stencil order per dimension, non positive for infinite.
func NewSolver(ba amr.BoxArray, dm amr.DistributionMapping, dx [3]float64,
	order [3]int, nodal bool, dt float64, algo Algorithm) *Solver {
	if !ba.IxType().IsCellCentered() {
		panic(fmt.Sprintf("spectral boxes must be cell centered, have %s", ba.IxType()))
	}
	s := &Solver{
		ba:     ba,
		dm:     dm,
		dx:     dx,
		order:  order,
		nodal:  nodal,
		dt:     -1.e10,
		algo:   algo,
		spaces: make([]*KSpace, ba.Len()),
	}
	amr.ParallelFor(dm, func(i int) {
		b := ba.Get(i)
		ks := &KSpace{N: b.Size()}
		for d := 0; d < 3; d++ {
			n := ks.N[d]
			ks.K[d] = Wavenumbers(n, dx[d])
			ks.KMod[d] = make([]float64, n)
			for j, k := range ks.K[d] {
				ks.KMod[d][j] = ModifiedK(k, dx[d], order[d], nodal)
			}
			ks.plans[d] = fourier.NewCmplxFFT(n)
			ks.line[d] = make([]complex128, n)
			ks.work[d] = make([]complex128, n)
		}
		ks.Fields = make([][]complex128, algo.NumFields())
		for f := range ks.Fields {
			ks.Fields[f] = make([]complex128, ks.NumPts())
		}
		ks.C = make([]float64, ks.NumPts())
		ks.S = make([]float64, ks.NumPts())
		s.spaces[i] = ks
	})
	s.SetDt(dt)
	return s
}

func (s *Solver) Dt() float64 { return s.dt }

func (s *Solver) BoxArray() amr.BoxArray { return s.ba }

func (s *Solver) KSpace(i int) *KSpace { return s.spaces[i] }

// SetDt recomputes the propagation coefficients, a no-op when dt is unchanged
func (s *Solver) SetDt(dt float64) {
	if dt == s.dt {
		return
	}
	s.dt = dt
	c := physconst.C
	amr.ParallelFor(s.dm, func(i int) {
		ks := s.spaces[i]
		for kk := 0; kk < ks.N[2]; kk++ {
			for jj := 0; jj < ks.N[1]; jj++ {
				for ii := 0; ii < ks.N[0]; ii++ {
					var (
						p    = ks.Index(ii, jj, kk)
						kx   = ks.KMod[0][ii]
						ky   = ks.KMod[1][jj]
						kz   = ks.KMod[2][kk]
						kmag = math.Sqrt(kx*kx + ky*ky + kz*kz)
					)
					if kmag == 0 {
						ks.C[p], ks.S[p] = 1., dt
						continue
					}
					ks.C[p] = math.Cos(c * kmag * dt)
					ks.S[p] = math.Sin(c*kmag*dt) / (c * kmag)
				}
			}
		}
	})
}

// ForwardTransform moves one component of mf into spectral field index
// field. Cell centered dimensions are shifted onto the nodal reference grid.
func (s *Solver) ForwardTransform(mf *amr.MultiFab, field, comp int) {
	ixType := mf.IxType()
	amr.ParallelFor(s.dm, func(i int) {
		var (
			ks  = s.spaces[i]
			b   = s.ba.Get(i)
			fab = mf.Fab(i)
			dst = ks.Fields[field]
		)
		b.ForEach(func(x, y, z int) {
			dst[ks.Index(x-b.Lo[0], y-b.Lo[1], z-b.Lo[2])] = complex(fab.At(x, y, z, comp), 0)
		})
		for d := 0; d < 3; d++ {
			ks.transform(dst, d, true)
			if !ixType.IsNodal(d) {
				ks.shift(dst, d, s.dx[d], -1)
			}
		}
	})
}

// BackwardTransform writes spectral field index field back to one
// component of mf over the spectral box.
func (s *Solver) BackwardTransform(mf *amr.MultiFab, field, comp int) {
	ixType := mf.IxType()
	amr.ParallelFor(s.dm, func(i int) {
		var (
			ks   = s.spaces[i]
			b    = s.ba.Get(i)
			fab  = mf.Fab(i)
			src  = ks.Fields[field]
			norm = 1. / float64(ks.NumPts())
		)
		for d := 0; d < 3; d++ {
			if !ixType.IsNodal(d) {
				ks.shift(src, d, s.dx[d], 1)
			}
			ks.transform(src, d, false)
		}
		b.ForEach(func(x, y, z int) {
			v := src[ks.Index(x-b.Lo[0], y-b.Lo[1], z-b.Lo[2])]
			fab.Set(x, y, z, comp, real(v)*norm)
		})
	})
}

// PushSpectralFields advances all spectral fields by dt
func (s *Solver) PushSpectralFields() {
	amr.ParallelFor(s.dm, func(i int) {
		s.algo.Push(s.spaces[i])
	})
}

// transform runs 1D FFTs along every line of dimension d
func (ks *KSpace) transform(data []complex128, d int, forward bool) {
	var (
		n      = ks.N
		stride = [3]int{1, n[0], n[0] * n[1]}
		a, b   = (d + 1) % 3, (d + 2) % 3
		line   = ks.line[d]
		work   = ks.work[d]
	)
	for ib := 0; ib < n[b]; ib++ {
		for ia := 0; ia < n[a]; ia++ {
			base := ia*stride[a] + ib*stride[b]
			for j := 0; j < n[d]; j++ {
				line[j] = data[base+j*stride[d]]
			}
			if forward {
				ks.plans[d].Coefficients(work, line)
			} else {
				ks.plans[d].Sequence(work, line)
			}
			for j := 0; j < n[d]; j++ {
				data[base+j*stride[d]] = work[j]
			}
		}
	}
}

// shift multiplies by exp(sign*i*k*h/2) along d
func (ks *KSpace) shift(data []complex128, d int, h float64, sign float64) {
	var (
		n      = ks.N
		stride = [3]int{1, n[0], n[0] * n[1]}
		a, b   = (d + 1) % 3, (d + 2) % 3
	)
	for j := 0; j < n[d]; j++ {
		f := cmplx.Exp(complex(0, sign*ks.K[d][j]*h/2))
		for ib := 0; ib < n[b]; ib++ {
			for ia := 0; ia < n[a]; ia++ {
				data[ia*stride[a]+ib*stride[b]+j*stride[d]] *= f
			}
		}
	}
}
