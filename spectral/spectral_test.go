package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gopic/amr"
	"github.com/notargets/gopic/physconst"
)

func TestModifiedK(t *testing.T) {
	{ // Test stencil weights
		assert.InDeltaSlice(t, []float64{0, 9. / 8., -1. / 8.}, StencilCoefficients(4, false), 1.e-15)
		assert.InDeltaSlice(t, []float64{0, 75. / 64., -25. / 128., 3. / 128.},
			StencilCoefficients(6, false), 1.e-15)
		assert.InDeltaSlice(t, []float64{0, 4. / 3., -1. / 3.}, StencilCoefficients(4, true), 1.e-15)
	}
	{ // Test limits
		h := 0.1
		for _, k := range []float64{0.3, 1.7, 9.} {
			assert.InDelta(t, math.Sin(k*h/2)/(h/2), ModifiedK(k, h, 2, false), 1.e-12)
			assert.InDelta(t, math.Sin(k*h)/h, ModifiedK(k, h, 2, true), 1.e-12)
			assert.Equal(t, k, ModifiedK(k, h, -1, false))
		}
		// High order converges to k for well resolved modes
		assert.InDelta(t, 0.3, ModifiedK(0.3, h, 16, false), 1.e-12)
	}
	{ // Test transform ordering
		k := Wavenumbers(4, 1.)
		assert.InDeltaSlice(t, []float64{0, math.Pi / 2, math.Pi, -math.Pi / 2}, k, 1.e-15)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	var (
		cells = amr.NewBox(amr.IntVect{0, 0, 0}, amr.IntVect{7, 5, 3})
		ba    = amr.NewBoxArray([]amr.Box{cells})
		dm    = amr.NewDistributionMapping(1, 1)
		ng    = 1
		mf    = amr.NewMultiFab(ba.Convert(amr.NewIndexType(1, 0, 1)), dm, 2, ng)
		s     = NewSolver(ba.Grow(ng), dm, [3]float64{1, 1, 1}, [3]int{4, 4, 4},
			false, 1.e-9, NewVacuumAlgorithm())
		orig []float64
	)
	data := mf.Fab(0).Data()
	for n := range data {
		data[n] = math.Cos(0.37*float64(n)) + 0.1*float64(n%5)
	}
	orig = append(orig, data...)
	s.ForwardTransform(mf, Ex, 1)
	mf.SetVal(0)
	s.BackwardTransform(mf, Ex, 1)
	f := mf.Fab(0)
	cells.Grow(ng).ForEach(func(x, y, z int) {
		assert.InDelta(t, orig[f.Index(x, y, z, 1)], f.At(x, y, z, 1), 1.e-12)
	})
}

// planeWave sets E_z = cos(kx), B_y = -E_z/c on nodal points
func planeWave(mf *amr.MultiFab, comp int, k, h, phase, scale float64) {
	f := mf.Fab(0)
	f.Box().ForEach(func(x, y, z int) {
		f.Set(x, y, z, comp, scale*math.Cos(k*float64(x)*h-phase))
	})
}

func TestPlaneWavePush(t *testing.T) {
	var (
		n     = 16
		h     = 1.e-6
		c     = physconst.C
		dt    = 0.3 * h / c
		k     = 2. * math.Pi * 2. / (float64(n) * h)
		omega = c * k
		cells = amr.NewBox(amr.IntVect{0, 0, 0}, amr.IntVect{n - 1, 0, 0})
		ba    = amr.NewBoxArray([]amr.Box{cells})
		nba   = ba.Convert(amr.NodalType())
		dm    = amr.NewDistributionMapping(1, 1)
	)
	{ // Test vacuum push against the exact solution
		var (
			ez = amr.NewMultiFab(nba, dm, 1, 0)
			by = amr.NewMultiFab(nba, dm, 1, 0)
			s  = NewSolver(ba, dm, [3]float64{h, h, h}, [3]int{-1, -1, -1}, true, dt,
				NewVacuumAlgorithm())
		)
		planeWave(ez, 0, k, h, 0, 1)
		planeWave(by, 0, k, h, 0, -1/c)
		s.ForwardTransform(ez, Ez, 0)
		s.ForwardTransform(by, By, 0)
		s.PushSpectralFields()
		s.BackwardTransform(ez, Ez, 0)
		s.BackwardTransform(by, By, 0)
		for i := 0; i < n; i++ {
			want := math.Cos(k*float64(i)*h - omega*dt)
			assert.InDelta(t, want, ez.Fab(0).At(i, 0, 0, 0), 1.e-10)
			assert.InDelta(t, -want/c, by.Fab(0).At(i, 0, 0, 0), 1.e-10/c)
		}
	}
	{ // Test split fields sum to the vacuum solution
		var (
			ez = amr.NewMultiFab(nba, dm, 2, 0)
			by = amr.NewMultiFab(nba, dm, 2, 0)
			s  = NewSolver(ba, dm, [3]float64{h, h, h}, [3]int{-1, -1, -1}, true, dt,
				NewPMLAlgorithm())
		)
		// E_z comp 0 carries d/dx, B_y comp 1 carries d/dx
		planeWave(ez, 0, k, h, 0, 1)
		planeWave(by, 1, k, h, 0, -1/c)
		for comp := 0; comp < 2; comp++ {
			s.ForwardTransform(ez, SplitE(2, comp), comp)
			s.ForwardTransform(by, SplitB(1, comp), comp)
		}
		s.PushSpectralFields()
		for comp := 0; comp < 2; comp++ {
			s.BackwardTransform(ez, SplitE(2, comp), comp)
			s.BackwardTransform(by, SplitB(1, comp), comp)
		}
		for i := 0; i < n; i++ {
			want := math.Cos(k*float64(i)*h - omega*dt)
			fe, fb := ez.Fab(0), by.Fab(0)
			assert.InDelta(t, want, fe.At(i, 0, 0, 0)+fe.At(i, 0, 0, 1), 1.e-10)
			assert.InDelta(t, 0, fe.At(i, 0, 0, 1), 1.e-10)
			assert.InDelta(t, -want/c, fb.At(i, 0, 0, 0)+fb.At(i, 0, 0, 1), 1.e-10/c)
		}
	}
	{ // Test dt changes are idempotent
		s := NewSolver(ba, dm, [3]float64{h, h, h}, [3]int{2, 2, 2}, false, dt,
			NewVacuumAlgorithm())
		C := append([]float64{}, s.KSpace(0).C...)
		s.SetDt(dt)
		assert.Equal(t, C, s.KSpace(0).C)
		s.SetDt(2 * dt)
		assert.NotEqual(t, C, s.KSpace(0).C)
		assert.Equal(t, 1., s.KSpace(0).C[0])
		assert.Equal(t, 2*dt, s.KSpace(0).S[0])
	}
}
