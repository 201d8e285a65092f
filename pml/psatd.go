package pml

import (
	"fmt"

	"github.com/notargets/gopic/amr"
	"github.com/notargets/gopic/spectral"
)

// PushPSATD advances the split E and B of both patches by dt in Fourier
// space, then applies the exact cell averaged damping of the layer. It
// panics on a layer built without the spectral solver.
func (p *PML) PushPSATD() {
	for pt := Fine; pt <= Coarse; pt++ {
		pa := p.patch(pt)
		if pa == nil {
			continue
		}
		if pa.solver == nil {
			panic(fmt.Sprintf("PML %s patch has no spectral solver", pt))
		}
		pa.pushPSATD()
	}
}

func (pa *patch) pushPSATD() {
	s := pa.solver
	for i := 0; i < 3; i++ {
		for c := 0; c < 2; c++ {
			s.ForwardTransform(pa.E[i], spectral.SplitE(i, c), c)
			s.ForwardTransform(pa.B[i], spectral.SplitB(i, c), c)
		}
	}
	s.PushSpectralFields()
	for i := 0; i < 3; i++ {
		for c := 0; c < 2; c++ {
			s.BackwardTransform(pa.E[i], spectral.SplitE(i, c), c)
			s.BackwardTransform(pa.B[i], spectral.SplitB(i, c), c)
		}
	}
	for i := 0; i < 3; i++ {
		pa.damp(pa.E[i], splitDims(i, 2), true)
		pa.damp(pa.B[i], splitDims(i, 2), true)
	}
}

// splitDims lists the damping dimension of each split component of a field
// along dir: (dir+1)%3, (dir+2)%3, then dir itself.
func splitDims(dir, ncomp int) []int {
	dims := []int{(dir + 1) % 3, (dir + 2) % 3, dir}
	return dims[:ncomp]
}

// damp scales component c of mf over the valid region by the decay factor
// along dims[c], picked by the staggering of mf. With cumsum the exact cell
// averaged factors are used.
func (pa *patch) damp(mf *amr.MultiFab, dims []int, cumsum bool) {
	ix := mf.IxType()
	amr.ParallelFor(pa.dm, func(n int) {
		var (
			sb  = pa.sigba.Get(n)
			fab = mf.Fab(n)
		)
		mf.ValidBox(n).ForEach(func(x, y, z int) {
			idx := [3]int{x, y, z}
			for c, d := range dims {
				var fac float64
				if cumsum {
					fac = sb.cumsumFactor(d, idx[d], ix.IsNodal(d))
				} else {
					fac = sb.dampFactor(d, idx[d], ix.IsNodal(d))
				}
				fab.Set(x, y, z, c, fab.At(x, y, z, c)*fac)
			}
		})
	})
}
