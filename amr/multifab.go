package amr

import (
	"fmt"
	"math"
)

// MultiFab is a distributed field, one FArrayBox per box of a BoxArray, each
// grown by nGrow ghost cells.
type MultiFab struct {
	ba    BoxArray
	dm    DistributionMapping
	nComp int
	nGrow int
	fabs  []*FArrayBox
}

func NewMultiFab(ba BoxArray, dm DistributionMapping, nComp, nGrow int) *MultiFab {
	if ba.Len() != dm.Len() {
		panic(fmt.Sprintf("box array of %d boxes with a distribution of %d",
			ba.Len(), dm.Len()))
	}
	mf := &MultiFab{
		ba:    ba,
		dm:    dm,
		nComp: nComp,
		nGrow: nGrow,
		fabs:  make([]*FArrayBox, ba.Len()),
	}
	ParallelFor(dm, func(i int) {
		mf.fabs[i] = NewFArrayBox(ba.Get(i).Grow(nGrow), nComp)
	})
	return mf
}

func (mf *MultiFab) BoxArray() BoxArray { return mf.ba }

func (mf *MultiFab) DistributionMap() DistributionMapping { return mf.dm }

func (mf *MultiFab) IxType() IndexType { return mf.ba.IxType() }

func (mf *MultiFab) NComp() int { return mf.nComp }

func (mf *MultiFab) NGrow() int { return mf.nGrow }

func (mf *MultiFab) Len() int { return len(mf.fabs) }

func (mf *MultiFab) Fab(i int) *FArrayBox { return mf.fabs[i] }

func (mf *MultiFab) ValidBox(i int) Box { return mf.ba.Get(i) }

func (mf *MultiFab) GrownBox(i int, ng int) Box { return mf.ba.Get(i).Grow(ng) }

func (mf *MultiFab) SetVal(v float64) {
	mf.SetValComps(v, 0, mf.nComp, mf.nGrow)
}

func (mf *MultiFab) SetValComps(v float64, scomp, nComp, ng int) {
	ParallelFor(mf.dm, func(i int) {
		mf.fabs[i].SetVal(v, mf.GrownBox(i, ng), scomp, nComp)
	})
}

// SameLayout is true when the two fields can be combined box by box
func (mf *MultiFab) SameLayout(o *MultiFab) bool {
	return mf.ba.Equal(o.ba) && mf.dm.Len() == o.dm.Len()
}

func checkLayout(dst, src *MultiFab, ng int) {
	if !dst.SameLayout(src) {
		panic("multifab layouts differ")
	}
	if ng > dst.nGrow || ng > src.nGrow {
		panic(fmt.Sprintf("ghost width %d exceeds storage (%d, %d)", ng,
			dst.nGrow, src.nGrow))
	}
}

// Copy is a box by box copy between fields sharing a layout
func Copy(dst, src *MultiFab, scomp, dcomp, nComp, ng int) {
	checkLayout(dst, src, ng)
	ParallelFor(dst.dm, func(i int) {
		dst.fabs[i].CopyFrom(src.fabs[i], dst.GrownBox(i, ng), scomp, dcomp,
			nComp, IntVect{})
	})
}

// Add accumulates src into dst over the grown region
func Add(dst, src *MultiFab, scomp, dcomp, nComp, ng int) {
	checkLayout(dst, src, ng)
	ParallelFor(dst.dm, func(i int) {
		var (
			d, s = dst.fabs[i], src.fabs[i]
		)
		dst.GrownBox(i, ng).ForEach(func(x, y, z int) {
			for n := 0; n < nComp; n++ {
				d.AddTo(x, y, z, dcomp+n, s.At(x, y, z, scomp+n))
			}
		})
	})
}

// LinComb sets dst = a*x + b*y
func LinComb(dst *MultiFab, a float64, x *MultiFab, xcomp int, b float64,
	y *MultiFab, ycomp int, dcomp, nComp, ng int) {
	checkLayout(dst, x, ng)
	checkLayout(dst, y, ng)
	ParallelFor(dst.dm, func(i int) {
		var (
			d, xf, yf = dst.fabs[i], x.fabs[i], y.fabs[i]
		)
		dst.GrownBox(i, ng).ForEach(func(p, q, r int) {
			for n := 0; n < nComp; n++ {
				d.Set(p, q, r, dcomp+n,
					a*xf.At(p, q, r, xcomp+n)+b*yf.At(p, q, r, ycomp+n))
			}
		})
	})
}

// Sum is the sum of one component over the valid region
func (mf *MultiFab) Sum(comp int) (sum float64) {
	for i, f := range mf.fabs {
		mf.ValidBox(i).ForEach(func(x, y, z int) {
			sum += f.At(x, y, z, comp)
		})
	}
	return
}

// SumSquares is the sum of squares of one component over the valid region
func (mf *MultiFab) SumSquares(comp int) (sum float64) {
	for i, f := range mf.fabs {
		mf.ValidBox(i).ForEach(func(x, y, z int) {
			v := f.At(x, y, z, comp)
			sum += v * v
		})
	}
	return
}

// MaxAbs over the valid region, all components
func (mf *MultiFab) MaxAbs() (m float64) {
	for i, f := range mf.fabs {
		mf.ValidBox(i).ForEach(func(x, y, z int) {
			for n := 0; n < mf.nComp; n++ {
				m = math.Max(m, math.Abs(f.At(x, y, z, n)))
			}
		})
	}
	return
}
