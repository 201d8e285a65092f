package pml

import (
	"github.com/notargets/gopic/amr"
)

// SigmaBoxFactory builds the per box damping profiles of a layer
type SigmaBoxFactory struct {
	grids      amr.BoxArray
	dx         [3]float64
	ncell      int
	delta      int
	order      int
	reflection float64
}

func NewSigmaBoxFactory(grids amr.BoxArray, dx [3]float64, cfg Config) *SigmaBoxFactory {
	return &SigmaBoxFactory{
		grids:      grids.Convert(amr.CellType()),
		dx:         dx,
		ncell:      cfg.NCell,
		delta:      cfg.Delta,
		order:      cfg.gradingOrder(),
		reflection: cfg.Reflection,
	}
}

func (f *SigmaBoxFactory) Create(box amr.Box, index int) *SigmaBox {
	return NewSigmaBox(box.EnclosedCells(), f.grids, f.dx, f.ncell, f.delta,
		f.order, f.reflection)
}

// Destroy releases a profile built by Create
func (f *SigmaBoxFactory) Destroy(sb *SigmaBox) {
	for d := 0; d < 3; d++ {
		sb.sigma[d], sb.sigmaCumsum[d] = Sigma{}, Sigma{}
		sb.sigmaStar[d], sb.sigmaStarCumsum[d] = Sigma{}, Sigma{}
		sb.sigmaFac[d], sb.sigmaCumsumFac[d] = Sigma{}, Sigma{}
		sb.sigmaStarFac[d], sb.sigmaStarCumsumFac[d] = Sigma{}, Sigma{}
	}
}

// MultiSigmaBox holds one SigmaBox per layer box, each built and updated by
// the worker owning the box.
type MultiSigmaBox struct {
	ba      amr.BoxArray
	dm      amr.DistributionMapping
	factory *SigmaBoxFactory
	boxes   []*SigmaBox
	dtE     float64
	dtB     float64
}

func NewMultiSigmaBox(ba amr.BoxArray, dm amr.DistributionMapping,
	factory *SigmaBoxFactory) *MultiSigmaBox {
	ms := &MultiSigmaBox{
		ba:      ba,
		dm:      dm,
		factory: factory,
		boxes:   make([]*SigmaBox, ba.Len()),
		dtE:     -1.e10,
		dtB:     -1.e10,
	}
	amr.ParallelFor(dm, func(i int) {
		ms.boxes[i] = factory.Create(ba.Get(i), i)
	})
	return ms
}

func (ms *MultiSigmaBox) Len() int { return len(ms.boxes) }

func (ms *MultiSigmaBox) Get(i int) *SigmaBox { return ms.boxes[i] }

func (ms *MultiSigmaBox) BoxArray() amr.BoxArray { return ms.ba }

// ComputePMLFactorsE recomputes the E factors only when dt changed
func (ms *MultiSigmaBox) ComputePMLFactorsE(dt float64) {
	if dt == ms.dtE {
		return
	}
	ms.dtE = dt
	amr.ParallelFor(ms.dm, func(i int) {
		ms.boxes[i].ComputePMLFactorsE(dt)
	})
}

// ComputePMLFactorsB recomputes the B factors only when dt changed
func (ms *MultiSigmaBox) ComputePMLFactorsB(dt float64) {
	if dt == ms.dtB {
		return
	}
	ms.dtB = dt
	amr.ParallelFor(ms.dm, func(i int) {
		ms.boxes[i].ComputePMLFactorsB(dt)
	})
}

func (ms *MultiSigmaBox) Destroy() {
	for i, sb := range ms.boxes {
		ms.factory.Destroy(sb)
		ms.boxes[i] = nil
	}
}
