package pml

import (
	"github.com/notargets/gopic/amr"
)

// Exchange trades data across the interface between a split layer field and
// the interior field reg of the same staggering.
//
// The summed split components are copied back into the interior: into its
// valid cells for a layer inside the domain, otherwise only into its ghost
// cells, leaving the outermost valid cells alone. The layer is then seeded
// with the interior values in component 0, the other components zeroed.
// Inside the domain the layer valid cells keep their own values.
func Exchange(pml, reg *amr.MultiFab, geom amr.Geometry, inDomain bool) {
	var (
		ngr    = reg.NGrow()
		ngp    = pml.NGrow()
		ncp    = pml.NComp()
		period = geom.Periodicity()
		totpml = amr.NewMultiFab(pml.BoxArray(), pml.DistributionMap(), 1, 0)
	)
	amr.Copy(totpml, pml, 0, 0, 1, 0)
	for c := 1; c < ncp; c++ {
		amr.Add(totpml, pml, c, 0, 1, 0)
	}

	if inDomain {
		reg.ParallelCopy(totpml, 0, 0, 1, 0, 0, period)
	} else if ngr > 0 {
		tmp := amr.NewMultiFab(reg.BoxArray(), reg.DistributionMap(), 1, ngr)
		amr.Copy(tmp, reg, 0, 0, 1, ngr)
		tmp.ParallelCopy(totpml, 0, 0, 1, 0, ngr, period)
		amr.ParallelFor(reg.DistributionMap(), func(i int) {
			for _, g := range amr.BoxDiff(reg.GrownBox(i, ngr), reg.ValidBox(i)) {
				reg.Fab(i).CopyFrom(tmp.Fab(i), g, 0, 0, 1, amr.IntVect{})
			}
		})
	}

	tmpreg := amr.NewMultiFab(reg.BoxArray(), reg.DistributionMap(), ncp, ngr)
	amr.Copy(tmpreg, reg, 0, 0, 1, 0)
	if inDomain {
		tmpreg.ParallelCopy(pml, 0, 0, ncp, 0, 0, period)
	}
	pml.ParallelCopy(tmpreg, 0, 0, ncp, 0, ngp, period)
}

// CopyToPML copies the interior field into the layer valid and ghost cells
func CopyToPML(pml, reg *amr.MultiFab, geom amr.Geometry) {
	pml.ParallelCopy(reg, 0, 0, 1, 0, pml.NGrow(), geom.Periodicity())
}

func (p *PML) ExchangeE(fine, coarse [3]*amr.MultiFab) {
	p.ExchangeEPatch(Fine, fine)
	p.ExchangeEPatch(Coarse, coarse)
}

func (p *PML) ExchangeEPatch(pt PatchType, e [3]*amr.MultiFab) {
	pa := p.patch(pt)
	if pa == nil || e[0] == nil {
		return
	}
	for i := 0; i < 3; i++ {
		Exchange(pa.E[i], e[i], pa.geom, p.cfg.InDomain)
	}
}

func (p *PML) ExchangeB(fine, coarse [3]*amr.MultiFab) {
	p.ExchangeBPatch(Fine, fine)
	p.ExchangeBPatch(Coarse, coarse)
}

func (p *PML) ExchangeBPatch(pt PatchType, b [3]*amr.MultiFab) {
	pa := p.patch(pt)
	if pa == nil || b[0] == nil {
		return
	}
	for i := 0; i < 3; i++ {
		Exchange(pa.B[i], b[i], pa.geom, p.cfg.InDomain)
	}
}

func (p *PML) ExchangeF(fine, coarse *amr.MultiFab) {
	p.ExchangeFPatch(Fine, fine)
	p.ExchangeFPatch(Coarse, coarse)
}

// ExchangeFPatch is a no-op unless both the layer and the interior carry F
func (p *PML) ExchangeFPatch(pt PatchType, f *amr.MultiFab) {
	pa := p.patch(pt)
	if pa == nil || pa.F == nil || f == nil {
		return
	}
	Exchange(pa.F, f, pa.geom, p.cfg.InDomain)
}

// CopyJtoPMLs copies the interior current into the layer, one way
func (p *PML) CopyJtoPMLs(fine, coarse [3]*amr.MultiFab) {
	p.CopyJtoPMLsPatch(Fine, fine)
	p.CopyJtoPMLsPatch(Coarse, coarse)
}

func (p *PML) CopyJtoPMLsPatch(pt PatchType, j [3]*amr.MultiFab) {
	pa := p.patch(pt)
	if pa == nil || pa.J[0] == nil || j[0] == nil {
		return
	}
	for i := 0; i < 3; i++ {
		CopyToPML(pa.J[i], j[i], pa.geom)
	}
}

// FillBoundary syncs the ghost cells of every layer field of both patches
func (p *PML) FillBoundary() {
	p.FillBoundaryE()
	p.FillBoundaryB()
	p.FillBoundaryF()
}

func (p *PML) FillBoundaryE() {
	p.FillBoundaryEPatch(Fine)
	p.FillBoundaryEPatch(Coarse)
}

func (p *PML) FillBoundaryEPatch(pt PatchType) {
	if pa := p.patch(pt); pa != nil {
		for _, mf := range pa.E {
			mf.FillBoundary(pa.geom.Periodicity())
		}
	}
}

func (p *PML) FillBoundaryB() {
	p.FillBoundaryBPatch(Fine)
	p.FillBoundaryBPatch(Coarse)
}

func (p *PML) FillBoundaryBPatch(pt PatchType) {
	if pa := p.patch(pt); pa != nil {
		for _, mf := range pa.B {
			mf.FillBoundary(pa.geom.Periodicity())
		}
	}
}

func (p *PML) FillBoundaryF() {
	p.FillBoundaryFPatch(Fine)
	p.FillBoundaryFPatch(Coarse)
}

func (p *PML) FillBoundaryFPatch(pt PatchType) {
	if pa := p.patch(pt); pa != nil && pa.F != nil {
		pa.F.FillBoundary(pa.geom.Periodicity())
	}
}
