package pml

import (
	"github.com/notargets/gopic/amr"
	"github.com/notargets/gopic/physconst"
)

// Finite difference push of the split layer fields on the Yee grid. Every
// split component takes the derivative along its own damping dimension of
// the summed transverse field. Damping is applied separately by DampPML.

// EvolveB advances B by dt from the curl of E
func (p *PML) EvolveB(dt float64) {
	for pt := Fine; pt <= Coarse; pt++ {
		if pa := p.patch(pt); pa != nil {
			pa.evolveB(dt)
		}
	}
}

func (pa *patch) evolveB(dt float64) {
	dx := pa.geom.CellSize()
	amr.ParallelFor(pa.dm, func(n int) {
		for i := 0; i < 3; i++ {
			var (
				a, b   = (i + 1) % 3, (i + 2) % 3
				ea, eb = pa.E[a].Fab(n), pa.E[b].Fab(n)
				bf     = pa.B[i].Fab(n)
				ua, ub = amr.UnitVect(a), amr.UnitVect(b)
			)
			pa.B[i].ValidBox(n).ForEach(func(x, y, z int) {
				iv := amr.IntVect{x, y, z}
				dEb := total(eb, iv.Add(ua)) - total(eb, iv)
				dEa := total(ea, iv.Add(ub)) - total(ea, iv)
				bf.AddTo(x, y, z, 0, -dt*dEb/dx[a])
				bf.AddTo(x, y, z, 1, dt*dEa/dx[b])
			})
		}
	})
}

// EvolveE advances E by dt from the curl of B, and from the gradient of F
// when divergence cleaning is on
func (p *PML) EvolveE(dt float64) {
	for pt := Fine; pt <= Coarse; pt++ {
		if pa := p.patch(pt); pa != nil {
			pa.evolveE(dt)
		}
	}
}

func (pa *patch) evolveE(dt float64) {
	var (
		dx = pa.geom.CellSize()
		c2 = physconst.C * physconst.C
	)
	amr.ParallelFor(pa.dm, func(n int) {
		var ff *amr.FArrayBox
		if pa.F != nil {
			ff = pa.F.Fab(n)
		}
		for i := 0; i < 3; i++ {
			var (
				a, b   = (i + 1) % 3, (i + 2) % 3
				ba, bb = pa.B[a].Fab(n), pa.B[b].Fab(n)
				ef     = pa.E[i].Fab(n)
				ua, ub = amr.UnitVect(a), amr.UnitVect(b)
				ui     = amr.UnitVect(i)
			)
			pa.E[i].ValidBox(n).ForEach(func(x, y, z int) {
				iv := amr.IntVect{x, y, z}
				dBb := total(bb, iv) - total(bb, iv.Sub(ua))
				dBa := total(ba, iv) - total(ba, iv.Sub(ub))
				ef.AddTo(x, y, z, 0, c2*dt*dBb/dx[a])
				ef.AddTo(x, y, z, 1, -c2*dt*dBa/dx[b])
				if ff != nil {
					dF := total(ff, iv.Add(ui)) - total(ff, iv)
					ef.AddTo(x, y, z, 2, c2*dt*dF/dx[i])
				}
			})
		}
	})
}

// EvolveF advances the divergence cleaning potential by dt
func (p *PML) EvolveF(dt float64) {
	for pt := Fine; pt <= Coarse; pt++ {
		if pa := p.patch(pt); pa != nil && pa.F != nil {
			pa.evolveF(dt)
		}
	}
}

func (pa *patch) evolveF(dt float64) {
	dx := pa.geom.CellSize()
	amr.ParallelFor(pa.dm, func(n int) {
		ff := pa.F.Fab(n)
		pa.F.ValidBox(n).ForEach(func(x, y, z int) {
			iv := amr.IntVect{x, y, z}
			for d := 0; d < 3; d++ {
				ed := pa.E[d].Fab(n)
				dE := total(ed, iv) - total(ed, iv.Sub(amr.UnitVect(d)))
				ff.AddTo(x, y, z, d, dt*dE/dx[d])
			}
		})
	})
}

// PushPMLCurrent deposits the layer current into E over dt. The current is
// shared between the two transverse split components in proportion to the
// damping along their dimensions, evenly where both are zero.
func (p *PML) PushPMLCurrent(dt float64) {
	for pt := Fine; pt <= Coarse; pt++ {
		if pa := p.patch(pt); pa != nil && pa.J[0] != nil {
			pa.pushCurrent(dt)
		}
	}
}

func (pa *patch) pushCurrent(dt float64) {
	fac := dt / physconst.Ep0
	amr.ParallelFor(pa.dm, func(n int) {
		sb := pa.sigba.Get(n)
		for i := 0; i < 3; i++ {
			var (
				a, b = (i + 1) % 3, (i + 2) % 3
				ef   = pa.E[i].Fab(n)
				jf   = pa.J[i].Fab(n)
			)
			pa.E[i].ValidBox(n).ForEach(func(x, y, z int) {
				var (
					idx   = [3]int{x, y, z}
					sa    = sb.Sigma(a).At(idx[a])
					sbb   = sb.Sigma(b).At(idx[b])
					alpha = 0.5
					j     = jf.At(x, y, z, 0)
				)
				if sa+sbb > 0 {
					alpha = sa / (sa + sbb)
				}
				ef.AddTo(x, y, z, 0, -fac*alpha*j)
				ef.AddTo(x, y, z, 1, -fac*(1-alpha)*j)
			})
		}
	})
}

// DampPML applies one step of exp(-sigma dt) decay to every split component
// of both patches, for the dt of the last ComputePMLFactors.
func (p *PML) DampPML() {
	for pt := Fine; pt <= Coarse; pt++ {
		pa := p.patch(pt)
		if pa == nil {
			continue
		}
		for i := 0; i < 3; i++ {
			pa.damp(pa.E[i], splitDims(i, 3), false)
			pa.damp(pa.B[i], splitDims(i, 2), false)
		}
		if pa.F != nil {
			pa.damp(pa.F, []int{0, 1, 2}, false)
		}
	}
}

// total is the sum of all split components at iv
func total(f *amr.FArrayBox, iv amr.IntVect) (sum float64) {
	for c := 0; c < f.NComp(); c++ {
		sum += f.Get(iv, c)
	}
	return
}
