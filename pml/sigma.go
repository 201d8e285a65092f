package pml

import (
	"math"

	"github.com/notargets/gopic/amr"
	"github.com/notargets/gopic/physconst"
)

// Sigma is a 1D array indexed by cell or node position
type Sigma struct {
	lo   int
	data []float64
}

func newSigma(lo, hi int) Sigma {
	return Sigma{lo: lo, data: make([]float64, hi-lo+1)}
}

func (s Sigma) Lo() int { return s.lo }

func (s Sigma) Hi() int { return s.lo + len(s.data) - 1 }

func (s Sigma) At(i int) float64 { return s.data[i-s.lo] }

func (s Sigma) Set(i int, v float64) { s.data[i-s.lo] = v }

func (s Sigma) Data() []float64 { return s.data }

// Grading is the damping law sigma(d) = SigmaMax*min(d/Delta,1)^Order for a
// depth d in cells from the interface.
type Grading struct {
	SigmaMax float64
	Delta    float64
	Order    int
}

// NewGrading derives sigma_max for cell size dx. With a target reflection R
// it is chosen so the round trip attenuation through ncell cells is R,
// otherwise sigma_max = 4c/dx.
func NewGrading(dx float64, ncell, delta, order int, reflection float64) Grading {
	g := Grading{Delta: float64(delta), Order: order}
	if ncell <= 0 || delta <= 0 {
		return g
	}
	if reflection > 0 && reflection < 1 {
		depth := g.Delta/float64(order+1) + float64(max(ncell-delta, 0))
		g.SigmaMax = -physconst.C * math.Log(reflection) / (2. * dx * depth)
	} else {
		g.SigmaMax = 4. * physconst.C / dx
	}
	return g
}

func (g Grading) Sigma(d float64) float64 {
	if d <= 0 || g.SigmaMax == 0 {
		return 0
	}
	u := math.Min(d/g.Delta, 1)
	return g.SigmaMax * math.Pow(u, float64(g.Order))
}

// Cumsum is the integral of sigma from the interface to depth d, over c
func (g Grading) Cumsum(d float64) float64 {
	if d <= 0 || g.SigmaMax == 0 {
		return 0
	}
	var (
		u      = math.Min(d/g.Delta, 1)
		n      = float64(g.Order)
		linear = math.Max(d-g.Delta, 0)
	)
	return g.SigmaMax * (g.Delta/(n+1)*math.Pow(u, n+1) + linear) / physconst.C
}

// SigmaBox holds the damping profiles of one layer box. Node arrays cover
// lo-1..hi+2, star arrays, valued at i+1/2, cover lo-1..hi+1.
type SigmaBox struct {
	box     amr.Box
	grading [3]Grading

	sigma, sigmaCumsum         [3]Sigma
	sigmaStar, sigmaStarCumsum [3]Sigma

	sigmaFac, sigmaCumsumFac         [3]Sigma
	sigmaStarFac, sigmaStarCumsumFac [3]Sigma
}

// NewSigmaBox grades box against the interior grids within ncell of it.
// Per dimension the grids are classed by how box sees them, and the classes
// are filled corners first so that direct faces win.
func NewSigmaBox(box amr.Box, grids amr.BoxArray, dx [3]float64, ncell, delta,
	order int, reflection float64) *SigmaBox {
	sb := &SigmaBox{box: box}
	for d := 0; d < 3; d++ {
		lo, hi := box.Lo[d], box.Hi[d]
		sb.sigma[d] = newSigma(lo-1, hi+2)
		sb.sigmaCumsum[d] = newSigma(lo-1, hi+2)
		sb.sigmaStar[d] = newSigma(lo-1, hi+1)
		sb.sigmaStarCumsum[d] = newSigma(lo-1, hi+1)
		sb.sigmaFac[d] = newSigma(lo-1, hi+2)
		sb.sigmaCumsumFac[d] = newSigma(lo-1, hi+2)
		sb.sigmaStarFac[d] = newSigma(lo-1, hi+1)
		sb.sigmaStarCumsumFac[d] = newSigma(lo-1, hi+1)
		sb.grading[d] = NewGrading(dx[d], ncell, delta, order, reflection)
	}
	if ncell <= 0 {
		return sb
	}
	isects := grids.Intersections(box, ncell)
	for idim := 0; idim < 3; idim++ {
		var (
			jdim                           = (idim + 1) % 3
			kdim                           = (idim + 2) % 3
			directFaces, sideFaces         []int
			directSideEdges, sideSideEdges []int
			corners                        []int
		)
		for _, is := range isects {
			g := grids.Get(is.Index)
			switch {
			case g.GrowDir(idim, ncell).Intersects(box):
				directFaces = append(directFaces, is.Index)
			case g.GrowDir(jdim, ncell).Intersects(box),
				g.GrowDir(kdim, ncell).Intersects(box):
				sideFaces = append(sideFaces, is.Index)
			case g.GrowDir(idim, ncell).GrowDir(jdim, ncell).Intersects(box),
				g.GrowDir(idim, ncell).GrowDir(kdim, ncell).Intersects(box):
				directSideEdges = append(directSideEdges, is.Index)
			case g.GrowDir(jdim, ncell).GrowDir(kdim, ncell).Intersects(box):
				sideSideEdges = append(sideSideEdges, is.Index)
			default:
				corners = append(corners, is.Index)
			}
		}
		for _, gid := range corners {
			sb.fillLoHi(idim, grids.Get(gid), ncell, true)
		}
		for _, gid := range sideSideEdges {
			g := grids.Get(gid)
			sb.fillZero(idim, g.GrowDir(jdim, ncell).GrowDir(kdim, ncell).Intersect(box))
		}
		for _, gid := range directSideEdges {
			sb.fillLoHi(idim, grids.Get(gid), ncell, true)
		}
		for _, gid := range sideFaces {
			g := grids.Get(gid)
			sb.fillZero(idim, g.GrowDir(jdim, ncell).GrowDir(kdim, ncell).Intersect(box))
		}
		for _, gid := range directFaces {
			sb.fillLoHi(idim, grids.Get(gid), ncell, false)
		}
	}
	return sb
}

// fillLoHi grades the parts of the box in the slabs of ncell cells below and
// above grid along idim. Edge and corner regions widen the slab sideways.
func (sb *SigmaBox) fillLoHi(idim int, grid amr.Box, ncell int, widen bool) {
	var (
		jdim  = (idim + 1) % 3
		kdim  = (idim + 2) % 3
		lobox = amr.AdjCellLo(grid, idim, ncell)
		hibox = amr.AdjCellHi(grid, idim, ncell)
	)
	if widen {
		lobox = lobox.GrowDir(jdim, ncell).GrowDir(kdim, ncell)
		hibox = hibox.GrowDir(jdim, ncell).GrowDir(kdim, ncell)
	}
	if ov := lobox.Intersect(sb.box); ov.Ok() {
		glo := float64(grid.Lo[idim])
		sb.fill(idim, ov,
			func(i float64) float64 { return glo - i },
			func(i float64) float64 { return glo - i - 0.5 })
	}
	if ov := hibox.Intersect(sb.box); ov.Ok() {
		ghi := float64(grid.Hi[idim])
		sb.fill(idim, ov,
			func(i float64) float64 { return i - ghi - 1 },
			func(i float64) float64 { return i - ghi - 0.5 })
	}
}

// fill evaluates the grading over the overlap, extending into the halo when
// the overlap reaches the box edge. depth and starDepth give the distance in
// cells from the interface of node i and of position i+1/2.
func (sb *SigmaBox) fill(idim int, ov amr.Box, depth, starDepth func(float64) float64) {
	var (
		g        = sb.grading[idim]
		nlo, nhi = ov.Lo[idim], ov.Hi[idim] + 1
		slo, shi = ov.Lo[idim], ov.Hi[idim]
	)
	if ov.Lo[idim] == sb.box.Lo[idim] {
		nlo--
		slo--
	}
	if ov.Hi[idim] == sb.box.Hi[idim] {
		nhi++
		shi++
	}
	for i := nlo; i <= nhi; i++ {
		d := math.Max(depth(float64(i)), 0)
		sb.sigma[idim].Set(i, g.Sigma(d))
		sb.sigmaCumsum[idim].Set(i, g.Cumsum(d))
	}
	for i := slo; i <= shi; i++ {
		d := math.Max(starDepth(float64(i)), 0)
		sb.sigmaStar[idim].Set(i, g.Sigma(d))
		sb.sigmaStarCumsum[idim].Set(i, g.Cumsum(d))
	}
}

func (sb *SigmaBox) fillZero(idim int, ov amr.Box) {
	if !ov.Ok() {
		return
	}
	sb.fill(idim, ov, func(float64) float64 { return 0 }, func(float64) float64 { return 0 })
}

// ComputePMLFactorsE fills the node decay factors exp(-sigma dt) and the cell
// factors exp(-c dt |cumsum(i+1)-cumsum(i)|), the exact decay over cell i.
func (sb *SigmaBox) ComputePMLFactorsE(dt float64) {
	c := physconst.C
	for d := 0; d < 3; d++ {
		var (
			s, cs   = sb.sigma[d], sb.sigmaCumsum[d]
			fac, cf = sb.sigmaFac[d], sb.sigmaCumsumFac[d]
		)
		for i := s.Lo(); i <= s.Hi(); i++ {
			fac.Set(i, math.Exp(-s.At(i)*dt))
			if i < s.Hi() {
				cf.Set(i, math.Exp(-c*dt*math.Abs(cs.At(i+1)-cs.At(i))))
			}
		}
		cf.Set(s.Hi(), cf.At(s.Hi()-1))
	}
}

// ComputePMLFactorsB fills the star decay factors and the node factors
// exp(-c dt |starcum(i)-starcum(i-1)|), the exact decay over the cell
// centered on node i.
func (sb *SigmaBox) ComputePMLFactorsB(dt float64) {
	c := physconst.C
	for d := 0; d < 3; d++ {
		var (
			s, cs   = sb.sigmaStar[d], sb.sigmaStarCumsum[d]
			fac, cf = sb.sigmaStarFac[d], sb.sigmaStarCumsumFac[d]
		)
		for i := s.Lo(); i <= s.Hi(); i++ {
			fac.Set(i, math.Exp(-s.At(i)*dt))
			if i > s.Lo() {
				cf.Set(i, math.Exp(-c*dt*math.Abs(cs.At(i)-cs.At(i-1))))
			}
		}
		cf.Set(s.Lo(), cf.At(s.Lo()+1))
	}
}

func (sb *SigmaBox) Box() amr.Box { return sb.box }

func (sb *SigmaBox) Sigma(d int) Sigma { return sb.sigma[d] }

func (sb *SigmaBox) SigmaCumsum(d int) Sigma { return sb.sigmaCumsum[d] }

func (sb *SigmaBox) SigmaStar(d int) Sigma { return sb.sigmaStar[d] }

func (sb *SigmaBox) SigmaStarCumsum(d int) Sigma { return sb.sigmaStarCumsum[d] }

func (sb *SigmaBox) SigmaFac(d int) Sigma { return sb.sigmaFac[d] }

func (sb *SigmaBox) SigmaCumsumFac(d int) Sigma { return sb.sigmaCumsumFac[d] }

func (sb *SigmaBox) SigmaStarFac(d int) Sigma { return sb.sigmaStarFac[d] }

func (sb *SigmaBox) SigmaStarCumsumFac(d int) Sigma { return sb.sigmaStarCumsumFac[d] }

// dampFactor is the exp(-sigma dt) factor at index i along d for a field
// nodal or cell centered along d.
func (sb *SigmaBox) dampFactor(d, i int, nodal bool) float64 {
	if nodal {
		return sb.sigmaFac[d].At(i)
	}
	return sb.sigmaStarFac[d].At(i)
}

// cumsumFactor is the exact cell averaged decay at index i along d
func (sb *SigmaBox) cumsumFactor(d, i int, nodal bool) float64 {
	if nodal {
		return sb.sigmaStarCumsumFac[d].At(i)
	}
	return sb.sigmaCumsumFac[d].At(i)
}
