package pml

import (
	"fmt"

	"github.com/notargets/gopic/amr"
)

// MakeBoxArray builds the layer boxes around gridBA. The domain is grown by
// ncell on every enabled, non periodic side; the layer is what that grown
// neighbourhood of each grid adds outside the grids, cut along the faces,
// edges and corners of the grid.
//
// For a layer inside the domain, pass the grids already shrunk by ncell on
// the enabled sides; the layer then fills the ring between them and the
// domain boundary.
func MakeBoxArray(geom amr.Geometry, gridBA amr.BoxArray, ncell int, inDomain bool,
	doLo, doHi [3]bool) (ba amr.BoxArray, err error) {
	var (
		domain = geom.Domain
		boxes  []amr.Box
	)
	if ncell <= 0 {
		return amr.NewBoxArray(nil), nil
	}
	for d := 0; d < amr.SpaceDim; d++ {
		if geom.IsPeriodic[d] {
			continue
		}
		if doLo[d] {
			domain = domain.GrowLo(d, ncell)
		}
		if doHi[d] {
			domain = domain.GrowHi(d, ncell)
		}
	}
	gridBA = gridBA.Convert(amr.CellType())
	for i := 0; i < gridBA.Len(); i++ {
		var (
			grid = gridBA.Get(i)
			size = grid.Size()
		)
		if !inDomain {
			// Layers of distinct patches must not overlap
			for d := 0; d < amr.SpaceDim; d++ {
				if (doLo[d] || doHi[d]) && !geom.IsPeriodic[d] && grid.Length(d) <= ncell {
					return ba, fmt.Errorf("grid %v is not longer than the layer (%d cells) along dim %d, use larger grids",
						grid, ncell, d)
				}
			}
		}
		bx := grid.Grow(ncell).Intersect(domain)
		if !bx.Ok() {
			continue
		}
		var bndry []amr.Box
		for kk := -1; kk <= 1; kk++ {
			for jj := -1; jj <= 1; jj++ {
				for ii := -1; ii <= 1; ii++ {
					if ii == 0 && jj == 0 && kk == 0 {
						continue
					}
					b := grid.Shift(size.Mul(amr.IntVect{ii, jj, kk})).Intersect(bx)
					if b.Ok() {
						bndry = append(bndry, b)
					}
				}
			}
		}
		for _, b := range gridBA.ComplementIn(bx) {
			for _, bb := range bndry {
				if ib := b.Intersect(bb); ib.Ok() {
					boxes = append(boxes, ib)
				}
			}
		}
	}
	ba = amr.NewBoxArray(boxes).RemoveOverlap()
	return
}

// reducedGrids clips the grids to the domain shrunk by ncell on the enabled,
// non periodic sides
func reducedGrids(geom amr.Geometry, gridBA amr.BoxArray, ncell int,
	doLo, doHi [3]bool) amr.BoxArray {
	inner := geom.Domain
	for d := 0; d < amr.SpaceDim; d++ {
		if geom.IsPeriodic[d] {
			continue
		}
		if doLo[d] {
			inner = inner.GrowLo(d, -ncell)
		}
		if doHi[d] {
			inner = inner.GrowHi(d, -ncell)
		}
	}
	return gridBA.Convert(amr.CellType()).IntersectWith(inner)
}
