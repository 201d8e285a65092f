package amr

import "fmt"

// BoxArray is an ordered set of boxes sharing one index type. The boxes of a
// BoxArray used to lay out a MultiFab are disjoint in cell space.
type BoxArray struct {
	boxes  []Box
	ixType IndexType
}

// Isect names a box of a BoxArray and its overlap with a probe box
type Isect struct {
	Index int
	Box   Box
}

func NewBoxArray(boxes []Box) (ba BoxArray) {
	ba.boxes = make([]Box, len(boxes))
	copy(ba.boxes, boxes)
	if len(boxes) > 0 {
		ba.ixType = boxes[0].Type
	}
	for _, b := range boxes {
		if b.Type != ba.ixType {
			panic(fmt.Sprintf("mixed index types in box array: %s and %s",
				ba.ixType, b.Type))
		}
	}
	return
}

// ChopDomain splits a cell box into boxes no longer than maxGrid along any
// dimension
func ChopDomain(domain Box, maxGrid int) BoxArray {
	var (
		boxes []Box
		n     [SpaceDim]int
	)
	for d := 0; d < SpaceDim; d++ {
		n[d] = (domain.Length(d) + maxGrid - 1) / maxGrid
	}
	for k := 0; k < n[2]; k++ {
		for j := 0; j < n[1]; j++ {
			for i := 0; i < n[0]; i++ {
				ijk := IntVect{i, j, k}
				var b Box
				for d := 0; d < SpaceDim; d++ {
					b.Lo[d] = domain.Lo[d] + ijk[d]*maxGrid
					b.Hi[d] = min(b.Lo[d]+maxGrid-1, domain.Hi[d])
				}
				boxes = append(boxes, b)
			}
		}
	}
	return NewBoxArray(boxes)
}

func (ba BoxArray) Len() int { return len(ba.boxes) }

func (ba BoxArray) Get(i int) Box { return ba.boxes[i] }

func (ba BoxArray) IxType() IndexType { return ba.ixType }

func (ba BoxArray) Boxes() []Box {
	out := make([]Box, len(ba.boxes))
	copy(out, ba.boxes)
	return out
}

func (ba BoxArray) IsEmpty() bool { return len(ba.boxes) == 0 }

func (ba BoxArray) NumPts() (n int) {
	for _, b := range ba.boxes {
		n += b.NumPts()
	}
	return
}

func (ba BoxArray) Convert(t IndexType) BoxArray {
	out := BoxArray{boxes: make([]Box, len(ba.boxes)), ixType: t}
	for i, b := range ba.boxes {
		out.boxes[i] = b.Convert(t)
	}
	return out
}

func (ba BoxArray) Coarsen(r IntVect) BoxArray {
	out := BoxArray{boxes: make([]Box, len(ba.boxes)), ixType: ba.ixType}
	for i, b := range ba.boxes {
		out.boxes[i] = b.Coarsen(r)
	}
	return out
}

func (ba BoxArray) Grow(n int) BoxArray {
	out := BoxArray{boxes: make([]Box, len(ba.boxes)), ixType: ba.ixType}
	for i, b := range ba.boxes {
		out.boxes[i] = b.Grow(n)
	}
	return out
}

// IntersectWith clips every box to b and drops the boxes left empty
func (ba BoxArray) IntersectWith(b Box) BoxArray {
	var boxes []Box
	for _, bx := range ba.boxes {
		if ov := bx.Intersect(b); ov.Ok() {
			boxes = append(boxes, ov)
		}
	}
	out := NewBoxArray(boxes)
	out.ixType = ba.ixType
	return out
}

// Intersections lists the boxes which, grown by ng, overlap b
func (ba BoxArray) Intersections(b Box, ng int) (isects []Isect) {
	for i, bx := range ba.boxes {
		if ov := bx.Grow(ng).Intersect(b); ov.Ok() {
			isects = append(isects, Isect{Index: i, Box: ov})
		}
	}
	return
}

func (ba BoxArray) Intersects(b Box) bool {
	return len(ba.Intersections(b, 0)) > 0
}

// ComplementIn returns disjoint boxes covering the part of b not covered by
// the array
func (ba BoxArray) ComplementIn(b Box) (pieces []Box) {
	pieces = []Box{b}
	for _, bx := range ba.boxes {
		if !bx.Intersects(b) {
			continue
		}
		var next []Box
		for _, p := range pieces {
			next = append(next, BoxDiff(p, bx)...)
		}
		pieces = next
		if len(pieces) == 0 {
			return
		}
	}
	return
}

// RemoveOverlap makes the boxes disjoint, earlier boxes keeping their cells
func (ba BoxArray) RemoveOverlap() BoxArray {
	var kept []Box
	for _, b := range ba.boxes {
		pieces := []Box{b}
		for _, k := range kept {
			if !k.Intersects(b) {
				continue
			}
			var next []Box
			for _, p := range pieces {
				next = append(next, BoxDiff(p, k)...)
			}
			pieces = next
		}
		kept = append(kept, pieces...)
	}
	out := NewBoxArray(kept)
	out.ixType = ba.ixType
	return out
}

// MinimalBox is the bounding box of the array
func (ba BoxArray) MinimalBox() (mb Box) {
	if len(ba.boxes) == 0 {
		return Box{Lo: Uniform(1), Type: ba.ixType}
	}
	mb = ba.boxes[0]
	for _, b := range ba.boxes[1:] {
		mb.Lo = mb.Lo.Min(b.Lo)
		mb.Hi = mb.Hi.Max(b.Hi)
	}
	return
}

func (ba BoxArray) Equal(o BoxArray) bool {
	if ba.ixType != o.ixType || len(ba.boxes) != len(o.boxes) {
		return false
	}
	for i := range ba.boxes {
		if ba.boxes[i] != o.boxes[i] {
			return false
		}
	}
	return true
}
