package amr

import "fmt"

// Box is an axis aligned index range, inclusive of Lo and Hi. For nodal
// dimensions Lo and Hi are node indices, node i sitting on the low face of
// cell i.
type Box struct {
	Lo, Hi IntVect
	Type   IndexType
}

func NewBox(lo, hi IntVect) Box {
	return Box{Lo: lo, Hi: hi}
}

func NewBoxType(lo, hi IntVect, t IndexType) Box {
	return Box{Lo: lo, Hi: hi, Type: t}
}

// Ok is false for an empty box
func (b Box) Ok() bool { return b.Lo.AllLE(b.Hi) }

func (b Box) IsEmpty() bool { return !b.Ok() }

func (b Box) Length(d int) int { return b.Hi[d] - b.Lo[d] + 1 }

func (b Box) Size() IntVect {
	return IntVect{b.Length(0), b.Length(1), b.Length(2)}
}

func (b Box) NumPts() int {
	if !b.Ok() {
		return 0
	}
	return b.Length(0) * b.Length(1) * b.Length(2)
}

func (b Box) Contains(iv IntVect) bool {
	return b.Lo.AllLE(iv) && iv.AllLE(b.Hi)
}

func (b Box) ContainsBox(o Box) bool {
	b.checkType(o)
	return o.Ok() && b.Contains(o.Lo) && b.Contains(o.Hi)
}

func (b Box) Intersects(o Box) bool {
	return b.Intersect(o).Ok()
}

// Intersect returns the common region, which is not Ok when there is none
func (b Box) Intersect(o Box) Box {
	b.checkType(o)
	return Box{Lo: b.Lo.Max(o.Lo), Hi: b.Hi.Min(o.Hi), Type: b.Type}
}

func (b Box) Grow(n int) Box { return b.GrowVect(Uniform(n)) }

func (b Box) GrowVect(n IntVect) Box {
	return Box{Lo: b.Lo.Sub(n), Hi: b.Hi.Add(n), Type: b.Type}
}

func (b Box) GrowDir(d, n int) Box {
	b.Lo[d] -= n
	b.Hi[d] += n
	return b
}

func (b Box) GrowLo(d, n int) Box {
	b.Lo[d] -= n
	return b
}

func (b Box) GrowHi(d, n int) Box {
	b.Hi[d] += n
	return b
}

func (b Box) Shift(s IntVect) Box {
	return Box{Lo: b.Lo.Add(s), Hi: b.Hi.Add(s), Type: b.Type}
}

func (b Box) ShiftDir(d, n int) Box {
	b.Lo[d] += n
	b.Hi[d] += n
	return b
}

// Convert changes the staggering. A cell to node conversion adds the high
// face node, a node to cell conversion drops it.
func (b Box) Convert(t IndexType) Box {
	for d := 0; d < SpaceDim; d++ {
		switch {
		case !b.Type[d] && t[d]:
			b.Hi[d]++
		case b.Type[d] && !t[d]:
			b.Hi[d]--
		}
	}
	b.Type = t
	return b
}

func (b Box) SurroundingNodes() Box { return b.Convert(NodalType()) }

func (b Box) EnclosedCells() Box { return b.Convert(CellType()) }

func (b Box) Coarsen(r IntVect) Box {
	c := Box{Lo: b.Lo.Coarsen(r), Hi: b.Hi.Coarsen(r), Type: b.Type}
	for d := 0; d < SpaceDim; d++ {
		if b.Type[d] && b.Hi[d]%r[d] != 0 {
			c.Hi[d]++
		}
	}
	return c
}

func (b Box) Refine(r IntVect) Box {
	f := Box{Lo: b.Lo.Mul(r), Hi: b.Hi.Mul(r), Type: b.Type}
	for d := 0; d < SpaceDim; d++ {
		if !b.Type[d] {
			f.Hi[d] += r[d] - 1
		}
	}
	return f
}

// AdjCellLo is the slab of n cells just below b along dim d
func AdjCellLo(b Box, d, n int) Box {
	c := b.EnclosedCells()
	c.Hi[d] = c.Lo[d] - 1
	c.Lo[d] = c.Lo[d] - n
	return c
}

// AdjCellHi is the slab of n cells just above b along dim d
func AdjCellHi(b Box, d, n int) Box {
	c := b.EnclosedCells()
	c.Lo[d] = c.Hi[d] + 1
	c.Hi[d] = c.Hi[d] + n
	return c
}

// BoxDiff returns disjoint boxes covering a with b removed
func BoxDiff(a, b Box) (pieces []Box) {
	if !a.Ok() {
		return
	}
	if !a.Intersects(b) {
		return []Box{a}
	}
	r := a
	for d := 0; d < SpaceDim; d++ {
		if r.Lo[d] < b.Lo[d] {
			p := r
			p.Hi[d] = b.Lo[d] - 1
			pieces = append(pieces, p)
			r.Lo[d] = b.Lo[d]
		}
		if r.Hi[d] > b.Hi[d] {
			p := r
			p.Lo[d] = b.Hi[d] + 1
			pieces = append(pieces, p)
			r.Hi[d] = b.Hi[d]
		}
	}
	return
}

// ForEach visits every index of the box, x fastest
func (b Box) ForEach(fn func(i, j, k int)) {
	for k := b.Lo[2]; k <= b.Hi[2]; k++ {
		for j := b.Lo[1]; j <= b.Hi[1]; j++ {
			for i := b.Lo[0]; i <= b.Hi[0]; i++ {
				fn(i, j, k)
			}
		}
	}
}

func (b Box) String() string {
	return fmt.Sprintf("[%v-%v %s]", b.Lo, b.Hi, b.Type)
}

func (b Box) checkType(o Box) {
	if b.Type != o.Type {
		panic(fmt.Sprintf("index type mismatch between %v and %v", b, o))
	}
}
