package amr

import "fmt"

// FArrayBox stores ncomp components over a box, x fastest then y, z and
// component.
type FArrayBox struct {
	box   Box
	nComp int
	data  []float64
	sx    int // stride in y
	sxy   int // stride in z
	sc    int // stride between components
}

func NewFArrayBox(b Box, nComp int) *FArrayBox {
	if !b.Ok() {
		panic(fmt.Sprintf("cannot allocate an empty box %v", b))
	}
	f := &FArrayBox{
		box:   b,
		nComp: nComp,
		sx:    b.Length(0),
		sxy:   b.Length(0) * b.Length(1),
		sc:    b.NumPts(),
	}
	f.data = make([]float64, f.sc*nComp)
	return f
}

func (f *FArrayBox) Box() Box { return f.box }

func (f *FArrayBox) NComp() int { return f.nComp }

func (f *FArrayBox) Data() []float64 { return f.data }

// Index is the offset of (i,j,k,n) in Data
func (f *FArrayBox) Index(i, j, k, n int) int {
	return (i - f.box.Lo[0]) + (j-f.box.Lo[1])*f.sx + (k-f.box.Lo[2])*f.sxy + n*f.sc
}

func (f *FArrayBox) At(i, j, k, n int) float64 { return f.data[f.Index(i, j, k, n)] }

func (f *FArrayBox) Set(i, j, k, n int, v float64) { f.data[f.Index(i, j, k, n)] = v }

func (f *FArrayBox) AddTo(i, j, k, n int, v float64) { f.data[f.Index(i, j, k, n)] += v }

func (f *FArrayBox) Get(iv IntVect, n int) float64 { return f.At(iv[0], iv[1], iv[2], n) }

// SetVal writes v over the region for comps scomp..scomp+nComp-1
func (f *FArrayBox) SetVal(v float64, region Box, scomp, nComp int) {
	region = region.Intersect(f.box)
	if !region.Ok() {
		return
	}
	for n := scomp; n < scomp+nComp; n++ {
		for k := region.Lo[2]; k <= region.Hi[2]; k++ {
			for j := region.Lo[1]; j <= region.Hi[1]; j++ {
				off := f.Index(region.Lo[0], j, k, n)
				row := f.data[off : off+region.Length(0)]
				for i := range row {
					row[i] = v
				}
			}
		}
	}
}

// CopyFrom fills region of f from src at region shifted by -shift
func (f *FArrayBox) CopyFrom(src *FArrayBox, region Box, scomp, dcomp, nComp int,
	shift IntVect) {
	for n := 0; n < nComp; n++ {
		for k := region.Lo[2]; k <= region.Hi[2]; k++ {
			for j := region.Lo[1]; j <= region.Hi[1]; j++ {
				var (
					d = f.Index(region.Lo[0], j, k, dcomp+n)
					s = src.Index(region.Lo[0]-shift[0], j-shift[1], k-shift[2], scomp+n)
					l = region.Length(0)
				)
				copy(f.data[d:d+l], src.data[s:s+l])
			}
		}
	}
}

// Pack serialises a region, comp slowest
func (f *FArrayBox) Pack(region Box, scomp, nComp int) (buf []float64) {
	buf = make([]float64, 0, region.NumPts()*nComp)
	for n := scomp; n < scomp+nComp; n++ {
		for k := region.Lo[2]; k <= region.Hi[2]; k++ {
			for j := region.Lo[1]; j <= region.Hi[1]; j++ {
				off := f.Index(region.Lo[0], j, k, n)
				buf = append(buf, f.data[off:off+region.Length(0)]...)
			}
		}
	}
	return
}

func (f *FArrayBox) Unpack(region Box, dcomp, nComp int, buf []float64) {
	var p int
	for n := dcomp; n < dcomp+nComp; n++ {
		for k := region.Lo[2]; k <= region.Hi[2]; k++ {
			for j := region.Lo[1]; j <= region.Hi[1]; j++ {
				off := f.Index(region.Lo[0], j, k, n)
				l := region.Length(0)
				copy(f.data[off:off+l], buf[p:p+l])
				p += l
			}
		}
	}
}
