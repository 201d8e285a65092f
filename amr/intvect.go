package amr

import "fmt"

// SpaceDim is fixed at three; two dimensional problems carry a single cell,
// periodic z extent.
const SpaceDim = 3

type IntVect [SpaceDim]int

func NewIntVect(i, j, k int) IntVect { return IntVect{i, j, k} }

func Uniform(n int) IntVect { return IntVect{n, n, n} }

// UnitVect is the basis vector along dim d
func UnitVect(d int) (iv IntVect) {
	iv[d] = 1
	return
}

func (iv IntVect) Add(o IntVect) IntVect {
	return IntVect{iv[0] + o[0], iv[1] + o[1], iv[2] + o[2]}
}

func (iv IntVect) Sub(o IntVect) IntVect {
	return IntVect{iv[0] - o[0], iv[1] - o[1], iv[2] - o[2]}
}

func (iv IntVect) Scale(s int) IntVect {
	return IntVect{iv[0] * s, iv[1] * s, iv[2] * s}
}

func (iv IntVect) Mul(o IntVect) IntVect {
	return IntVect{iv[0] * o[0], iv[1] * o[1], iv[2] * o[2]}
}

func (iv IntVect) Min(o IntVect) (r IntVect) {
	for d := 0; d < SpaceDim; d++ {
		r[d] = min(iv[d], o[d])
	}
	return
}

func (iv IntVect) Max(o IntVect) (r IntVect) {
	for d := 0; d < SpaceDim; d++ {
		r[d] = max(iv[d], o[d])
	}
	return
}

func (iv IntVect) MaxComponent() int { return max(iv[0], iv[1], iv[2]) }

func (iv IntVect) AllLE(o IntVect) bool {
	return iv[0] <= o[0] && iv[1] <= o[1] && iv[2] <= o[2]
}

func (iv IntVect) IsZero() bool { return iv == IntVect{} }

// Coarsen divides with rounding toward negative infinity
func (iv IntVect) Coarsen(r IntVect) (c IntVect) {
	for d := 0; d < SpaceDim; d++ {
		c[d] = floorDiv(iv[d], r[d])
	}
	return
}

func (iv IntVect) String() string {
	return fmt.Sprintf("(%d,%d,%d)", iv[0], iv[1], iv[2])
}

func floorDiv(a, b int) int {
	if b <= 0 {
		panic(fmt.Sprintf("invalid coarsening ratio %d", b))
	}
	if a >= 0 {
		return a / b
	}
	return -((-a - 1) / b) - 1
}

// IndexType marks each dimension as nodal (true) or cell centered (false).
type IndexType [SpaceDim]bool

func CellType() IndexType  { return IndexType{} }
func NodalType() IndexType { return IndexType{true, true, true} }

// NewIndexType takes 0 for cell centered and 1 for nodal per dimension
func NewIndexType(i, j, k int) IndexType {
	return IndexType{i == 1, j == 1, k == 1}
}

func (t IndexType) IsNodal(d int) bool { return t[d] }

func (t IndexType) IsCellCentered() bool { return !t[0] && !t[1] && !t[2] }

func (t IndexType) IsAllNodal() bool { return t[0] && t[1] && t[2] }

func (t IndexType) IntVect() (iv IntVect) {
	for d := 0; d < SpaceDim; d++ {
		if t[d] {
			iv[d] = 1
		}
	}
	return
}

func (t IndexType) String() string {
	b := []byte("CCC")
	for d := 0; d < SpaceDim; d++ {
		if t[d] {
			b[d] = 'N'
		}
	}
	return string(b)
}
