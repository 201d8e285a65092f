package spectral

import "github.com/notargets/gopic/physconst"

// Algorithm advances the spectral fields of one box over the dt the
// coefficients were computed for.
type Algorithm interface {
	NumFields() int
	Push(ks *KSpace)
}

// Field indices of the vacuum algorithm
const (
	Ex = iota
	Ey
	Ez
	Bx
	By
	Bz
	NumVacuumFields
)

// SplitE is the field index of component comp of the split E_dir. Comp 0 is
// damped along (dir+1)%3, comp 1 along (dir+2)%3.
func SplitE(dir, comp int) int { return 2*dir + comp }

func SplitB(dir, comp int) int { return 6 + 2*dir + comp }

const NumSplitFields = 12

type vacuumAlgorithm struct{}

// NewVacuumAlgorithm is the exact free space update
//
//	E = C E + S c^2 i k x B
//	B = C B - S i k x E
func NewVacuumAlgorithm() Algorithm { return vacuumAlgorithm{} }

func (vacuumAlgorithm) NumFields() int { return NumVacuumFields }

func (vacuumAlgorithm) Push(ks *KSpace) {
	var (
		c2 = complex(physconst.C*physconst.C, 0)
		f  = ks.Fields
	)
	for kk := 0; kk < ks.N[2]; kk++ {
		for jj := 0; jj < ks.N[1]; jj++ {
			for ii := 0; ii < ks.N[0]; ii++ {
				var (
					p          = ks.Index(ii, jj, kk)
					kx         = complex(0, ks.KMod[0][ii])
					ky         = complex(0, ks.KMod[1][jj])
					kz         = complex(0, ks.KMod[2][kk])
					C          = complex(ks.C[p], 0)
					S          = complex(ks.S[p], 0)
					ex, ey, ez = f[Ex][p], f[Ey][p], f[Ez][p]
					bx, by, bz = f[Bx][p], f[By][p], f[Bz][p]
				)
				f[Ex][p] = C*ex + S*c2*(ky*bz-kz*by)
				f[Ey][p] = C*ey + S*c2*(kz*bx-kx*bz)
				f[Ez][p] = C*ez + S*c2*(kx*by-ky*bx)
				f[Bx][p] = C*bx - S*(ky*ez-kz*ey)
				f[By][p] = C*by - S*(kz*ex-kx*ez)
				f[Bz][p] = C*bz - S*(kx*ey-ky*ex)
			}
		}
	}
}

type pmlAlgorithm struct{}

// NewPMLAlgorithm is the free space update applied to split fields, each
// split part taking the curl term of its own direction. Damping is applied
// in real space after the backward transform.
func NewPMLAlgorithm() Algorithm { return pmlAlgorithm{} }

func (pmlAlgorithm) NumFields() int { return NumSplitFields }

func (pmlAlgorithm) Push(ks *KSpace) {
	var (
		c2   = complex(physconst.C*physconst.C, 0)
		f    = ks.Fields
		k    [3]complex128
		eTot [3]complex128
		bTot [3]complex128
	)
	for kk := 0; kk < ks.N[2]; kk++ {
		for jj := 0; jj < ks.N[1]; jj++ {
			for ii := 0; ii < ks.N[0]; ii++ {
				var (
					p = ks.Index(ii, jj, kk)
					C = complex(ks.C[p], 0)
					S = complex(ks.S[p], 0)
				)
				k[0] = complex(0, ks.KMod[0][ii])
				k[1] = complex(0, ks.KMod[1][jj])
				k[2] = complex(0, ks.KMod[2][kk])
				for d := 0; d < 3; d++ {
					eTot[d] = f[SplitE(d, 0)][p] + f[SplitE(d, 1)][p]
					bTot[d] = f[SplitB(d, 0)][p] + f[SplitB(d, 1)][p]
				}
				for d := 0; d < 3; d++ {
					a, b := (d+1)%3, (d+2)%3
					e0, e1 := SplitE(d, 0), SplitE(d, 1)
					b0, b1 := SplitB(d, 0), SplitB(d, 1)
					f[e0][p] = C*f[e0][p] + S*c2*k[a]*bTot[b]
					f[e1][p] = C*f[e1][p] - S*c2*k[b]*bTot[a]
					f[b0][p] = C*f[b0][p] - S*k[a]*eTot[b]
					f[b1][p] = C*f[b1][p] + S*k[b]*eTot[a]
				}
			}
		}
	}
}
