package amr

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBox(t *testing.T) {
	{ // Test staggering conversion
		b := NewBox(IntVect{0, 0, 0}, IntVect{9, 4, 2})
		n := b.Convert(NewIndexType(1, 0, 0))
		assert.Equal(t, IntVect{10, 4, 2}, n.Hi)
		assert.Equal(t, b, n.EnclosedCells())
		assert.Equal(t, 11*5*3, n.NumPts())
	}
	{ // Test coarsening rounds toward negative infinity
		b := NewBox(IntVect{-10, -1, 0}, IntVect{9, 0, 3})
		c := b.Coarsen(Uniform(2))
		assert.Equal(t, IntVect{-5, -1, 0}, c.Lo)
		assert.Equal(t, IntVect{4, 0, 1}, c.Hi)
		assert.Equal(t, b, c.Refine(Uniform(2)).Intersect(b))
	}
	{ // Test adjacent cell slabs
		b := NewBox(IntVect{0, 0, 0}, IntVect{99, 99, 0})
		assert.Equal(t, NewBox(IntVect{-10, 0, 0}, IntVect{-1, 99, 0}), AdjCellLo(b, 0, 10))
		assert.Equal(t, NewBox(IntVect{0, 100, 0}, IntVect{99, 109, 0}), AdjCellHi(b, 1, 10))
	}
	{ // Test BoxDiff tiles a minus b exactly
		a := NewBox(IntVect{-3, -3, -3}, IntVect{6, 6, 6})
		b := NewBox(IntVect{0, 0, 0}, IntVect{3, 3, 9})
		pieces := BoxDiff(a, b)
		var total int
		for n, p := range pieces {
			assert.False(t, p.Intersects(b))
			assert.True(t, a.ContainsBox(p))
			for m := n + 1; m < len(pieces); m++ {
				assert.False(t, p.Intersects(pieces[m]))
			}
			total += p.NumPts()
		}
		assert.Equal(t, a.NumPts()-a.Intersect(b).NumPts(), total)
		assert.Empty(t, BoxDiff(b.Intersect(a), b))
	}
}

func TestBoxArray(t *testing.T) {
	{ // Test chopping a domain
		ba := ChopDomain(NewBox(IntVect{0, 0, 0}, IntVect{99, 49, 0}), 32)
		assert.Equal(t, 4*2, ba.Len())
		assert.Equal(t, 100*50, ba.NumPts())
		assert.Equal(t, NewBox(IntVect{0, 0, 0}, IntVect{99, 49, 0}), ba.MinimalBox())
	}
	{ // Test complement and overlap removal
		ba := NewBoxArray([]Box{
			NewBox(IntVect{0, 0, 0}, IntVect{4, 4, 0}),
			NewBox(IntVect{5, 0, 0}, IntVect{9, 4, 0}),
		})
		outer := NewBox(IntVect{-2, -2, 0}, IntVect{11, 6, 0})
		comp := ba.ComplementIn(outer)
		var total int
		for _, b := range comp {
			assert.False(t, ba.Intersects(b))
			total += b.NumPts()
		}
		assert.Equal(t, outer.NumPts()-ba.NumPts(), total)

		overlapped := NewBoxArray([]Box{
			NewBox(IntVect{0, 0, 0}, IntVect{5, 5, 0}),
			NewBox(IntVect{3, 3, 0}, IntVect{8, 8, 0}),
		})
		disjoint := overlapped.RemoveOverlap()
		assert.Equal(t, 36+36-9, disjoint.NumPts())
		assert.Equal(t, overlapped.Get(0), disjoint.Get(0))
	}
	{ // Test intersections with a ghost width
		ba := ChopDomain(NewBox(IntVect{0, 0, 0}, IntVect{15, 15, 0}), 8)
		probe := NewBox(IntVect{-2, 0, 0}, IntVect{-1, 3, 0})
		assert.Empty(t, ba.Intersections(probe, 0))
		is := ba.Intersections(probe, 2)
		require.Len(t, is, 1)
		assert.Equal(t, 0, is[0].Index)
		assert.Equal(t, probe, is[0].Box)
	}
}

func TestPartitionMap(t *testing.T) {
	getHisto := func(K, Np int) (histo map[int]int) {
		pm := NewPartitionMap(Np, K)
		histo = make(map[int]int)
		for w := 0; w < pm.NWorkers; w++ {
			kMin, kMax := pm.GetBucketRange(w)
			histo[kMax-kMin]++
		}
		return
	}
	assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
	assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
	{ // Test runs are contiguous and cover every box
		for nBoxes := 10; nBoxes < 200; nBoxes++ {
			pm := NewPartitionMap(5, nBoxes)
			next := 0
			for w := 0; w < 5; w++ {
				kMin, kMax := pm.GetBucketRange(w)
				assert.Equal(t, next, kMin)
				next = kMax
			}
			assert.Equal(t, nBoxes, next)
		}
	}
}

func TestDistributionMapping(t *testing.T) {
	domain := NewBox(IntVect{0, 0, 0}, IntVect{31, 31, 0})
	ba := ChopDomain(domain, 16)
	dm := NewDistributionMapping(ba.Len(), 2)
	assert.Equal(t, []int{0, 0, 1, 1}, dm.Owners())
	assert.Equal(t, []int{2, 3}, dm.BoxesOf(1))
	{ // Test similar distribution follows the nearest owner
		layer := NewBoxArray([]Box{
			NewBox(IntVect{-4, 0, 0}, IntVect{-1, 15, 0}),
			NewBox(IntVect{0, 32, 0}, IntVect{15, 35, 0}),
			NewBox(IntVect{100, 100, 0}, IntVect{101, 101, 0}),
		})
		sdm := MakeSimilarDM(layer, ba, dm, 4)
		assert.Equal(t, 0, sdm.Owner(0))
		assert.Equal(t, 1, sdm.Owner(1))
		assert.Equal(t, 2, sdm.NWorkers())
	}
}

func fillIndexed(mf *MultiFab) {
	ParallelFor(mf.DistributionMap(), func(i int) {
		f := mf.Fab(i)
		mf.ValidBox(i).ForEach(func(x, y, z int) {
			for n := 0; n < mf.NComp(); n++ {
				f.Set(x, y, z, n, float64(x+100*y+10000*z+1000000*n))
			}
		})
	})
}

func TestFillBoundary(t *testing.T) {
	var (
		domain = NewBox(IntVect{0, 0, 0}, IntVect{15, 7, 0})
		geom   = NewGeometry(domain, [3]float64{}, [3]float64{1, 1, 1},
			[3]bool{true, false, true})
		ba = ChopDomain(domain, 8)
		dm = NewDistributionMapping(ba.Len(), 2)
		mf = NewMultiFab(ba, dm, 2, 2)
	)
	mf.SetVal(-1)
	fillIndexed(mf)
	mf.FillBoundary(geom.Periodicity())
	wrap := func(v, n int) int { return ((v % n) + n) % n }
	for i := 0; i < mf.Len(); i++ {
		f := mf.Fab(i)
		f.Box().ForEach(func(x, y, z int) {
			if y < 0 || y > 7 {
				assert.Equal(t, -1., f.At(x, y, z, 1))
				return
			}
			want := float64(wrap(x, 16) + 100*y + 1000000)
			assert.Equal(t, want, f.At(x, y, z, 1))
		})
	}
}

func TestParallelCopy(t *testing.T) {
	var (
		domain = NewBox(IntVect{0, 0, 0}, IntVect{15, 15, 0})
		period = Periodicity{Period: IntVect{16, 0, 1}}
		src    = NewMultiFab(ChopDomain(domain, 8), NewDistributionMapping(4, 3), 1, 0)
		dstBA  = NewBoxArray([]Box{
			NewBox(IntVect{12, 4, 0}, IntVect{19, 7, 0}),
			NewBox(IntVect{-20, -20, 0}, IntVect{-18, -18, 0}),
		})
		dst = NewMultiFab(dstBA, NewDistributionMapping(2, 2), 1, 1)
	)
	fillIndexed(src)
	dst.SetVal(-1)
	dst.ParallelCopy(src, 0, 0, 1, 0, 1, period)
	f := dst.Fab(0)
	f.Box().ForEach(func(x, y, z int) {
		assert.Equal(t, float64((x+16)%16+100*y), f.At(x, y, z, 0))
	})
	far := dst.Fab(1)
	far.Box().ForEach(func(x, y, z int) {
		assert.Equal(t, -1., far.At(x, y, z, 0))
	})
}

func TestMultiFabIO(t *testing.T) {
	var (
		dir = t.TempDir()
		ba  = ChopDomain(NewBox(IntVect{0, 0, 0}, IntVect{9, 9, 3}), 5).Convert(NewIndexType(0, 1, 1))
		dm  = NewDistributionMapping(ba.Len(), 3)
		mf  = NewMultiFab(ba, dm, 3, 2)
	)
	ParallelFor(dm, func(i int) {
		data := mf.Fab(i).Data()
		for n := range data {
			data[n] = math.Sin(float64(n+i)) * 1.e-7 / 3.
		}
	})
	path := filepath.Join(dir, "Ex")
	require.NoError(t, WriteMultiFab(path, mf))
	{ // Test exact round trip
		back := NewMultiFab(ba, dm, 3, 2)
		require.NoError(t, ReadMultiFab(path, back))
		for i := 0; i < mf.Len(); i++ {
			assert.Equal(t, mf.Fab(i).Data(), back.Fab(i).Data())
		}
	}
	{ // Test a different layout is refused
		other := NewMultiFab(ba, dm, 3, 1)
		err := ReadMultiFab(path, other)
		assert.True(t, errors.Is(err, ErrLayoutMismatch))
		shifted := NewMultiFab(ba.Coarsen(Uniform(1)).Grow(1), dm, 3, 2)
		err = ReadMultiFab(path, shifted)
		assert.True(t, errors.Is(err, ErrLayoutMismatch))
	}
}
