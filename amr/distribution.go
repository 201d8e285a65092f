package amr

import (
	"fmt"
	"sync"
)

// DistributionMapping assigns every box of a BoxArray to one worker
type DistributionMapping struct {
	owners   []int
	nWorkers int
}

// NewDistributionMapping hands contiguous runs of boxes to each worker
func NewDistributionMapping(nBoxes, nWorkers int) DistributionMapping {
	if nWorkers < 1 {
		panic(fmt.Sprintf("invalid worker count %d", nWorkers))
	}
	var (
		pm     = NewPartitionMap(nWorkers, nBoxes)
		owners = make([]int, nBoxes)
	)
	for w := 0; w < nWorkers; w++ {
		kMin, kMax := pm.GetBucketRange(w)
		for i := kMin; i < kMax; i++ {
			owners[i] = w
		}
	}
	return DistributionMapping{owners: owners, nWorkers: nWorkers}
}

func NewDistributionMappingFromOwners(owners []int, nWorkers int) DistributionMapping {
	dm := DistributionMapping{owners: make([]int, len(owners)), nWorkers: nWorkers}
	for i, w := range owners {
		if w < 0 || w >= nWorkers {
			panic(fmt.Sprintf("box %d assigned to worker %d of %d", i, w, nWorkers))
		}
		dm.owners[i] = w
	}
	return dm
}

// MakeSimilarDM gives each box of ba to the worker owning the largest volume
// of srcBA within ng of it, so layer boxes live with their neighbors. Boxes
// with no such neighbor go to the least loaded worker.
func MakeSimilarDM(ba, srcBA BoxArray, srcDM DistributionMapping, ng int) DistributionMapping {
	var (
		cba    = ba.Convert(CellType())
		csrc   = srcBA.Convert(CellType())
		owners = make([]int, ba.Len())
		load   = make([]int, srcDM.NWorkers())
	)
	for i := 0; i < cba.Len(); i++ {
		var (
			b       = cba.Get(i)
			volume  = make(map[int]int)
			best    = -1
			bestVol = 0
		)
		for _, is := range csrc.Intersections(b, ng) {
			volume[srcDM.Owner(is.Index)] += is.Box.NumPts()
		}
		for w := 0; w < srcDM.NWorkers(); w++ {
			if volume[w] > bestVol {
				best, bestVol = w, volume[w]
			}
		}
		if best < 0 {
			best = 0
			for w := 1; w < len(load); w++ {
				if load[w] < load[best] {
					best = w
				}
			}
		}
		owners[i] = best
		load[best] += b.NumPts()
	}
	return NewDistributionMappingFromOwners(owners, srcDM.NWorkers())
}

func (dm DistributionMapping) Owner(i int) int { return dm.owners[i] }

func (dm DistributionMapping) Len() int { return len(dm.owners) }

func (dm DistributionMapping) NWorkers() int { return dm.nWorkers }

func (dm DistributionMapping) Owners() []int {
	out := make([]int, len(dm.owners))
	copy(out, dm.owners)
	return out
}

// BoxesOf lists the boxes owned by worker w in index order
func (dm DistributionMapping) BoxesOf(w int) (boxes []int) {
	for i, o := range dm.owners {
		if o == w {
			boxes = append(boxes, i)
		}
	}
	return
}

// ParallelFor runs fn over every box, one goroutine per worker, each worker
// visiting only the boxes it owns.
func ParallelFor(dm DistributionMapping, fn func(i int)) {
	var (
		wg = sync.WaitGroup{}
	)
	for w := 0; w < dm.NWorkers(); w++ {
		wg.Add(1)
		go func(w int) {
			for _, i := range dm.BoxesOf(w) {
				fn(i)
			}
			wg.Done()
		}(w)
	}
	wg.Wait()
}
