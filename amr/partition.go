package amr

// PartitionMap splits nBoxes boxes into nWorkers contiguous runs whose sizes
// differ by at most one box.
type PartitionMap struct {
	NBoxes   int
	NWorkers int
	Runs     [][2]int // First and one past last box of each worker
}

func NewPartitionMap(nWorkers, nBoxes int) (pm *PartitionMap) {
	pm = &PartitionMap{
		NBoxes:   nBoxes,
		NWorkers: nWorkers,
		Runs:     make([][2]int, nWorkers),
	}
	for w := 0; w < nWorkers; w++ {
		pm.Runs[w] = pm.Split1D(w)
	}
	return
}

func (pm *PartitionMap) GetBucketRange(w int) (kMin, kMax int) {
	return pm.Runs[w][0], pm.Runs[w][1]
}

// Split1D is the run of worker w, the first NBoxes%NWorkers workers taking
// one extra box each
func (pm *PartitionMap) Split1D(w int) (run [2]int) {
	var (
		per   = pm.NBoxes / pm.NWorkers
		extra = pm.NBoxes % pm.NWorkers
	)
	run[0] = w*per + min(w, extra)
	run[1] = run[0] + per
	if w < extra {
		run[1]++
	}
	return
}
