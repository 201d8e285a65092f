// Package metisdm distributes boxes over workers by partitioning the box
// adjacency graph with METIS, keeping halo traffic between workers low.
package metisdm

import (
	"fmt"
	"log"

	"github.com/james-bowman/sparse"
	metis "github.com/notargets/go-metis"

	"github.com/notargets/gopic/amr"
)

type Config struct {
	Objective       string  // "cut" or "vol"
	ImbalanceFactor float32 // Allowed load imbalance, 1.03 is 3%
	GhostWidth      int     // Boxes within this many cells are neighbors
	Verbose         bool
}

func DefaultConfig() Config {
	return Config{
		Objective:       "cut",
		ImbalanceFactor: 1.03,
		GhostWidth:      1,
	}
}

// New partitions ba over nWorkers workers
func New(ba amr.BoxArray, nWorkers int, cfg Config) (dm amr.DistributionMapping, err error) {
	var (
		nb = ba.Len()
	)
	if nWorkers <= 1 || nb <= nWorkers {
		owners := make([]int, nb)
		for i := range owners {
			owners[i] = i % max(nWorkers, 1)
		}
		dm = amr.NewDistributionMappingFromOwners(owners, max(nWorkers, 1))
		return
	}
	xadj, adjncy, vwgt, adjwgt := BuildGraph(ba, cfg.GhostWidth)

	opts := make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return dm, fmt.Errorf("failed to set METIS options: %w", err)
	}
	if cfg.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}
	ubvec := []float32{cfg.ImbalanceFactor}

	part, objval, err := metis.PartGraphKwayWeighted(
		xadj, adjncy, vwgt, adjwgt,
		int32(nWorkers), nil, ubvec, opts,
	)
	if err != nil {
		return dm, fmt.Errorf("METIS partitioning failed: %w", err)
	}
	owners := make([]int, nb)
	for i := range owners {
		owners[i] = int(part[i])
	}
	dm = amr.NewDistributionMappingFromOwners(owners, nWorkers)
	if cfg.Verbose {
		analyze(ba, dm, objval)
	}
	return
}

// BuildGraph converts box adjacency to METIS CSR form. Vertex weights are
// cell counts, edge weights the number of halo cells the two boxes exchange
// at ghost width ng.
func BuildGraph(ba amr.BoxArray, ng int) (xadj, adjncy, vwgt, adjwgt []int32) {
	var (
		nb  = ba.Len()
		dok = sparse.NewDOK(nb, nb)
		cba = ba.Convert(amr.CellType())
	)
	vwgt = make([]int32, nb)
	for i := 0; i < nb; i++ {
		b := cba.Get(i)
		vwgt[i] = int32(b.NumPts())
		for _, is := range cba.Intersections(b, ng) {
			j := is.Index
			if j <= i {
				continue
			}
			w := is.Box.NumPts() + b.Grow(ng).Intersect(cba.Get(j)).NumPts()
			dok.Set(i, j, float64(w))
			dok.Set(j, i, float64(w))
		}
	}
	raw := dok.ToCSR().RawMatrix()
	xadj = make([]int32, nb+1)
	for i := 0; i <= nb; i++ {
		xadj[i] = int32(raw.Indptr[i])
	}
	adjncy = make([]int32, len(raw.Ind))
	adjwgt = make([]int32, len(raw.Data))
	for n := range raw.Ind {
		adjncy[n] = int32(raw.Ind[n])
		adjwgt[n] = int32(raw.Data[n])
	}
	return
}

func analyze(ba amr.BoxArray, dm amr.DistributionMapping, objval int32) {
	cells := make([]int, dm.NWorkers())
	for i := 0; i < ba.Len(); i++ {
		cells[dm.Owner(i)] += ba.Get(i).NumPts()
	}
	var (
		minC, maxC = cells[0], cells[0]
		total      int
	)
	for _, c := range cells {
		minC, maxC = min(minC, c), max(maxC, c)
		total += c
	}
	avg := float64(total) / float64(len(cells))
	log.Printf("METIS objective value: %d", objval)
	log.Printf("Cells per worker: min %d, max %d, avg %.1f, imbalance %.3f",
		minC, maxC, avg, float64(maxC)/avg)
}
