package pml

import (
	"fmt"

	"github.com/notargets/gopic/amr"
)

type PatchType int

const (
	Fine PatchType = iota
	Coarse
)

func (pt PatchType) String() string {
	switch pt {
	case Fine:
		return "fp"
	case Coarse:
		return "cp"
	}
	return fmt.Sprintf("PatchType(%d)", int(pt))
}

// Partitioner selects how layer boxes are assigned to workers
type Partitioner int

const (
	SimilarPartition Partitioner = iota // Follow the owners of nearby interior boxes
	ContiguousPartition
	MetisPartition
)

func NewPartitioner(label string) (Partitioner, error) {
	switch label {
	case "", "similar", "Similar":
		return SimilarPartition, nil
	case "contiguous", "Contiguous":
		return ContiguousPartition, nil
	case "metis", "METIS":
		return MetisPartition, nil
	}
	return 0, fmt.Errorf("unknown partitioner %q", label)
}

type Config struct {
	NCell        int     // Layer thickness in cells
	Delta        int     // Grading width in cells, sigma saturates beyond it
	GradingOrder int     // Polynomial order n of the grading, 2 when unset
	Reflection   float64 // Target normal reflection, 0 uses sigma_max = 4c/dx
	InDomain     bool    // Layer occupies the outer ring of the domain
	DoLo, DoHi   [3]bool
	RefRatio     amr.IntVect // Zero for a level without coarse patch

	DoDive         bool // Allocate F for divergence cleaning
	DoMovingWindow bool
	DoNodal        bool
	HasParticles   bool // Allocate j

	Spectral      bool
	SpectralOrder [3]int // Stencil order per dim, non positive for infinite

	Partitioner Partitioner
	Verbose     bool
}

func DefaultConfig() Config {
	return Config{
		NCell:         10,
		Delta:         10,
		GradingOrder:  2,
		DoLo:          [3]bool{true, true, true},
		DoHi:          [3]bool{true, true, true},
		SpectralOrder: [3]int{16, 16, 16},
	}
}

func (cfg Config) gradingOrder() int {
	if cfg.GradingOrder <= 0 {
		return 2
	}
	return cfg.GradingOrder
}

// SpectralGuard is the guard width the spectral stencil needs, shared by the
// layer and the interior fields
func (cfg Config) SpectralGuard() (ng int) {
	for _, o := range cfg.SpectralOrder {
		if o <= 0 {
			o = infiniteOrderGuard
		}
		ng = max(ng, o)
	}
	return
}

const infiniteOrderGuard = 16
