package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/notargets/gopic/amr"
	"github.com/notargets/gopic/driver"
	"github.com/notargets/gopic/pml"
)

// Parameters obtained from the YAML input file
type InputParametersPML struct {
	Title         string               `json:"Title"`
	NCells        [3]int               `json:"NCells"` // One z cell runs in 2D
	CellSize      float64              `json:"CellSize"`
	MaxGrid       int                  `json:"MaxGrid"`
	NWorkers      int                  `json:"NWorkers"`
	CFL           float64              `json:"CFL"`
	Steps         int                  `json:"Steps"`
	Solver        string               `json:"Solver"` // FDTD or PSATD
	SpectralOrder [3]int               `json:"SpectralOrder"`
	PulseWidth    float64              `json:"PulseWidth"`
	Layer         LayerParameters      `json:"PML"`
	Checkpoint    CheckpointParameters `json:"Checkpoint"`
}

type LayerParameters struct {
	NCell        int     `json:"NCell"`
	Delta        int     `json:"Delta"`
	GradingOrder int     `json:"GradingOrder"`
	Reflection   float64 `json:"Reflection"`
	InDomain     bool    `json:"InDomain"`
	Lo           [3]bool `json:"Lo"`
	Hi           [3]bool `json:"Hi"`
	DivE         bool    `json:"DivE"`
	Partitioner  string  `json:"Partitioner"`
}

type CheckpointParameters struct {
	Directory string `json:"Directory"`
	Interval  int    `json:"Interval"`
}

// NewInputParametersPML carries the defaults a deck overrides
func NewInputParametersPML() (ip *InputParametersPML) {
	def := driver.DefaultConfig()
	ip = &InputParametersPML{
		NCells:        [3]int(def.NCells),
		CellSize:      def.CellSize,
		MaxGrid:       def.MaxGrid,
		NWorkers:      def.NWorkers,
		CFL:           def.CFL,
		Steps:         200,
		Solver:        "FDTD",
		SpectralOrder: def.PML.SpectralOrder,
		PulseWidth:    def.PulseWidth,
		Layer: LayerParameters{
			NCell:        def.PML.NCell,
			Delta:        def.PML.Delta,
			GradingOrder: def.PML.GradingOrder,
			Lo:           def.PML.DoLo,
			Hi:           def.PML.DoHi,
			Partitioner:  "similar",
		},
	}
	return
}

func (ip *InputParametersPML) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParametersPML) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%v\t\t= Cells\n", ip.NCells)
	fmt.Printf("%8.3g\t\t= Cell Size\n", ip.CellSize)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("[%d]\t\t\t= Steps\n", ip.Steps)
	fmt.Printf("[%s]\t\t\t= Solver\n", ip.Solver)
	fmt.Printf("[%d/%d]\t\t\t= PML Cells/Grading Width\n", ip.Layer.NCell, ip.Layer.Delta)
	fmt.Printf("%v %v\t= PML Lo/Hi\n", ip.Layer.Lo, ip.Layer.Hi)
	fmt.Printf("[%s]\t\t= Partitioner\n", ip.Layer.Partitioner)
}

// Config converts the deck into a driver configuration
func (ip *InputParametersPML) Config() (cfg driver.Config, err error) {
	cfg = driver.DefaultConfig()
	cfg.NCells = amr.IntVect(ip.NCells)
	cfg.CellSize = ip.CellSize
	cfg.MaxGrid = ip.MaxGrid
	cfg.NWorkers = ip.NWorkers
	cfg.CFL = ip.CFL
	cfg.PulseWidth = ip.PulseWidth
	switch ip.Solver {
	case "FDTD", "fdtd", "Yee", "":
	case "PSATD", "psatd", "spectral":
		cfg.PML.Spectral = true
		cfg.PML.SpectralOrder = ip.SpectralOrder
	default:
		return cfg, fmt.Errorf("unknown solver %q, use FDTD or PSATD", ip.Solver)
	}
	l := ip.Layer
	cfg.PML.NCell = l.NCell
	cfg.PML.Delta = l.Delta
	cfg.PML.GradingOrder = l.GradingOrder
	cfg.PML.Reflection = l.Reflection
	cfg.PML.InDomain = l.InDomain
	cfg.PML.DoLo, cfg.PML.DoHi = l.Lo, l.Hi
	cfg.PML.DoDive = l.DivE
	if cfg.PML.Partitioner, err = pml.NewPartitioner(l.Partitioner); err != nil {
		return
	}
	return
}
