package pml

import (
	"fmt"
	"log"

	"github.com/notargets/gopic/amr"
	"github.com/notargets/gopic/amr/metisdm"
	"github.com/notargets/gopic/spectral"
)

// patch is the layer of one refinement patch: split fields, damping profiles
// and optional spectral state, all laid out on the same layer boxes.
type patch struct {
	E, B, J [3]*amr.MultiFab
	F       *amr.MultiFab
	sigba   *MultiSigmaBox
	solver  *spectral.Solver
	geom    amr.Geometry
	ba      amr.BoxArray // cell centered layer boxes
	dm      amr.DistributionMapping
}

// PML is the absorbing layer surrounding the domain of one level. It holds
// a fine patch and, when the level is refined, a coarse patch.
type PML struct {
	cfg     Config
	patches [2]*patch
	ok      bool
	dt      float64
}

// Yee staggering of the field components, true where nodal
var (
	eType = [3]amr.IndexType{
		amr.NewIndexType(0, 1, 1),
		amr.NewIndexType(1, 0, 1),
		amr.NewIndexType(1, 1, 0),
	}
	bType = [3]amr.IndexType{
		amr.NewIndexType(1, 0, 0),
		amr.NewIndexType(0, 1, 0),
		amr.NewIndexType(0, 0, 1),
	}
)

// EType is the staggering of E_i, shared by the current j_i
func EType(i int) amr.IndexType { return eType[i] }

func BType(i int) amr.IndexType { return bType[i] }

// NewPML builds the layer around the grids of gridBA, owned as in gridDM.
// cgeom describes the coarse level and is required when cfg.RefRatio is set.
// A configuration leaving no layer cells returns a PML with Ok() false.
func NewPML(gridBA amr.BoxArray, gridDM amr.DistributionMapping, geom amr.Geometry,
	cgeom *amr.Geometry, dt float64, cfg Config) (p *PML, err error) {
	var (
		nge, ngb = 2, 2
		ngf      = 0
		grids    = gridBA.Convert(amr.CellType())
	)
	if cfg.DoNodal && !cfg.Spectral {
		return nil, fmt.Errorf("nodal fields require the spectral solver")
	}
	if cfg.DoMovingWindow {
		ngf = 2
	}
	if cfg.Spectral {
		ng := cfg.SpectralGuard()
		nge, ngb, ngf = ng, ng, ng
	}
	p = &PML{cfg: cfg, dt: dt}
	if cfg.InDomain {
		grids = reducedGrids(geom, grids, cfg.NCell, cfg.DoLo, cfg.DoHi)
	}
	var ba amr.BoxArray
	if ba, err = MakeBoxArray(geom, grids, cfg.NCell, cfg.InDomain, cfg.DoLo, cfg.DoHi); err != nil {
		return nil, err
	}
	if ba.IsEmpty() {
		return p, nil
	}
	var dm amr.DistributionMapping
	switch cfg.Partitioner {
	case SimilarPartition:
		dm = amr.MakeSimilarDM(ba, gridBA, gridDM, cfg.NCell)
	case ContiguousPartition:
		dm = amr.NewDistributionMapping(ba.Len(), gridDM.NWorkers())
	case MetisPartition:
		mcfg := metisdm.DefaultConfig()
		mcfg.Verbose = cfg.Verbose
		if dm, err = metisdm.New(ba, gridDM.NWorkers(), mcfg); err != nil {
			return nil, fmt.Errorf("partitioning layer boxes: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown partitioner %d", cfg.Partitioner)
	}
	p.patches[Fine] = newPatch(ba, dm, grids, geom, dt, nge, ngb, ngf, cfg)
	p.ok = true

	if !cfg.RefRatio.IsZero() {
		if cgeom == nil {
			return nil, fmt.Errorf("refinement ratio %v without a coarse geometry", cfg.RefRatio)
		}
		if !cfg.DoNodal {
			nge, ngb = 1, 1
		}
		cgrids := gridBA.Convert(amr.CellType()).Coarsen(cfg.RefRatio)
		if cfg.InDomain {
			cgrids = reducedGrids(*cgeom, cgrids, cfg.NCell, cfg.DoLo, cfg.DoHi)
		}
		var cba amr.BoxArray
		if cba, err = MakeBoxArray(*cgeom, cgrids, cfg.NCell, cfg.InDomain, cfg.DoLo, cfg.DoHi); err != nil {
			return nil, fmt.Errorf("coarse patch: %w", err)
		}
		if !cba.IsEmpty() {
			cdm := dm
			if cba.Len() != ba.Len() {
				cdm = amr.NewDistributionMapping(cba.Len(), gridDM.NWorkers())
			}
			p.patches[Coarse] = newPatch(cba, cdm, cgrids, *cgeom, dt, nge, ngb, ngf, cfg)
		}
	}
	if cfg.Verbose {
		for pt, pa := range p.patches {
			if pa == nil {
				continue
			}
			log.Printf("PML %s: %d boxes, %d cells, guards E %d B %d",
				PatchType(pt), pa.ba.Len(), pa.ba.NumPts(), pa.E[0].NGrow(), pa.B[0].NGrow())
		}
	}
	p.ComputePMLFactors(dt)
	return
}

func newPatch(ba amr.BoxArray, dm amr.DistributionMapping, grids amr.BoxArray,
	geom amr.Geometry, dt float64, nge, ngb, ngf int, cfg Config) (pa *patch) {
	dx := geom.CellSize()
	pa = &patch{geom: geom, ba: ba, dm: dm}
	for i := 0; i < 3; i++ {
		pa.E[i] = amr.NewMultiFab(ba.Convert(eType[i]), dm, 3, nge)
		pa.B[i] = amr.NewMultiFab(ba.Convert(bType[i]), dm, 2, ngb)
		if cfg.HasParticles {
			pa.J[i] = amr.NewMultiFab(ba.Convert(eType[i]), dm, 1, ngb)
		}
	}
	if cfg.DoDive {
		pa.F = amr.NewMultiFab(ba.Convert(amr.NodalType()), dm, 3, ngf)
	}
	pa.sigba = NewMultiSigmaBox(ba, dm, NewSigmaBoxFactory(grids, dx, cfg))
	if cfg.Spectral {
		pa.solver = spectral.NewSolver(ba.Grow(nge), dm, dx, cfg.SpectralOrder,
			cfg.DoNodal, dt, spectral.NewPMLAlgorithm())
	}
	return
}

// patch is nil for an absent patch or an empty layer
func (p *PML) patch(pt PatchType) *patch {
	if !p.ok {
		return nil
	}
	return p.patches[pt]
}

// ComputePMLFactors rebuilds the damping factors of both patches, and the
// spectral coefficients, for a new dt.
func (p *PML) ComputePMLFactors(dt float64) {
	if !p.ok {
		return
	}
	p.dt = dt
	for _, pa := range p.patches {
		if pa == nil {
			continue
		}
		pa.sigba.ComputePMLFactorsE(dt)
		pa.sigba.ComputePMLFactorsB(dt)
		if pa.solver != nil {
			pa.solver.SetDt(dt)
		}
	}
}

func (p *PML) Ok() bool { return p.ok }

func (p *PML) HasCoarse() bool { return p.patch(Coarse) != nil }

func (p *PML) HasSpectral() bool { return p.ok && p.cfg.Spectral }

func (p *PML) Dt() float64 { return p.dt }

func (p *PML) Config() Config { return p.cfg }

func (p *PML) GetE(pt PatchType) (e [3]*amr.MultiFab) {
	if pa := p.patch(pt); pa != nil {
		e = pa.E
	}
	return
}

func (p *PML) GetB(pt PatchType) (b [3]*amr.MultiFab) {
	if pa := p.patch(pt); pa != nil {
		b = pa.B
	}
	return
}

func (p *PML) GetJ(pt PatchType) (j [3]*amr.MultiFab) {
	if pa := p.patch(pt); pa != nil {
		j = pa.J
	}
	return
}

func (p *PML) GetF(pt PatchType) *amr.MultiFab {
	if pa := p.patch(pt); pa != nil {
		return pa.F
	}
	return nil
}

func (p *PML) GetMultiSigmaBox(pt PatchType) *MultiSigmaBox {
	if pa := p.patch(pt); pa != nil {
		return pa.sigba
	}
	return nil
}
