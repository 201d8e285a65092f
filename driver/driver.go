// Package driver runs the interior field solve around a PML: Yee or spectral
// fields on the domain boxes, coupled each step to the absorbing layer.
package driver

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gopic/amr"
	"github.com/notargets/gopic/physconst"
	"github.com/notargets/gopic/pml"
	"github.com/notargets/gopic/spectral"
)

type Config struct {
	NCells     amr.IntVect // Domain cells, one z cell for a 2D run
	CellSize   float64
	MaxGrid    int
	NWorkers   int
	CFL        float64
	PulseWidth float64 // Gaussian E_z pulse width in cells
	PML        pml.Config
	Verbose    bool
}

func DefaultConfig() Config {
	return Config{
		NCells:     amr.IntVect{64, 64, 1},
		CellSize:   1.e-6,
		MaxGrid:    32,
		NWorkers:   2,
		CFL:        0.9,
		PulseWidth: 4,
		PML:        pml.DefaultConfig(),
	}
}

// Simulation holds the interior fields on a single level and its PML
type Simulation struct {
	cfg    Config
	geom   amr.Geometry
	ba     amr.BoxArray
	dm     amr.DistributionMapping
	E, B   [3]*amr.MultiFab
	F      *amr.MultiFab
	PML    *pml.PML
	solver *spectral.Solver
	dt     float64
	Step   int
	Time   float64
}

// New builds the domain, its fields and the PML. A domain with one z cell
// is run in 2D, periodic along z with no layer there.
func New(cfg Config) (s *Simulation, err error) {
	var (
		n        = cfg.NCells
		h        = cfg.CellSize
		periodic [3]bool
		dims     = 3
		ng       = 2
	)
	for d := 0; d < 3; d++ {
		if n[d] < 1 {
			return nil, fmt.Errorf("domain needs at least one cell per dimension, have %v", n)
		}
	}
	if cfg.CellSize <= 0 || cfg.CFL <= 0 {
		return nil, fmt.Errorf("cell size and CFL must be positive")
	}
	if n[2] == 1 {
		periodic[2] = true
		cfg.PML.DoLo[2], cfg.PML.DoHi[2] = false, false
		dims = 2
	}
	domain := amr.NewBox(amr.IntVect{}, n.Sub(amr.Uniform(1)))
	s = &Simulation{
		cfg: cfg,
		geom: amr.NewGeometry(domain, [3]float64{},
			[3]float64{float64(n[0]) * h, float64(n[1]) * h, float64(n[2]) * h}, periodic),
		ba: amr.ChopDomain(domain, max(cfg.MaxGrid, 1)),
	}
	s.dm = amr.NewDistributionMapping(s.ba.Len(), max(cfg.NWorkers, 1))
	s.dt = cfg.CFL * h / (physconst.C * math.Sqrt(float64(dims)))
	if cfg.PML.Spectral {
		ng = cfg.PML.SpectralGuard()
	}
	for i := 0; i < 3; i++ {
		s.E[i] = amr.NewMultiFab(s.ba.Convert(pml.EType(i)), s.dm, 1, ng)
		s.B[i] = amr.NewMultiFab(s.ba.Convert(pml.BType(i)), s.dm, 1, ng)
	}
	if cfg.PML.DoDive {
		s.F = amr.NewMultiFab(s.ba.Convert(amr.NodalType()), s.dm, 1, ng)
	}
	if cfg.PML.Spectral {
		s.solver = spectral.NewSolver(s.ba.Grow(ng), s.dm, s.geom.CellSize(),
			cfg.PML.SpectralOrder, cfg.PML.DoNodal, s.dt, spectral.NewVacuumAlgorithm())
	}
	if s.PML, err = pml.NewPML(s.ba, s.dm, s.geom, nil, s.dt, cfg.PML); err != nil {
		return nil, err
	}
	if cfg.Verbose {
		log.Printf("Domain %v in %d boxes over %d workers, dt = %g",
			domain, s.ba.Len(), s.dm.NWorkers(), s.dt)
	}
	return
}

func (s *Simulation) Dt() float64 { return s.dt }

func (s *Simulation) Geometry() amr.Geometry { return s.geom }

// InitPulse sets a Gaussian E_z centered in the domain, all else zero
func (s *Simulation) InitPulse() {
	var (
		w  = s.cfg.PulseWidth
		cx = float64(s.cfg.NCells[0]) / 2
		cy = float64(s.cfg.NCells[1]) / 2
	)
	for i := 0; i < 3; i++ {
		s.E[i].SetVal(0)
		s.B[i].SetVal(0)
	}
	ez := s.E[2]
	amr.ParallelFor(s.dm, func(n int) {
		f := ez.Fab(n)
		f.Box().ForEach(func(x, y, z int) {
			dx, dy := float64(x)-cx, float64(y)-cy
			f.Set(x, y, z, 0, math.Exp(-(dx*dx+dy*dy)/(2*w*w)))
		})
	})
	s.fillBoundaryE()
}

// Advance runs nSteps steps
func (s *Simulation) Advance(nSteps int) {
	for n := 0; n < nSteps; n++ {
		if s.solver != nil {
			s.stepPSATD()
		} else {
			s.stepFDTD()
		}
		s.Step++
		s.Time += s.dt
	}
}

// stepFDTD is the leapfrog step: B half push, E push, B half push, with the
// layer exchanged and synced after each push and damped at the end.
func (s *Simulation) stepFDTD() {
	dt := s.dt
	s.evolveB(0.5 * dt)
	s.PML.EvolveB(0.5 * dt)
	s.fillBoundaryB()

	s.evolveE(dt)
	s.PML.EvolveE(dt)
	if s.F != nil {
		s.evolveF(dt)
		s.PML.EvolveF(dt)
		s.fillBoundaryF()
	}
	s.fillBoundaryE()

	s.evolveB(0.5 * dt)
	s.PML.EvolveB(0.5 * dt)
	s.PML.DampPML()
	s.fillBoundaryE()
	s.fillBoundaryB()
}

func (s *Simulation) stepPSATD() {
	for i := 0; i < 3; i++ {
		s.solver.ForwardTransform(s.E[i], spectral.Ex+i, 0)
		s.solver.ForwardTransform(s.B[i], spectral.Bx+i, 0)
	}
	s.solver.PushSpectralFields()
	for i := 0; i < 3; i++ {
		s.solver.BackwardTransform(s.E[i], spectral.Ex+i, 0)
		s.solver.BackwardTransform(s.B[i], spectral.Bx+i, 0)
	}
	s.PML.PushPSATD()
	s.fillBoundaryE()
	s.fillBoundaryB()
}

func (s *Simulation) fillBoundaryE() {
	s.PML.ExchangeE(s.E, [3]*amr.MultiFab{})
	s.PML.FillBoundaryE()
	for _, mf := range s.E {
		mf.FillBoundary(s.geom.Periodicity())
	}
}

func (s *Simulation) fillBoundaryB() {
	s.PML.ExchangeB(s.B, [3]*amr.MultiFab{})
	s.PML.FillBoundaryB()
	for _, mf := range s.B {
		mf.FillBoundary(s.geom.Periodicity())
	}
}

func (s *Simulation) fillBoundaryF() {
	s.PML.ExchangeF(s.F, nil)
	s.PML.FillBoundaryF()
	s.F.FillBoundary(s.geom.Periodicity())
}

// evolveB is B -= dt curl E on the valid boxes
func (s *Simulation) evolveB(dt float64) {
	dx := s.geom.CellSize()
	amr.ParallelFor(s.dm, func(n int) {
		for i := 0; i < 3; i++ {
			var (
				a, b   = (i + 1) % 3, (i + 2) % 3
				ea, eb = s.E[a].Fab(n), s.E[b].Fab(n)
				bf     = s.B[i].Fab(n)
				ua, ub = amr.UnitVect(a), amr.UnitVect(b)
			)
			s.B[i].ValidBox(n).ForEach(func(x, y, z int) {
				iv := amr.IntVect{x, y, z}
				curl := (eb.Get(iv.Add(ua), 0)-eb.Get(iv, 0))/dx[a] -
					(ea.Get(iv.Add(ub), 0)-ea.Get(iv, 0))/dx[b]
				bf.AddTo(x, y, z, 0, -dt*curl)
			})
		}
	})
}

// evolveE is E += c^2 dt (curl B + grad F) on the valid boxes
func (s *Simulation) evolveE(dt float64) {
	var (
		dx = s.geom.CellSize()
		c2 = physconst.C * physconst.C
	)
	amr.ParallelFor(s.dm, func(n int) {
		var ff *amr.FArrayBox
		if s.F != nil {
			ff = s.F.Fab(n)
		}
		for i := 0; i < 3; i++ {
			var (
				a, b   = (i + 1) % 3, (i + 2) % 3
				ba, bb = s.B[a].Fab(n), s.B[b].Fab(n)
				ef     = s.E[i].Fab(n)
				ua, ub = amr.UnitVect(a), amr.UnitVect(b)
				ui     = amr.UnitVect(i)
			)
			s.E[i].ValidBox(n).ForEach(func(x, y, z int) {
				iv := amr.IntVect{x, y, z}
				rhs := (bb.Get(iv, 0)-bb.Get(iv.Sub(ua), 0))/dx[a] -
					(ba.Get(iv, 0)-ba.Get(iv.Sub(ub), 0))/dx[b]
				if ff != nil {
					rhs += (ff.Get(iv.Add(ui), 0) - ff.Get(iv, 0)) / dx[i]
				}
				ef.AddTo(x, y, z, 0, c2*dt*rhs)
			})
		}
	})
}

// evolveF is F += dt div E on the valid boxes
func (s *Simulation) evolveF(dt float64) {
	dx := s.geom.CellSize()
	amr.ParallelFor(s.dm, func(n int) {
		ff := s.F.Fab(n)
		s.F.ValidBox(n).ForEach(func(x, y, z int) {
			var (
				iv  = amr.IntVect{x, y, z}
				div float64
			)
			for d := 0; d < 3; d++ {
				ed := s.E[d].Fab(n)
				div += (ed.Get(iv, 0) - ed.Get(iv.Sub(amr.UnitVect(d)), 0)) / dx[d]
			}
			ff.AddTo(x, y, z, 0, dt*div)
		})
	})
}

// FieldEnergy is the electromagnetic energy of the interior valid cells
func (s *Simulation) FieldEnergy() float64 {
	var (
		dx    = s.geom.CellSize()
		dV    = dx[0] * dx[1] * dx[2]
		parts = make([]float64, 0, 6)
	)
	for i := 0; i < 3; i++ {
		parts = append(parts, 0.5*physconst.Ep0*s.E[i].SumSquares(0)*dV)
		parts = append(parts, 0.5/physconst.Mu0*s.B[i].SumSquares(0)*dV)
	}
	return floats.Sum(parts)
}

// MaxField is the largest interior |E| component
func (s *Simulation) MaxField() float64 {
	m := make([]float64, 3)
	for i := range m {
		m[i] = s.E[i].MaxAbs()
	}
	return floats.Max(m)
}
