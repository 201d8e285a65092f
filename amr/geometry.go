package amr

// Geometry is the physical description of a cell centered index domain
type Geometry struct {
	Domain     Box
	ProbLo     [SpaceDim]float64
	ProbHi     [SpaceDim]float64
	IsPeriodic [SpaceDim]bool
}

func NewGeometry(domain Box, probLo, probHi [SpaceDim]float64,
	periodic [SpaceDim]bool) Geometry {
	return Geometry{
		Domain:     domain.EnclosedCells(),
		ProbLo:     probLo,
		ProbHi:     probHi,
		IsPeriodic: periodic,
	}
}

func (g Geometry) CellSize() (dx [SpaceDim]float64) {
	for d := 0; d < SpaceDim; d++ {
		dx[d] = (g.ProbHi[d] - g.ProbLo[d]) / float64(g.Domain.Length(d))
	}
	return
}

func (g Geometry) Periodicity() Periodicity {
	var p Periodicity
	for d := 0; d < SpaceDim; d++ {
		if g.IsPeriodic[d] {
			p.Period[d] = g.Domain.Length(d)
		}
	}
	return p
}

// Coarsen keeps the physical extent while coarsening the index domain
func (g Geometry) Coarsen(r IntVect) Geometry {
	c := g
	c.Domain = g.Domain.Coarsen(r)
	return c
}

// Periodicity holds the period of each periodic dimension, zero otherwise
type Periodicity struct {
	Period IntVect
}

func NonPeriodic() Periodicity { return Periodicity{} }

func (p Periodicity) IsPeriodic(d int) bool { return p.Period[d] > 0 }

func (p Periodicity) IsAnyPeriodic() bool { return !p.Period.IsZero() }

// Shifts lists the periodic images, the zero shift first, reaching far
// enough to cover a ghost width of ng.
func (p Periodicity) Shifts(ng int) (shifts []IntVect) {
	var reach IntVect
	for d := 0; d < SpaceDim; d++ {
		if p.Period[d] > 0 {
			reach[d] = 1 + ng/p.Period[d]
		}
	}
	shifts = append(shifts, IntVect{})
	for k := -reach[2]; k <= reach[2]; k++ {
		for j := -reach[1]; j <= reach[1]; j++ {
			for i := -reach[0]; i <= reach[0]; i++ {
				if i == 0 && j == 0 && k == 0 {
					continue
				}
				shifts = append(shifts, IntVect{i, j, k}.Mul(p.Period))
			}
		}
	}
	return
}
