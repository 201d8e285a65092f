package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"

	"github.com/notargets/gopic/amr"
)

type state struct {
	Step int     `json:"step"`
	Time float64 `json:"time"`
	Dt   float64 `json:"dt"`
}

func (s *Simulation) fields() (names []string, mfs []*amr.MultiFab) {
	for i, c := range []string{"x", "y", "z"} {
		names = append(names, "E"+c, "B"+c)
		mfs = append(mfs, s.E[i], s.B[i])
	}
	if s.F != nil {
		names = append(names, "F")
		mfs = append(mfs, s.F)
	}
	return
}

// CheckPoint writes the interior fields, the step state and the PML into dir
func (s *Simulation) CheckPoint(dir string) (err error) {
	if err = os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}
	var data []byte
	if data, err = yaml.Marshal(state{Step: s.Step, Time: s.Time, Dt: s.dt}); err != nil {
		return
	}
	if err = os.WriteFile(filepath.Join(dir, "Simulation"), data, 0644); err != nil {
		return fmt.Errorf("writing simulation state: %w", err)
	}
	names, mfs := s.fields()
	for n, mf := range mfs {
		if err = amr.WriteMultiFab(filepath.Join(dir, names[n]), mf); err != nil {
			return
		}
	}
	return s.PML.CheckPoint(filepath.Join(dir, "pml"))
}

// Restart continues from a checkpoint of the same configuration
func (s *Simulation) Restart(dir string) (err error) {
	var (
		data []byte
		st   state
	)
	if data, err = os.ReadFile(filepath.Join(dir, "Simulation")); err != nil {
		return fmt.Errorf("reading simulation state: %w", err)
	}
	if err = yaml.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("parsing simulation state: %w", err)
	}
	names, mfs := s.fields()
	for n, mf := range mfs {
		if err = amr.ReadMultiFab(filepath.Join(dir, names[n]), mf); err != nil {
			return fmt.Errorf("restoring %s: %w", names[n], err)
		}
	}
	if err = s.PML.Restart(filepath.Join(dir, "pml")); err != nil {
		return
	}
	s.Step, s.Time, s.dt = st.Step, st.Time, st.Dt
	if s.solver != nil {
		s.solver.SetDt(s.dt)
	}
	return
}
