package pml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"

	"github.com/notargets/gopic/amr"
)

// ErrGeometryMismatch is returned by Restart when the checkpoint was written
// for a different layer. The run cannot continue from it.
var ErrGeometryMismatch = errors.New("PML checkpoint does not match the layer geometry")

const headerFile = "Header"

// Header describes the layer a checkpoint was written for
type Header struct {
	NCell        int              `json:"ncell"`
	Delta        int              `json:"delta"`
	GradingOrder int              `json:"gradingOrder"`
	Reflection   float64          `json:"reflection"`
	InDomain     bool             `json:"inDomain"`
	DoLo         [3]bool          `json:"doLo"`
	DoHi         [3]bool          `json:"doHi"`
	FineBoxes    [][2]amr.IntVect `json:"fineBoxes"`
	CoarseBoxes  [][2]amr.IntVect `json:"coarseBoxes,omitempty"`
	HasF         bool             `json:"hasF"`
	HasJ         bool             `json:"hasJ"`
	Dt           float64          `json:"dt"`
}

func (p *PML) header() (h Header) {
	h = Header{
		NCell:        p.cfg.NCell,
		Delta:        p.cfg.Delta,
		GradingOrder: p.cfg.gradingOrder(),
		Reflection:   p.cfg.Reflection,
		InDomain:     p.cfg.InDomain,
		DoLo:         p.cfg.DoLo,
		DoHi:         p.cfg.DoHi,
		Dt:           p.dt,
	}
	h.FineBoxes = boxList(p.patch(Fine))
	h.CoarseBoxes = boxList(p.patch(Coarse))
	if pa := p.patch(Fine); pa != nil {
		h.HasF = pa.F != nil
		h.HasJ = pa.J[0] != nil
	}
	return
}

func boxList(pa *patch) (boxes [][2]amr.IntVect) {
	if pa == nil {
		return
	}
	for i := 0; i < pa.ba.Len(); i++ {
		b := pa.ba.Get(i)
		boxes = append(boxes, [2]amr.IntVect{b.Lo, b.Hi})
	}
	return
}

// fields names every layer field of a patch as stored in a checkpoint
func (pa *patch) fields(pt PatchType) (names []string, mfs []*amr.MultiFab) {
	for i, c := range []string{"x", "y", "z"} {
		names = append(names, fmt.Sprintf("E%s_%s", c, pt))
		mfs = append(mfs, pa.E[i])
	}
	for i, c := range []string{"x", "y", "z"} {
		names = append(names, fmt.Sprintf("B%s_%s", c, pt))
		mfs = append(mfs, pa.B[i])
	}
	if pa.J[0] != nil {
		for i, c := range []string{"x", "y", "z"} {
			names = append(names, fmt.Sprintf("J%s_%s", c, pt))
			mfs = append(mfs, pa.J[i])
		}
	}
	if pa.F != nil {
		names = append(names, "F_"+pt.String())
		mfs = append(mfs, pa.F)
	}
	return
}

// CheckPoint writes the layer header and every split field of both patches
// into dir. An empty layer writes nothing.
func (p *PML) CheckPoint(dir string) (err error) {
	if !p.ok {
		return
	}
	if err = os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}
	var data []byte
	if data, err = yaml.Marshal(p.header()); err != nil {
		return fmt.Errorf("encoding PML header: %w", err)
	}
	if err = os.WriteFile(filepath.Join(dir, headerFile), data, 0644); err != nil {
		return fmt.Errorf("writing PML header: %w", err)
	}
	for pt := Fine; pt <= Coarse; pt++ {
		pa := p.patch(pt)
		if pa == nil {
			continue
		}
		names, mfs := pa.fields(pt)
		for n, mf := range mfs {
			if err = amr.WriteMultiFab(filepath.Join(dir, names[n]), mf); err != nil {
				return
			}
		}
	}
	return
}

// Restart reads a checkpoint written by CheckPoint for the same layer and
// rebuilds the damping factors for the restored dt. An empty layer accepts
// only a checkpoint that holds no layer boxes.
func (p *PML) Restart(dir string) (err error) {
	var (
		data []byte
		h    Header
	)
	if data, err = os.ReadFile(filepath.Join(dir, headerFile)); err != nil {
		if !p.ok && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading PML header: %w", err)
	}
	if err = yaml.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("parsing PML header: %w", err)
	}
	if err = p.checkHeader(h); err != nil {
		return
	}
	if !p.ok {
		return
	}
	for pt := Fine; pt <= Coarse; pt++ {
		pa := p.patch(pt)
		if pa == nil {
			continue
		}
		names, mfs := pa.fields(pt)
		for n, mf := range mfs {
			err = amr.ReadMultiFab(filepath.Join(dir, names[n]), mf)
			switch {
			case errors.Is(err, amr.ErrLayoutMismatch):
				return fmt.Errorf("%w: %s: %w", ErrGeometryMismatch, names[n], err)
			case err != nil:
				return
			}
		}
	}
	p.ComputePMLFactors(h.Dt)
	return
}

func (p *PML) checkHeader(h Header) error {
	cur := p.header()
	switch {
	case h.NCell != cur.NCell, h.Delta != cur.Delta:
		return fmt.Errorf("%w: ncell/delta %d/%d, layer has %d/%d", ErrGeometryMismatch,
			h.NCell, h.Delta, cur.NCell, cur.Delta)
	case h.GradingOrder != cur.GradingOrder, h.Reflection != cur.Reflection:
		return fmt.Errorf("%w: grading differs", ErrGeometryMismatch)
	case h.InDomain != cur.InDomain, h.DoLo != cur.DoLo, h.DoHi != cur.DoHi:
		return fmt.Errorf("%w: layer placement differs", ErrGeometryMismatch)
	case !sameBoxes(h.FineBoxes, cur.FineBoxes):
		return fmt.Errorf("%w: fine patch boxes differ", ErrGeometryMismatch)
	case !sameBoxes(h.CoarseBoxes, cur.CoarseBoxes):
		return fmt.Errorf("%w: coarse patch boxes differ", ErrGeometryMismatch)
	case h.HasF != cur.HasF:
		return fmt.Errorf("%w: F stored %t, layer has F %t", ErrGeometryMismatch, h.HasF, cur.HasF)
	case h.HasJ != cur.HasJ:
		return fmt.Errorf("%w: j stored %t, layer has j %t", ErrGeometryMismatch, h.HasJ, cur.HasJ)
	}
	return nil
}

func sameBoxes(a, b [][2]amr.IntVect) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
