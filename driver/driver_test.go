package driver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gopic/amr"
	"github.com/notargets/gopic/pml"
)

func TestPulseAbsorbed(t *testing.T) {
	cfg := DefaultConfig()
	s, err := New(cfg)
	require.NoError(t, err)
	require.True(t, s.PML.Ok())
	// 2D runs carry no layer along z
	assert.False(t, s.PML.Config().DoLo[2])
	s.InitPulse()
	e0 := s.FieldEnergy()
	require.True(t, e0 > 0)
	{ // Test energy is kept while the pulse is inside
		s.Advance(10)
		e := s.FieldEnergy()
		assert.True(t, e < 1.2*e0, "energy %g from %g", e, e0)
		assert.True(t, e > 0.5*e0, "energy %g from %g", e, e0)
	}
	{ // Test the pulse leaves through the layer
		s.Advance(140)
		e := s.FieldEnergy()
		assert.True(t, e < 0.1*e0, "energy %g from %g", e, e0)
		assert.False(t, math.IsNaN(s.MaxField()))
		assert.Equal(t, 150, s.Step)
		assert.InEpsilon(t, 150*s.Dt(), s.Time, 1.e-12)
	}
}

func TestPSATDStable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PML.Spectral = true
	cfg.PML.SpectralOrder = [3]int{4, 4, 4}
	s, err := New(cfg)
	require.NoError(t, err)
	require.True(t, s.PML.HasSpectral())
	assert.Equal(t, cfg.PML.SpectralGuard(), s.E[0].NGrow())
	assert.Equal(t, s.PML.GetE(pml.Fine)[0].NGrow(), s.B[2].NGrow())
	s.InitPulse()
	e0 := s.FieldEnergy()
	s.Advance(40)
	e := s.FieldEnergy()
	assert.False(t, math.IsNaN(e))
	assert.True(t, e < 2*e0, "energy %g from %g", e, e0)
}

func Test3D(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NCells = amr.IntVect{16, 16, 16}
	cfg.MaxGrid = 16
	cfg.PML.NCell, cfg.PML.Delta = 4, 4
	cfg.PML.DoDive = true
	s, err := New(cfg)
	require.NoError(t, err)
	assert.True(t, s.PML.Config().DoLo[2])
	assert.NotNil(t, s.PML.GetF(pml.Fine))
	s.InitPulse()
	e0 := s.FieldEnergy()
	s.Advance(10)
	e := s.FieldEnergy()
	assert.False(t, math.IsNaN(e))
	assert.True(t, e < 1.2*e0, "energy %g from %g", e, e0)
}

func TestCheckPointRestart(t *testing.T) {
	var (
		cfg = DefaultConfig()
		dir = t.TempDir()
	)
	cfg.NCells = amr.IntVect{32, 32, 1}
	cfg.MaxGrid = 16
	s, err := New(cfg)
	require.NoError(t, err)
	s.InitPulse()
	s.Advance(5)
	require.NoError(t, s.CheckPoint(dir))
	s.Advance(5)
	want := s.FieldEnergy()

	r, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, r.Restart(dir))
	assert.Equal(t, 5, r.Step)
	r.Advance(5)
	assert.InEpsilon(t, want, r.FieldEnergy(), 1.e-12)
	{ // Test a checkpoint of another layout is refused
		other := cfg
		other.PML.NCell, other.PML.Delta = 6, 6
		q, err := New(other)
		require.NoError(t, err)
		assert.Error(t, q.Restart(dir))
	}
	{ // Test bad configurations
		bad := cfg
		bad.NCells = amr.IntVect{32, 0, 1}
		_, err := New(bad)
		assert.Error(t, err)
		bad = cfg
		bad.CFL = 0
		_, err = New(bad)
		assert.Error(t, err)
	}
}
