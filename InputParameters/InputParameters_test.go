package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gopic/amr"
	"github.com/notargets/gopic/pml"
)

func TestParse(t *testing.T) {
	fileInput := []byte(`
Title: Gaussian pulse
NCells: [128, 96, 1]
CFL: 0.8
Solver: PSATD
SpectralOrder: [8, 8, 8]
PML:
  NCell: 12
  Delta: 8
  Reflection: 1.e-6
  Hi: [true, false, false]
  Partitioner: contiguous
Checkpoint:
  Directory: ~/runs/pulse
  Interval: 50
`)
	ip := NewInputParametersPML()
	require.NoError(t, ip.Parse(fileInput))
	ip.Print()
	{ // Test deck values and retained defaults
		assert.Equal(t, [3]int{128, 96, 1}, ip.NCells)
		assert.Equal(t, 0.8, ip.CFL)
		assert.Equal(t, 1.e-6, ip.CellSize)
		assert.Equal(t, 200, ip.Steps)
		assert.Equal(t, 12, ip.Layer.NCell)
		assert.Equal(t, [3]bool{true, true, true}, ip.Layer.Lo)
		assert.Equal(t, "~/runs/pulse", ip.Checkpoint.Directory)
		assert.Equal(t, 50, ip.Checkpoint.Interval)
	}
	{ // Test conversion to a run configuration
		cfg, err := ip.Config()
		require.NoError(t, err)
		assert.Equal(t, amr.IntVect{128, 96, 1}, cfg.NCells)
		assert.True(t, cfg.PML.Spectral)
		assert.Equal(t, [3]int{8, 8, 8}, cfg.PML.SpectralOrder)
		assert.Equal(t, 8, cfg.PML.Delta)
		assert.Equal(t, 1.e-6, cfg.PML.Reflection)
		assert.Equal(t, [3]bool{true, false, false}, cfg.PML.DoHi)
		assert.Equal(t, pml.ContiguousPartition, cfg.PML.Partitioner)
	}
	{ // Test bad decks
		bad := NewInputParametersPML()
		require.NoError(t, bad.Parse([]byte("Solver: Spectral-ish\n")))
		_, err := bad.Config()
		assert.Error(t, err)
		bad = NewInputParametersPML()
		require.NoError(t, bad.Parse([]byte("PML:\n  Partitioner: random\n")))
		_, err = bad.Config()
		assert.Error(t, err)
	}
}
