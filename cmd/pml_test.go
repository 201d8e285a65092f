package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPML(t *testing.T) {
	var (
		dir    = t.TempDir()
		icFile = filepath.Join(dir, "pulse.yaml")
		chkDir = filepath.Join(dir, "chk")
	)
	fileInput := []byte(`
Title: Test Case
NCells: [24, 24, 1]
MaxGrid: 12
Steps: 6
PML:
  NCell: 4
  Delta: 4
Checkpoint:
  Interval: 3
`)
	require.NoError(t, os.WriteFile(icFile, fileInput, 0644))
	mp := &ModelPML{ICFile: icFile, CheckpointDir: chkDir}
	ip := processInput(mp)
	{ // Test command line overrides land in the parameters
		assert.Equal(t, "Test Case", ip.Title)
		assert.Equal(t, 6, ip.Steps)
		assert.Equal(t, chkDir, ip.Checkpoint.Directory)
	}
	require.NoError(t, RunPML(mp, ip))
	{ // Test a checkpoint lands at each interval
		assert.DirExists(t, filepath.Join(chkDir, "chk000003"))
		assert.DirExists(t, filepath.Join(chkDir, "chk000006"))
		assert.FileExists(t, filepath.Join(chkDir, "chk000006", "pml", "Header"))
	}
	{ // Test a restart continues from the checkpoint
		mp.RestartDir = filepath.Join(chkDir, "chk000003")
		mp.CheckpointDir = ""
		ip.Checkpoint.Directory = ""
		ip.Steps = 3
		assert.NoError(t, RunPML(mp, ip))
	}
	{ // Test counting falls back to a plain run when counters are closed
		ip.Steps = 1
		mp.RestartDir = ""
		assert.NoError(t, countInstructions(func() error { return RunPML(mp, ip) }))
	}
}
