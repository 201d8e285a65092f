/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gopic/InputParameters"
	"github.com/notargets/gopic/driver"
)

type ModelPML struct {
	ICFile        string
	CheckpointDir string
	RestartDir    string
	ProfileDir    string
	Steps         int
	Perf          bool
	Verbose       bool
}

// PMLCmd represents the pml command
var PMLCmd = &cobra.Command{
	Use:   "pml",
	Short: "Gaussian pulse run inside a perfectly matched layer",
	Long: `Launches a Gaussian E_z pulse in the middle of the domain and follows it
out through the absorbing layer, reporting the interior field energy.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("pml called")
		mp := &ModelPML{}
		if mp.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		mp.CheckpointDir = viper.GetString("checkpoint")
		mp.RestartDir = viper.GetString("restart")
		mp.ProfileDir, _ = cmd.Flags().GetString("profile")
		mp.Steps, _ = cmd.Flags().GetInt("steps")
		mp.Perf, _ = cmd.Flags().GetBool("perf")
		mp.Verbose = viper.GetBool("verbose")
		ip := processInput(mp)
		if len(mp.ProfileDir) != 0 {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(expand(mp.ProfileDir))).Stop()
		}
		run := func() error { return RunPML(mp, ip) }
		if mp.Perf {
			err = countInstructions(run)
		} else {
			err = run()
		}
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

const exampleFile = `
########################################
Title: "Gaussian pulse"
NCells: [64, 64, 1] # One z cell runs in 2D
CellSize: 1.e-6
MaxGrid: 32
NWorkers: 2
CFL: 0.9
Steps: 200
Solver: FDTD # Can be "PSATD"
SpectralOrder: [16, 16, 16]
PML:
  NCell: 10
  Delta: 10
  GradingOrder: 2
  Reflection: 0 # sigma_max = 4c/dx when zero
  InDomain: false
  Lo: [true, true, true]
  Hi: [true, true, true]
  DivE: false
  Partitioner: similar # Can be "contiguous" or "metis"
Checkpoint:
  Directory: ~/gopic/pulse
  Interval: 100
########################################
`

func processInput(mp *ModelPML) (ip *InputParameters.InputParametersPML) {
	var (
		err error
	)
	if len(mp.ICFile) == 0 {
		err := fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	var data []byte
	if data, err = os.ReadFile(expand(mp.ICFile)); err != nil {
		panic(err)
	}
	ip = InputParameters.NewInputParametersPML()
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	if mp.Steps > 0 {
		ip.Steps = mp.Steps
	}
	if len(mp.CheckpointDir) != 0 {
		ip.Checkpoint.Directory = mp.CheckpointDir
	}
	ip.Print()
	return
}

func init() {
	rootCmd.AddCommand(PMLCmd)
	PMLCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- NCells\n\t- PML thickness and grading")
	PMLCmd.Flags().StringP("checkpoint", "c", "", "directory receiving checkpoints, overrides the input file")
	PMLCmd.Flags().StringP("restart", "r", "", "checkpoint directory to restart from")
	PMLCmd.Flags().StringP("profile", "p", "", "directory receiving a CPU profile")
	PMLCmd.Flags().IntP("steps", "n", 0, "number of steps, overrides the input file")
	PMLCmd.Flags().Bool("perf", false, "count CPU instructions used by the run")
	PMLCmd.Flags().BoolP("verbose", "v", false, "log the box layout and layer construction")
	for _, name := range []string{"checkpoint", "restart", "verbose"} {
		if err := viper.BindPFlag(name, PMLCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func RunPML(mp *ModelPML, ip *InputParameters.InputParametersPML) (err error) {
	var (
		cfg driver.Config
		s   *driver.Simulation
	)
	if cfg, err = ip.Config(); err != nil {
		return
	}
	cfg.Verbose = mp.Verbose
	cfg.PML.Verbose = mp.Verbose
	if s, err = driver.New(cfg); err != nil {
		return
	}
	if len(mp.RestartDir) != 0 {
		if err = s.Restart(expand(mp.RestartDir)); err != nil {
			return
		}
		fmt.Printf("Restarted at step %d, time %8.5g\n", s.Step, s.Time)
	} else {
		s.InitPulse()
	}
	var (
		e0       = s.FieldEnergy()
		interval = ip.Checkpoint.Interval
		chkDir   = ip.Checkpoint.Directory
		last     = s.Step + ip.Steps
		start    = time.Now()
	)
	if interval <= 0 || len(chkDir) == 0 {
		interval = ip.Steps
	}
	for s.Step < last {
		s.Advance(min(interval, last-s.Step))
		e := s.FieldEnergy()
		fmt.Printf("Step %6d, Time %8.5g, Energy %10.4g, Ratio %8.5f, Max |E| %8.4g\n",
			s.Step, s.Time, e, ratio(e, e0), s.MaxField())
		if len(chkDir) != 0 {
			dir := filepath.Join(expand(chkDir), fmt.Sprintf("chk%06d", s.Step))
			if err = s.CheckPoint(dir); err != nil {
				return
			}
			fmt.Printf("Checkpoint written to %s\n", dir)
		}
	}
	fmt.Printf("%d steps in %v\n", ip.Steps, time.Since(start))
	return
}

func ratio(e, e0 float64) float64 {
	if e0 == 0 {
		return 0
	}
	return e / e0
}

func expand(path string) string {
	p, err := homedir.Expand(path)
	if err != nil {
		panic(err)
	}
	return p
}
