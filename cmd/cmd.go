/*
   wotmate - PGP web of trust grapher
   Copyright (C) 2015-2018  The Linux Foundation and contributors

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package cmd carries the shared plumbing of the wotmate binaries.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"wotmate/engine"
)

func Die(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

// LoadSettings reads the optional toml config file and applies the
// command-line logging options.
func LoadSettings(configFile string, quiet bool) (*engine.Settings, error) {
	settings := engine.DefaultSettings()
	if configFile != "" {
		conf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		parsed, err := engine.ParseSettings(string(conf))
		if err != nil {
			return nil, err
		}
		settings = *parsed
	}

	if quiet {
		log.SetLevel(log.ErrorLevel)
	} else if level, err := log.ParseLevel(settings.LogLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	return &settings, nil
}

func StartCPUProf(cpuProf bool, prior *os.File) *os.File {
	if prior != nil {
		pprof.StopCPUProfile()
		log.Infof("CPU profile written to %q", prior.Name())
		prior.Close()
		os.Rename(filepath.Join(os.TempDir(), "wotmate-cpu.prof.part"),
			filepath.Join(os.TempDir(), "wotmate-cpu.prof"))
	}
	if cpuProf {
		profName := filepath.Join(os.TempDir(), "wotmate-cpu.prof.part")
		f, err := os.Create(profName)
		if err != nil {
			Die(errors.WithStack(err))
		}
		pprof.StartCPUProfile(f)
		return f
	}
	return nil
}

func WriteMemProf(memProf bool) {
	if memProf {
		tmpName := filepath.Join(os.TempDir(), fmt.Sprintf("wotmate-mem.prof.%d", time.Now().Unix()))
		profName := filepath.Join(os.TempDir(), "wotmate-mem.prof")
		f, err := os.Create(tmpName)
		if err != nil {
			Die(errors.WithStack(err))
		}
		err = pprof.WriteHeapProfile(f)
		f.Close()
		if err != nil {
			log.Warningf("failed to write heap profile: %v", err)
			return
		}
		log.Infof("Heap profile written to %q", f.Name())
		os.Rename(tmpName, profName)
	}
}
