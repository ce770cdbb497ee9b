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

// wotmate-build creates a sqlite database of key and signature data from
// the keyring, or from a legacy wotsap archive.
package main

import (
	"flag"

	"wotmate/cmd"
	"wotmate/engine"
	"wotmate/metrics"
)

var (
	configFile = flag.String("config", "", "config file")
	quiet      = flag.Bool("quiet", false, "be quiet and only output errors")
	dbFile     = flag.String("dbfile", "", "create database in this file")
	useWeak    = flag.Bool("use-weak-keys", false, "do not discard keys considered too weak")
	gpgBin     = flag.String("gpgbin", "", "location of the gpg binary to use")
	gnupgHome  = flag.String("gnupghome", "", "set this as gnupghome instead of using the default")
	fromWotsap = flag.String("from-wotsap", "", "build from this wotsap archive instead of the keyring")
	cpuProf    = flag.Bool("cpuprof", false, "enable CPU profiling")
	memProf    = flag.Bool("memprof", false, "enable mem profiling")
)

func main() {
	flag.Parse()

	settings, err := cmd.LoadSettings(*configFile, *quiet)
	if err != nil {
		cmd.Die(err)
	}
	if *dbFile != "" {
		settings.DB.Path = *dbFile
	}
	if *useWeak {
		settings.Ingest.UseWeakKeys = true
	}
	if *gpgBin != "" {
		settings.GPG.Bin = *gpgBin
	}
	if *gnupgHome != "" {
		settings.GPG.HomeDir = *gnupgHome
	}

	cpuFile := cmd.StartCPUProf(*cpuProf, nil)

	var m *metrics.Metrics
	if settings.Metrics != nil && settings.Metrics.Enabled {
		m = metrics.NewMetrics(settings.Metrics)
		m.Start()
	}

	e := engine.New(settings)
	if *fromWotsap != "" {
		err = e.BuildDBFromWotsap(*fromWotsap)
	} else {
		err = e.BuildDB()
	}
	e.Close()

	if m != nil {
		m.Stop()
	}
	cmd.StartCPUProf(false, cpuFile)
	cmd.WriteMemProf(*memProf)
	cmd.Die(err)
}
