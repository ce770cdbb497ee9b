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

// wotmate-export exports a keyring as individual .asc files with DOT
// trust graphs.
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
	dbFile     = flag.String("dbfile", "", "sig database to use")
	fromKey    = flag.String("fromkey", "", "top key ID (default: the key with ultimate trust)")
	maxDepth   = flag.Int("maxdepth", 0, "try up to this maximum depth")
	maxPaths   = flag.Int("maxpaths", 0, "stop after finding this many paths")
	outDir     = flag.String("outdir", "", "export keyring data into this dir as keys/ and graphs/ subdirs")
	gpgBin     = flag.String("gpgbin", "", "location of the gpg binary to use")
	gnupgHome  = flag.String("gnupghome", "", "set this as gnupghome instead of using the default")
	exportOpts = flag.String("key-export-options", "", "the value to pass to gpg --export-options")
	showTrust  = flag.Bool("show-trust", false, "display validity and trust values")
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
	if *maxDepth > 0 {
		settings.Paths.MaxDepth = *maxDepth
	}
	if *maxPaths > 0 {
		settings.Paths.MaxPaths = *maxPaths
	}
	if *outDir != "" {
		settings.Export.OutDir = *outDir
	}
	if *gpgBin != "" {
		settings.GPG.Bin = *gpgBin
	}
	if *gnupgHome != "" {
		settings.GPG.HomeDir = *gnupgHome
	}
	if *exportOpts != "" {
		settings.Export.KeyExportOptions = *exportOpts
	}
	if *showTrust {
		settings.Graph.ShowTrust = true
	}

	var m *metrics.Metrics
	if settings.Metrics != nil && settings.Metrics.Enabled {
		m = metrics.NewMetrics(settings.Metrics)
		m.Start()
	}

	err = export(settings)
	if m != nil {
		m.Stop()
	}
	cmd.Die(err)
}

func export(settings *engine.Settings) error {
	e := engine.New(settings)
	if err := e.OpenDB(); err != nil {
		return err
	}
	defer e.Close()

	root, err := e.Root(*fromKey)
	if err != nil {
		return err
	}
	return e.ExportKeyring(root, settings.Export.OutDir)
}
