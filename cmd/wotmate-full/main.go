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

// wotmate-full writes a DOT graph of certification paths from any key to
// all fully trusted keys.
package main

import (
	"flag"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"wotmate/cmd"
	"wotmate/engine"
)

var (
	configFile = flag.String("config", "", "config file")
	quiet      = flag.Bool("quiet", false, "be quiet and only output errors")
	dbFile     = flag.String("dbfile", "", "sig database to use")
	toKey      = flag.String("tokey", "", "bottom key ID")
	maxDepth   = flag.Int("maxdepth", 0, "try up to this maximum depth")
	font       = flag.String("font", "", "font to use in the graph")
	fontSize   = flag.String("fontsize", "", "font size to use in the graph")
	showTrust  = flag.Bool("show-trust", false, "display validity and trust values")
	out        = flag.String("out", "graph.dot", "write the DOT graph into this file")
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
	if *font != "" {
		settings.Graph.Font = *font
	}
	if *fontSize != "" {
		settings.Graph.FontSize = *fontSize
	}
	if *showTrust {
		settings.Graph.ShowTrust = true
	}

	if *toKey == "" {
		cmd.Die(errors.New("provide a bottom key id with -tokey"))
	}

	cmd.Die(full(settings, *toKey))
}

func full(settings *engine.Settings, keySpec string) error {
	e := engine.New(settings)
	if err := e.OpenDB(); err != nil {
		return err
	}
	defer e.Close()

	target, err := e.ResolveKey(keySpec)
	if err != nil {
		return err
	}

	paths, err := e.FullTrustPaths(target)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no paths found to any fully trusted keys")
	}

	dot, err := e.DrawPaths(paths)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, []byte(dot), 0o644); err != nil {
		return errors.WithStack(err)
	}
	log.Infof("Wrote %s", *out)
	return nil
}
