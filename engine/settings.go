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

package engine

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"wotmate/gpg"
	"wotmate/ingest"
	"wotmate/metrics"
	"wotmate/render"
	"wotmate/wot"
)

const (
	DefaultDBFile = "siginfo.db"
)

type DBConfig struct {
	Path string `toml:"path"`
}

type GPGConfig struct {
	Bin     string `toml:"bin"`
	HomeDir string `toml:"homedir"`
}

type IngestConfig struct {
	UseWeakKeys bool `toml:"useWeakKeys"`
	WeakKeySize int  `toml:"weakKeySize"`
}

type PathsConfig struct {
	MaxDepth      int `toml:"maxdepth"`
	MaxPaths      int `toml:"maxpaths"`
	MaxIterations int `toml:"maxIterations"`
}

type GraphConfig struct {
	Font      string `toml:"font"`
	FontSize  string `toml:"fontsize"`
	ShowTrust bool   `toml:"showTrust"`
}

const (
	DefaultExportOptions = "export-attributes"
	DefaultExportDir     = "export"
)

type ExportConfig struct {
	OutDir           string `toml:"outdir"`
	KeyExportOptions string `toml:"keyExportOptions"`
}

type Settings struct {
	DB     DBConfig     `toml:"db"`
	GPG    GPGConfig    `toml:"gpg"`
	Ingest IngestConfig `toml:"ingest"`
	Paths  PathsConfig  `toml:"paths"`
	Graph  GraphConfig  `toml:"graph"`
	Export ExportConfig `toml:"export"`

	Metrics *metrics.Settings `toml:"metrics"`

	LogLevel string `toml:"loglevel"`
}

const (
	DefaultLogLevel = "INFO"
)

func DefaultSettings() Settings {
	metricsSettings := metrics.DefaultSettings()
	return Settings{
		DB: DBConfig{
			Path: DefaultDBFile,
		},
		GPG: GPGConfig{
			Bin: gpg.DefaultBin,
		},
		Ingest: IngestConfig{
			WeakKeySize: ingest.DefaultWeakSize,
		},
		Paths: PathsConfig{
			MaxDepth:      wot.DefaultMaxDepth,
			MaxPaths:      wot.DefaultMaxPaths,
			MaxIterations: wot.DefaultMaxIterations,
		},
		Graph: GraphConfig{
			Font:     render.DefaultFont,
			FontSize: render.DefaultFontSize,
		},
		Export: ExportConfig{
			OutDir:           DefaultExportDir,
			KeyExportOptions: DefaultExportOptions,
		},
		Metrics:  metricsSettings,
		LogLevel: DefaultLogLevel,
	}
}

func ParseSettings(data string) (*Settings, error) {
	var doc struct {
		Wotmate Settings `toml:"wotmate"`
	}
	doc.Wotmate = DefaultSettings()
	_, err := toml.Decode(data, &doc)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &doc.Wotmate, nil
}
