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

// Package engine ties settings, the gpg boundary and the graph store into
// the wotmate workflows. One Engine is constructed per run; all caches
// live on the store it owns, so nothing here is process-global.
package engine

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"wotmate/gpg"
	"wotmate/ingest"
	"wotmate/render"
	"wotmate/sqlwot"
	wotstorage "wotmate/storage"
	"wotmate/wot"
	"wotmate/wotsap"
)

type Engine struct {
	settings Settings
	gpg      *gpg.GPG
	st       wotstorage.Storage
}

func New(settings *Settings) *Engine {
	s := DefaultSettings()
	if settings != nil {
		s = *settings
	}
	return &Engine{
		settings: s,
		gpg:      gpg.New(s.GPG.Bin, s.GPG.HomeDir),
	}
}

func (e *Engine) Settings() Settings {
	return e.settings
}

// OpenDB attaches the engine to an existing store, verifying its schema
// version.
func (e *Engine) OpenDB() error {
	st, err := sqlwot.Open(e.settings.DB.Path)
	if err != nil {
		return err
	}
	e.st = st
	return nil
}

func (e *Engine) Close() error {
	if e.st == nil {
		return nil
	}
	err := e.st.Close()
	e.st = nil
	return err
}

// BuildDB rebuilds the store from the keyring: the prior database file is
// removed, keys are ingested from the public key listing, then identities
// and certifications from the signature listing.
func (e *Engine) BuildDB() error {
	path := e.settings.DB.Path
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "cannot remove %q", path)
	}
	st, err := sqlwot.Create(path)
	if err != nil {
		return err
	}
	e.st = st

	loader := ingest.NewLoader(st)
	loader.UseWeak = e.settings.Ingest.UseWeakKeys
	if e.settings.Ingest.WeakKeySize > 0 {
		loader.WeakSize = e.settings.Ingest.WeakKeySize
	}

	keyLines, err := e.gpg.ListKeys()
	if err != nil {
		return err
	}
	if err := loader.LoadKeys(keyLines); err != nil {
		return err
	}
	sigLines, err := e.gpg.ListSigs()
	if err != nil {
		return err
	}
	if err := loader.LoadSignatures(sigLines); err != nil {
		return err
	}
	log.Infof("Wrote out %s", path)
	return nil
}

// BuildDBFromWotsap rebuilds the store from a legacy wotsap archive file
// instead of a live keyring.
func (e *Engine) BuildDBFromWotsap(archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	arch, err := wotsap.Read(f)
	if err != nil {
		return err
	}

	path := e.settings.DB.Path
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "cannot remove %q", path)
	}
	st, err := sqlwot.Create(path)
	if err != nil {
		return err
	}
	e.st = st

	if err := ingest.NewLoader(st).LoadWotsap(arch); err != nil {
		return err
	}
	log.Infof("Wrote out %s", path)
	return nil
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return len(s) > 0
}

// ResolveKey resolves a key ID (full or partial hex) or an identity
// substring to a pub row ID.
func (e *Engine) ResolveKey(query string) (int, error) {
	trimmed := query
	if len(trimmed) > 2 && (trimmed[:2] == "0x" || trimmed[:2] == "0X") {
		trimmed = trimmed[2:]
	}
	if isHex(trimmed) {
		return e.st.RowIDByKeyID(query)
	}
	return e.st.RowIDByIdentity(query)
}

// Root resolves the path root: the given query, or the ultimate-trust key
// when the query is empty.
func (e *Engine) Root(query string) (int, error) {
	if query == "" {
		rowid, err := e.st.UltimateKey()
		if err != nil {
			return 0, errors.Wrap(err,
				"could not find ultimate-trust key, specify a from key")
		}
		return rowid, nil
	}
	return e.ResolveKey(query)
}

func (e *Engine) newFinder() *wot.Finder {
	f := wot.NewFinder(e.st)
	if e.settings.Paths.MaxDepth > 0 {
		f.MaxDepth = e.settings.Paths.MaxDepth
	}
	if e.settings.Paths.MaxPaths > 0 {
		f.MaxPaths = e.settings.Paths.MaxPaths
	}
	if e.settings.Paths.MaxIterations > 0 {
		f.MaxIterations = e.settings.Paths.MaxIterations
	}
	return f
}

// KeyPaths discovers and culls certification paths from root to target.
// An empty result means the target is unreachable within the configured
// depth; callers decide whether that is fatal.
func (e *Engine) KeyPaths(root, target int) ([][]int, error) {
	sigs, err := e.st.SignedBy(root)
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, errors.New("top key did not sign any keys")
	}
	for _, rowid := range sigs {
		if rowid == target {
			log.Info("Bottom key is signed directly by the top key")
			return [][]int{{root, target}}, nil
		}
	}
	log.Infof("Found %d keys signed by top key", len(sigs))

	paths, err := e.newFinder().Find(root, target)
	if err != nil {
		return nil, err
	}
	culled := wot.CullRedundant(paths, e.settings.Paths.MaxPaths)
	log.Infof("%d paths left after culling", len(culled))
	return culled, nil
}

// FullTrustPaths discovers one path to the target from every fully or
// ultimately trusted key, excluding already-revealed path members as it
// goes, then culls the result.
func (e *Engine) FullTrustPaths(target int) ([][]int, error) {
	roots, err := e.st.FullTrustKeys()
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, errors.New("no fully trusted keys found in the db")
	}
	log.Infof("Found %d fully trusted keys in the db", len(roots))

	exclude := make([]int, len(roots))
	copy(exclude, roots)

	var paths [][]int
	for _, root := range roots {
		if root == target {
			continue
		}
		finder := e.newFinder()
		finder.MaxPaths = 1
		finder.Exclude = exclude
		found, err := finder.Find(root, target)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			continue
		}
		log.Infof("Found a path with %d members", len(found[0]))
		paths = append(paths, found[0])
		exclude = append(exclude, found[0]...)
	}
	culled := wot.CullRedundant(paths, 0)
	log.Infof("%d paths left after culling", len(culled))
	return culled, nil
}

// PathNodes fetches renderer label data for every key on the given paths.
func (e *Engine) PathNodes(paths [][]int) (map[int]*wotstorage.PathNode, error) {
	nodes := make(map[int]*wotstorage.PathNode)
	for _, path := range paths {
		for _, rowid := range path {
			if _, ok := nodes[rowid]; ok {
				continue
			}
			node, err := e.st.PathNode(rowid)
			if err != nil {
				return nil, err
			}
			nodes[rowid] = node
		}
	}
	return nodes, nil
}

// DrawPaths renders the given paths as a DOT document.
func (e *Engine) DrawPaths(paths [][]int) (string, error) {
	nodes, err := e.PathNodes(paths)
	if err != nil {
		return "", err
	}
	return render.Draw(paths, nodes, render.Options{
		Font:      e.settings.Graph.Font,
		FontSize:  e.settings.Graph.FontSize,
		ShowTrust: e.settings.Graph.ShowTrust,
	})
}

// PrimaryUID exposes the primary identity lookup for status output.
func (e *Engine) PrimaryUID(rowid int) (string, error) {
	return e.st.PrimaryUID(rowid)
}
