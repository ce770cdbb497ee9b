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
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ExportKeyring writes every key reachable from root as an .asc file with
// a matching DOT trust graph, under outdir/keys and outdir/graphs. Keys
// whose export fails lint, or that have no certification path from root,
// are logged and skipped; the batch continues.
func (e *Engine) ExportKeyring(root int, outdir string) error {
	nodes, err := e.st.PathNodes()
	if err != nil {
		return err
	}

	keydir := filepath.Join(outdir, "keys")
	graphdir := filepath.Join(outdir, "graphs")
	for _, dir := range []string{outdir, keydir, graphdir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "cannot create %q", dir)
		}
	}

	kcount, wcount := 0, 0
	for _, node := range nodes {
		if node.RowID == root {
			continue
		}
		kcount++

		keydata, err := e.gpg.ExportKey(node.KeyID, e.settings.Export.KeyExportOptions)
		if err != nil {
			return err
		}
		if err := Lint(keydata); err != nil {
			log.Warningf("Skipping %s: %v", node.KeyID, err)
			continue
		}

		keyout := filepath.Join(keydir, node.KeyID+".asc")
		if prior, err := os.ReadFile(keyout); err == nil {
			if bytes.Contains(prior, bytes.TrimSpace(keydata)) {
				log.Debugf("No changes for %s", node.KeyID)
				continue
			}
		}

		header, err := e.gpg.ListKeyHeader(node.KeyID)
		if err != nil {
			return err
		}

		paths, err := e.KeyPaths(root, node.RowID)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			log.Debugf("Skipping %s due to invalid WoT", node.KeyID)
			continue
		}

		keyexport := append(append(header, '\n', '\n'), keydata...)
		if err := os.WriteFile(keyout, keyexport, 0o644); err != nil {
			return errors.Wrapf(err, "cannot write %q", keyout)
		}
		log.Infof("Wrote %s", keyout)

		dot, err := e.DrawPaths(paths)
		if err != nil {
			return err
		}
		graphout := filepath.Join(graphdir, node.KeyID+".dot")
		if err := os.WriteFile(graphout, []byte(dot), 0o644); err != nil {
			return errors.Wrapf(err, "cannot write %q", graphout)
		}
		log.Infof("Wrote %s", graphout)
		wcount++
	}
	log.Infof("Processed %d keys, made %d changes", kcount, wcount)
	return nil
}
