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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gc "gopkg.in/check.v1"

	"wotmate/sqlwot"
	wotstorage "wotmate/storage"
)

// ExportSuite drives ExportKeyring with a stub gpg script so no keyring
// is needed. alice (root, u) certified bob; eve has no path from alice.
type ExportSuite struct {
	engine *Engine
	outdir string

	alice, bob, eve int
}

var _ = gc.Suite(&ExportSuite{})

// stubGPG writes a shell script that answers the two calls ExportKeyring
// makes: exporting a key and printing its listing header.
func stubGPG(c *gc.C, keydata []byte) string {
	dir := c.MkDir()
	keyfile := filepath.Join(dir, "export.asc")
	err := os.WriteFile(keyfile, keydata, 0o644)
	c.Assert(err, gc.IsNil)

	script := fmt.Sprintf(`#!/bin/sh
for arg in "$@"; do
	case "$arg" in
	--export) cat %q; exit 0 ;;
	--list-key) echo "pub   rsa4096 2016-01-01 [SC]"; exit 0 ;;
	esac
done
exit 1
`, keyfile)
	bin := filepath.Join(dir, "gpg")
	err = os.WriteFile(bin, []byte(script), 0o755)
	c.Assert(err, gc.IsNil)
	return bin
}

func (s *ExportSuite) SetUpTest(c *gc.C) {
	path := filepath.Join(c.MkDir(), "wot.db")
	st, err := sqlwot.Create(path)
	c.Assert(err, gc.IsNil)

	addKey := func(keyid, ownertrust, name string) int {
		rowid, err := st.InsertPubKey(&wotstorage.PubKey{
			KeyID: keyid, Validity: "f", Size: 4096, Algo: 1,
			OwnerTrust: ownertrust,
		})
		c.Assert(err, gc.IsNil)
		_, err = st.InsertUserID(&wotstorage.UserID{
			PubRowID: rowid, Validity: "f", UIDData: name, Primary: true,
		})
		c.Assert(err, gc.IsNil)
		return rowid
	}
	s.alice = addKey("AAAA111122223333", "u", "Alice <alice@example.com>")
	s.bob = addKey("BBBB444455556666", "-", "Bob <bob@example.com>")
	s.eve = addKey("EEEE000000000000", "-", "Eve <eve@example.com>")

	err = st.InsertCerts([]*wotstorage.Cert{
		{UIDRowID: s.bob, PubRowID: s.alice, SigType: 0x13},
	})
	c.Assert(err, gc.IsNil)
	c.Assert(st.Flush(), gc.IsNil)
	c.Assert(st.Close(), gc.IsNil)

	s.outdir = filepath.Join(c.MkDir(), "export")

	settings := DefaultSettings()
	settings.DB.Path = path
	settings.GPG.Bin = stubGPG(c, armoredTestKey(c))
	s.engine = New(&settings)
	c.Assert(s.engine.OpenDB(), gc.IsNil)
}

func (s *ExportSuite) TearDownTest(c *gc.C) {
	if s.engine != nil {
		s.engine.Close()
	}
}

func (s *ExportSuite) TestExportKeyring(c *gc.C) {
	err := s.engine.ExportKeyring(s.alice, s.outdir)
	c.Assert(err, gc.IsNil)

	// bob has a path from the root and is exported with his graph; eve
	// does not and the root itself is never exported.
	keyout := filepath.Join(s.outdir, "keys", "BBBB444455556666.asc")
	data, err := os.ReadFile(keyout)
	c.Assert(err, gc.IsNil)
	text := string(data)
	c.Assert(strings.Contains(text, "pub   rsa4096 2016-01-01 [SC]"), gc.Equals, true)
	c.Assert(strings.Contains(text, "BEGIN PGP PUBLIC KEY BLOCK"), gc.Equals, true)

	dot, err := os.ReadFile(filepath.Join(s.outdir, "graphs", "BBBB444455556666.dot"))
	c.Assert(err, gc.IsNil)
	c.Assert(strings.Contains(string(dot), "a_1->a_2"), gc.Equals, true)

	_, err = os.Stat(filepath.Join(s.outdir, "keys", "EEEE000000000000.asc"))
	c.Assert(os.IsNotExist(err), gc.Equals, true)
	_, err = os.Stat(filepath.Join(s.outdir, "keys", "AAAA111122223333.asc"))
	c.Assert(os.IsNotExist(err), gc.Equals, true)
}

func (s *ExportSuite) TestExportKeyringUnchanged(c *gc.C) {
	c.Assert(s.engine.ExportKeyring(s.alice, s.outdir), gc.IsNil)
	keyout := filepath.Join(s.outdir, "keys", "BBBB444455556666.asc")
	before, err := os.Stat(keyout)
	c.Assert(err, gc.IsNil)

	// A second run exports identical key material and rewrites nothing.
	c.Assert(s.engine.ExportKeyring(s.alice, s.outdir), gc.IsNil)
	after, err := os.Stat(keyout)
	c.Assert(err, gc.IsNil)
	c.Assert(after.ModTime(), gc.Equals, before.ModTime())
}
