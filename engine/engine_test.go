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
	"path/filepath"
	"strings"

	gc "gopkg.in/check.v1"

	"wotmate/sqlwot"
	wotstorage "wotmate/storage"
)

// EngineSuite runs the workflows against a small store populated
// directly, with no gpg binary involved:
//
//	alice (u) certified bob (f) and dave (-)
//	bob and dave both certified carol (-)
type EngineSuite struct {
	engine *Engine

	alice, bob, carol, dave int
}

var _ = gc.Suite(&EngineSuite{})

func (s *EngineSuite) SetUpTest(c *gc.C) {
	path := filepath.Join(c.MkDir(), "wot.db")
	st, err := sqlwot.Create(path)
	c.Assert(err, gc.IsNil)

	addKey := func(keyid, ownertrust, name string) int {
		rowid, err := st.InsertPubKey(&wotstorage.PubKey{
			KeyID:      keyid,
			Validity:   "f",
			Size:       4096,
			Algo:       1,
			OwnerTrust: ownertrust,
		})
		c.Assert(err, gc.IsNil)
		_, err = st.InsertUserID(&wotstorage.UserID{
			PubRowID: rowid,
			Validity: "f",
			UIDData:  name,
			Primary:  true,
		})
		c.Assert(err, gc.IsNil)
		return rowid
	}
	s.alice = addKey("AAAA111122223333", "u", "Alice <alice@example.com>")
	s.bob = addKey("BBBB444455556666", "f", "Bob <bob@example.com>")
	s.carol = addKey("CCCC777788889999", "-", "Carol <carol@example.com>")
	s.dave = addKey("DDDD000011112222", "-", "Dave <dave@example.com>")

	err = st.InsertCerts([]*wotstorage.Cert{
		{UIDRowID: s.bob, PubRowID: s.alice, SigType: 0x13},
		{UIDRowID: s.dave, PubRowID: s.alice, SigType: 0x13},
		{UIDRowID: s.carol, PubRowID: s.bob, SigType: 0x13},
		{UIDRowID: s.carol, PubRowID: s.dave, SigType: 0x13},
	})
	c.Assert(err, gc.IsNil)
	c.Assert(st.Flush(), gc.IsNil)
	c.Assert(st.Close(), gc.IsNil)

	settings := DefaultSettings()
	settings.DB.Path = path
	s.engine = New(&settings)
	c.Assert(s.engine.OpenDB(), gc.IsNil)
}

func (s *EngineSuite) TearDownTest(c *gc.C) {
	if s.engine != nil {
		s.engine.Close()
	}
}

func (s *EngineSuite) TestOpenDBMissing(c *gc.C) {
	settings := DefaultSettings()
	settings.DB.Path = filepath.Join(c.MkDir(), "absent.db")
	e := New(&settings)
	err := e.OpenDB()
	c.Assert(err, gc.NotNil)
	c.Assert(wotstorage.IsIncompatibleSchema(err), gc.Equals, true)
}

func (s *EngineSuite) TestResolveKey(c *gc.C) {
	rowid, err := s.engine.ResolveKey("AAAA111122223333")
	c.Assert(err, gc.IsNil)
	c.Assert(rowid, gc.Equals, s.alice)

	rowid, err = s.engine.ResolveKey("0xbbbb444455556666")
	c.Assert(err, gc.IsNil)
	c.Assert(rowid, gc.Equals, s.bob)

	// Not hex, so it resolves as an identity substring.
	rowid, err = s.engine.ResolveKey("carol@")
	c.Assert(err, gc.IsNil)
	c.Assert(rowid, gc.Equals, s.carol)

	_, err = s.engine.ResolveKey("nobody")
	c.Assert(err, gc.NotNil)
	c.Assert(wotstorage.IsNotFound(err), gc.Equals, true)
}

func (s *EngineSuite) TestRoot(c *gc.C) {
	rowid, err := s.engine.Root("")
	c.Assert(err, gc.IsNil)
	c.Assert(rowid, gc.Equals, s.alice)

	rowid, err = s.engine.Root("Dave")
	c.Assert(err, gc.IsNil)
	c.Assert(rowid, gc.Equals, s.dave)
}

func (s *EngineSuite) TestKeyPathsDirect(c *gc.C) {
	paths, err := s.engine.KeyPaths(s.alice, s.bob)
	c.Assert(err, gc.IsNil)
	c.Assert(paths, gc.DeepEquals, [][]int{{s.alice, s.bob}})
}

func (s *EngineSuite) TestKeyPaths(c *gc.C) {
	paths, err := s.engine.KeyPaths(s.alice, s.carol)
	c.Assert(err, gc.IsNil)
	c.Assert(paths, gc.DeepEquals, [][]int{
		{s.alice, s.bob, s.carol},
		{s.alice, s.dave, s.carol},
	})
}

func (s *EngineSuite) TestKeyPathsNoSigs(c *gc.C) {
	_, err := s.engine.KeyPaths(s.carol, s.alice)
	c.Assert(err, gc.ErrorMatches, "top key did not sign any keys")
}

func (s *EngineSuite) TestKeyPathsUnreachable(c *gc.C) {
	paths, err := s.engine.KeyPaths(s.bob, s.dave)
	c.Assert(err, gc.IsNil)
	c.Assert(paths, gc.HasLen, 0)
}

func (s *EngineSuite) TestFullTrustPaths(c *gc.C) {
	// bob is itself trusted and thus excluded as an intermediate, so
	// alice's path must run through dave. Culling orders by length.
	paths, err := s.engine.FullTrustPaths(s.carol)
	c.Assert(err, gc.IsNil)
	c.Assert(paths, gc.DeepEquals, [][]int{
		{s.bob, s.carol},
		{s.alice, s.dave, s.carol},
	})
}

func (s *EngineSuite) TestDrawPaths(c *gc.C) {
	paths, err := s.engine.KeyPaths(s.alice, s.carol)
	c.Assert(err, gc.IsNil)
	dot, err := s.engine.DrawPaths(paths)
	c.Assert(err, gc.IsNil)
	c.Assert(strings.HasPrefix(dot, "digraph wot {"), gc.Equals, true)
	c.Assert(strings.Contains(dot, "a_1->a_2"), gc.Equals, true)
	c.Assert(strings.Contains(dot, "example.com"), gc.Equals, true)
}

func (s *EngineSuite) TestPrimaryUID(c *gc.C) {
	uiddata, err := s.engine.PrimaryUID(s.bob)
	c.Assert(err, gc.IsNil)
	c.Assert(uiddata, gc.Equals, "Bob <bob@example.com>")
}
