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

package ingest

import (
	gc "gopkg.in/check.v1"

	wotstorage "wotmate/storage"
	"wotmate/wotsap"
)

type WotsapSuite struct{}

var _ = gc.Suite(&WotsapSuite{})

func (s *WotsapSuite) TestLoadWotsap(c *gc.C) {
	arch := &wotsap.Archive{
		KeyIDs: [][]byte{
			{0xaa, 0xaa, 0x11, 0x11, 0x22, 0x22, 0x33, 0x33},
			{0xbb, 0xbb, 0x44, 0x44, 0x55, 0x55, 0x66, 0x66},
			{0xcc, 0xcc, 0x77, 0x77, 0x88, 0x88, 0x99, 0x99},
		},
		Names: []string{
			"Alice <alice@example.com>",
			"Bob <bob@example.com>",
			"Carol <carol@example.com>",
		},
		Signatures: [][]uint32{
			{},
			// signed by alice; the self-signature and the duplicate
			// are dropped.
			{0x30000000 | 0, 0x30000000 | 1, 0x20000000 | 0},
			// signed by bob; the out-of-range index is dropped.
			{0x00000001, 0x00000007},
		},
	}

	st := &memStore{}
	err := NewLoader(st).LoadWotsap(arch)
	c.Assert(err, gc.IsNil)

	c.Assert(st.pubs, gc.HasLen, 3)
	c.Assert(st.pubs[0].KeyID, gc.Equals, "AAAA111122223333")
	c.Assert(st.pubs[0].OwnerTrust, gc.Equals, "-")
	c.Assert(st.pubs[2].KeyID, gc.Equals, "CCCC777788889999")

	c.Assert(st.uids, gc.HasLen, 3)
	c.Assert(st.uids[1].PubRowID, gc.Equals, 2)
	c.Assert(st.uids[1].UIDData, gc.Equals, "Bob <bob@example.com>")
	c.Assert(st.uids[1].Primary, gc.Equals, true)

	c.Assert(st.certs, gc.HasLen, 2)
	c.Assert(st.certs[0], gc.DeepEquals, &wotstorage.Cert{
		UIDRowID: 2, PubRowID: 1, SigType: 0x13,
	})
	c.Assert(st.certs[1], gc.DeepEquals, &wotstorage.Cert{
		UIDRowID: 3, PubRowID: 2, SigType: 0x10,
	})
	c.Assert(st.flushes, gc.Equals, 1)
}
