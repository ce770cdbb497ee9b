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

package gpg

import (
	gc "gopkg.in/check.v1"
)

type GPGSuite struct{}

var _ = gc.Suite(&GPGSuite{})

const listing = `# keyring listing
tru::1:1136073600:0:3:1:5
pub:u:4096:1:AAAA111122223333:1136073600:::u:::scESC:

uid:u::::1136073600::HASH::Alice <alice@example.com>:
sig:::1:BBBB444455556666:1136073600::::Bob <bob@example.com>:13x:
rev:::1:CCCC777788889999:1136073600::::Carol <carol@example.com>:30x:
sub:u:4096:1:DDDD000011112222:1136073600:::::e:
`

func (s *GPGSuite) TestLinesUnfiltered(c *gc.C) {
	// Blanks and comments are dropped, everything else kept.
	out := lines([]byte(listing))
	c.Assert(out, gc.HasLen, 6)
	c.Assert(out[0][:4], gc.Equals, "tru:")
}

func (s *GPGSuite) TestLinesFiltered(c *gc.C) {
	out := lines([]byte(listing), "pub:", "uid:", "sig:", "rev:")
	c.Assert(out, gc.HasLen, 4)
	c.Assert(recordKinds(out), gc.DeepEquals, []string{"pub", "uid", "sig", "rev"})

	out = lines([]byte(listing), "pub:")
	c.Assert(out, gc.HasLen, 1)
}

func recordKinds(recs []string) []string {
	var kinds []string
	for _, rec := range recs {
		kinds = append(kinds, SplitFields(rec).Kind())
	}
	return kinds
}

func (s *GPGSuite) TestNewDefaults(c *gc.C) {
	g := New("", "")
	c.Assert(g.Bin, gc.Equals, DefaultBin)
	c.Assert(g.HomeDir, gc.Equals, "")

	g = New("/opt/gpg/bin/gpg", "/tmp/ring")
	c.Assert(g.Bin, gc.Equals, "/opt/gpg/bin/gpg")
	c.Assert(g.HomeDir, gc.Equals, "/tmp/ring")
}
