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

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	gc "gopkg.in/check.v1"
)

type LintSuite struct{}

var _ = gc.Suite(&LintSuite{})

func armoredTestKey(c *gc.C) []byte {
	entity, err := openpgp.NewEntity("Test Key", "", "test@example.com", &packet.Config{
		Algorithm: packet.PubKeyAlgoEdDSA,
	})
	c.Assert(err, gc.IsNil)

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	c.Assert(err, gc.IsNil)
	err = entity.Serialize(w)
	c.Assert(err, gc.IsNil)
	c.Assert(w.Close(), gc.IsNil)
	return buf.Bytes()
}

func (s *LintSuite) TestLint(c *gc.C) {
	c.Assert(Lint(armoredTestKey(c)), gc.IsNil)
}

func (s *LintSuite) TestLintGarbage(c *gc.C) {
	err := Lint([]byte("not a key at all"))
	c.Assert(err, gc.ErrorMatches, "export does not parse.*")
}

func (s *LintSuite) TestLintEmpty(c *gc.C) {
	err := Lint(nil)
	c.Assert(err, gc.ErrorMatches, "export does not parse.*")
}

func (s *LintSuite) TestLintTruncated(c *gc.C) {
	armored := armoredTestKey(c)
	err := Lint(armored[:len(armored)/2])
	c.Assert(err, gc.NotNil)
}
