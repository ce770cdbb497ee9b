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
	"github.com/pkg/errors"
)

// Lint checks that exported key material actually parses as at least one
// armored OpenPGP key. The upstream tool is trusted for signature
// classification, but a truncated or empty export should never be
// published.
func Lint(armored []byte) error {
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(armored))
	if err != nil {
		return errors.Wrap(err, "export does not parse")
	}
	if len(keyring) == 0 {
		return errors.New("export contains no keys")
	}
	return nil
}
