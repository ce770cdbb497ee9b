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
	"encoding/hex"
	"strings"

	log "github.com/sirupsen/logrus"

	wotstorage "wotmate/storage"
	"wotmate/wotsap"
)

// LoadWotsap ingests a decoded wotsap archive. Archive position maps
// directly to row ID order: key i becomes pub rowid i+1 with a single
// primary identity. The archive carries no validity or owner-trust data,
// so those columns stay at their defaults.
func (l *Loader) LoadWotsap(arch *wotsap.Archive) error {
	log.Infof("Loading %d keys from wotsap archive", len(arch.KeyIDs))
	uidRows := make([]int, len(arch.KeyIDs))
	for i, rawkid := range arch.KeyIDs {
		keyid := strings.ToUpper(hex.EncodeToString(rawkid))
		rowid, err := l.st.InsertPubKey(&wotstorage.PubKey{
			KeyID:      keyid,
			OwnerTrust: "-",
		})
		if err != nil {
			return err
		}
		l.keyidRow[keyid] = rowid
		l.stats.Keys++
		recordKeyLoaded()

		uidRow, err := l.st.InsertUserID(&wotstorage.UserID{
			PubRowID: rowid,
			UIDData:  arch.Names[i],
			Primary:  true,
		})
		if err != nil {
			return err
		}
		uidRows[i] = uidRow
		l.stats.UIDs++
		recordUIDLoaded()
	}

	for i, words := range arch.Signatures {
		var certs []*wotstorage.Cert
		// On a duplicate signer the first word wins. Archive words have no
		// supersession order, unlike gpg listings where later sig records
		// replace earlier ones.
		seen := make(map[int]bool)
		for _, word := range words {
			signer := wotsap.SignerIndex(word)
			if signer == i || signer < 0 || signer >= len(arch.KeyIDs) {
				continue
			}
			if seen[signer] {
				continue
			}
			seen[signer] = true
			certs = append(certs, &wotstorage.Cert{
				UIDRowID: uidRows[i],
				// signer indices are zero-based, row ids start at 1
				PubRowID: signer + 1,
				SigType:  wotsap.SigType(word),
			})
		}
		if err := l.st.InsertCerts(certs); err != nil {
			return err
		}
		l.stats.Sigs += len(certs)
		recordSigsLoaded(len(certs))
	}
	if err := l.st.Flush(); err != nil {
		return err
	}
	log.Infof("Loaded %d keys, %d uids and %d sigs from archive",
		l.stats.Keys, l.stats.UIDs, l.stats.Sigs)
	return nil
}
