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

// Package ingest normalizes raw keyring listings into the graph store.
//
// Ingestion runs in two phases over the colon-format listings: the key
// phase accepts or rejects every primary key, then the signature phase
// walks the uid and sig records, staging certifications per identity so
// that revocations seen anywhere within the identity's record can eject
// them before commit.
package ingest

import (
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"wotmate/gpg"
	wotstorage "wotmate/storage"
)

// DefaultWeakSize is the bit length below which RSA and DSA keys are
// considered too weak to participate in the graph.
const DefaultWeakSize = 2048

// Stats counts what one ingestion run accepted and skipped.
type Stats struct {
	Keys    int
	UIDs    int
	Sigs    int
	Skipped int
}

// Loader ingests keyring listings into a fresh store. One Loader is good
// for one store lifetime; row IDs it assigns mean nothing beyond that.
type Loader struct {
	UseWeak  bool
	WeakSize int

	st       wotstorage.Inserter
	keyidRow map[string]int
	stats    Stats
}

func NewLoader(st wotstorage.Inserter) *Loader {
	return &Loader{
		WeakSize: DefaultWeakSize,
		st:       st,
		keyidRow: make(map[string]int),
	}
}

func (l *Loader) Stats() Stats {
	return l.stats
}

func (l *Loader) weak(pub *gpg.PubRecord) bool {
	// Only RSA (1) and DSA (17) sizes are comparable against the
	// threshold; EC algorithms are never considered weak here.
	return (pub.Algo == 1 || pub.Algo == 17) && pub.Size < l.WeakSize
}

// LoadKeys is the key phase: it accepts every valid, sufficiently strong
// primary key from a public key listing and records its row ID.
func (l *Loader) LoadKeys(lines []string) error {
	log.Info("Loading all valid pubkeys")
	for _, line := range lines {
		fields := gpg.SplitFields(line)
		if fields.Kind() != gpg.KindPub {
			continue
		}
		pub, err := gpg.ParsePub(fields)
		if err != nil {
			log.Warningf("skipping pub record: %v", err)
			l.stats.Skipped++
			recordSkipped()
			continue
		}
		switch pub.Validity {
		case "e", "r", "i":
			continue
		}
		if !l.UseWeak && l.weak(pub) {
			log.Infof("Ignoring weak key: %s", pub.KeyID)
			recordWeakKey()
			continue
		}
		rowid, err := l.st.InsertPubKey(&wotstorage.PubKey{
			KeyID:      pub.KeyID,
			Validity:   pub.Validity,
			Size:       pub.Size,
			Algo:       pub.Algo,
			Created:    pub.Created,
			Expires:    pub.Expires,
			OwnerTrust: pub.OwnerTrust,
		})
		if err != nil {
			return err
		}
		l.keyidRow[pub.KeyID] = rowid
		l.stats.Keys++
		recordKeyLoaded()
	}
	if err := l.st.Flush(); err != nil {
		return err
	}
	log.Infof("Loaded %d pubkeys", l.stats.Keys)
	return nil
}

// sigstate is the current-key/current-identity cursor of the signature
// phase.
type sigstate struct {
	pubKeyID  string
	pubRowID  int
	havePub   bool
	isPrimary bool

	uidRowID int
	haveUID  bool

	// pending holds staged certifications for the current identity,
	// keyed by signer key ID so a later record by the same signer
	// overwrites an earlier one. revoked remembers signers whose
	// certification of this identity was revoked.
	pending map[string]*wotstorage.Cert
	revoked map[string]bool
}

func (s *sigstate) resetUID() {
	s.haveUID = false
	s.pending = make(map[string]*wotstorage.Cert)
	s.revoked = make(map[string]bool)
}

// LoadSignatures is the signature phase. It must run after LoadKeys so
// certifications can cite keys appearing later in the listing; anything
// citing a key that was not accepted is discarded.
func (l *Loader) LoadSignatures(lines []string) error {
	if len(l.keyidRow) == 0 {
		return errors.New("no accepted keys; run the key phase first")
	}
	log.Info("Loading uid and signature data")

	var state sigstate
	state.resetUID()

	for _, line := range lines {
		fields := gpg.SplitFields(line)
		switch fields.Kind() {
		case gpg.KindPub:
			if err := l.flush(&state); err != nil {
				return err
			}
			pub, err := gpg.ParsePub(fields)
			if err != nil {
				l.stats.Skipped++
				recordSkipped()
				state.havePub = false
				state.resetUID()
				continue
			}
			state.pubKeyID = pub.KeyID
			rowid, ok := l.keyidRow[pub.KeyID]
			if !ok {
				// Key was filtered in the key phase; none of its
				// identities may enter the graph.
				state.havePub = false
				state.resetUID()
				continue
			}
			state.pubRowID = rowid
			state.havePub = true
			state.isPrimary = true
			state.resetUID()

		case gpg.KindUID:
			if err := l.flush(&state); err != nil {
				return err
			}
			state.resetUID()
			uid, err := gpg.ParseUID(fields)
			if err != nil {
				l.stats.Skipped++
				recordSkipped()
				continue
			}
			if !state.havePub {
				continue
			}
			switch uid.Validity {
			case "e", "r", "i":
				continue
			}
			rowid, err := l.st.InsertUserID(&wotstorage.UserID{
				PubRowID: state.pubRowID,
				Validity: uid.Validity,
				Created:  uid.Created,
				Expires:  uid.Expires,
				UIDData:  uid.UIDData,
				Primary:  state.isPrimary,
			})
			if err != nil {
				return err
			}
			state.uidRowID = rowid
			state.haveUID = true
			state.isPrimary = false
			l.stats.UIDs++
			recordUIDLoaded()

		case gpg.KindSig, gpg.KindRev:
			if !state.haveUID {
				continue
			}
			sig, err := gpg.ParseSig(fields)
			if err != nil {
				l.stats.Skipped++
				recordSkipped()
				continue
			}
			if sig.KeyID == state.pubKeyID {
				// self-certification
				continue
			}
			sigtype, ok := sig.SigType()
			if !ok {
				continue
			}
			if sigtype == 0x30 {
				delete(state.pending, sig.KeyID)
				state.revoked[sig.KeyID] = true
				continue
			}
			if sigtype < 0x10 || sigtype > 0x13 {
				continue
			}
			if state.revoked[sig.KeyID] {
				continue
			}
			signerRow, ok := l.keyidRow[sig.KeyID]
			if !ok {
				continue
			}
			state.pending[sig.KeyID] = &wotstorage.Cert{
				UIDRowID: state.uidRowID,
				PubRowID: signerRow,
				Created:  sig.Created,
				Expires:  sig.Expires,
				SigType:  sigtype,
			}
		}
	}
	if err := l.flush(&state); err != nil {
		return err
	}
	if err := l.st.Flush(); err != nil {
		return err
	}
	log.Infof("Loaded %d valid uids and %d valid sigs", l.stats.UIDs, l.stats.Sigs)
	if l.stats.Skipped > 0 {
		log.Infof("Skipped %d malformed records", l.stats.Skipped)
	}
	return nil
}

// flush commits the staged certifications of the identity that just ended.
func (l *Loader) flush(state *sigstate) error {
	if len(state.pending) == 0 {
		return nil
	}
	signers := make([]string, 0, len(state.pending))
	for signer := range state.pending {
		signers = append(signers, signer)
	}
	sort.Strings(signers)
	certs := make([]*wotstorage.Cert, 0, len(signers))
	for _, signer := range signers {
		certs = append(certs, state.pending[signer])
	}
	if err := l.st.InsertCerts(certs); err != nil {
		return err
	}
	l.stats.Sigs += len(certs)
	recordSigsLoaded(len(certs))
	state.pending = make(map[string]*wotstorage.Cert)
	return nil
}
