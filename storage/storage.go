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

package storage

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Version is the schema version written to, and expected in, the metadata
// table. Stores created with a different version are unusable.
const Version = 1

var ErrKeyNotFound = errors.New("key not found")
var ErrIncompatibleSchema = errors.New("incompatible schema version")

func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrKeyNotFound
}

func IsIncompatibleSchema(err error) bool {
	return errors.Cause(err) == ErrIncompatibleSchema
}

// AmbiguousError reports a key ID or identity lookup that matched more than
// one row. Candidates carry the matching key IDs so the caller can
// disambiguate.
type AmbiguousError struct {
	Query      string
	Candidates []string
}

func (err *AmbiguousError) Error() string {
	return fmt.Sprintf("%q matches multiple keys: %s", err.Query,
		strings.Join(err.Candidates, ", "))
}

func IsAmbiguous(err error) bool {
	_, ok := errors.Cause(err).(*AmbiguousError)
	return ok
}

// PubKey is one primary key row. RowID is assigned sequentially during
// ingestion and means nothing outside the run that assigned it.
type PubKey struct {
	RowID      int
	KeyID      string
	Validity   string
	Size       int
	Algo       int
	Created    string
	Expires    string
	OwnerTrust string
}

// UserID is one identity string bound to a PubKey. At most one identity per
// key has Primary set; a key without a primary identity is invisible to
// identity-based lookups.
type UserID struct {
	RowID    int
	PubRowID int
	Validity string
	Created  string
	Expires  string
	UIDData  string
	Primary  bool
}

// Cert is one certification of a UserID by a PubKey, keyed by
// (UIDRowID, PubRowID).
type Cert struct {
	UIDRowID int
	PubRowID int
	Created  string
	Expires  string
	SigType  int
}

// PathNode carries the label data the renderer needs for one key on a path.
type PathNode struct {
	RowID      int
	KeyID      string
	UIDData    string
	Validity   string
	Size       int
	Algo       int
	OwnerTrust string
}

// Inserter defines the storage API the ingestion parser writes through.
type Inserter interface {

	// InsertPubKey stores a primary key row and returns its row ID.
	InsertPubKey(*PubKey) (int, error)

	// InsertUserID stores an identity row and returns its row ID.
	InsertUserID(*UserID) (int, error)

	// InsertCerts stores a batch of certification rows.
	InsertCerts([]*Cert) error

	// Flush commits everything inserted so far.
	Flush() error
}

// Queryer defines the storage API for lookups over an ingested graph.
type Queryer interface {

	// RowIDByKeyID resolves a full or partial hex key ID to a pub row ID.
	// Returns ErrKeyNotFound on zero matches, *AmbiguousError on several.
	RowIDByKeyID(keyid string) (int, error)

	// RowIDByIdentity resolves a case-insensitive identity substring to a
	// pub row ID, with the same contract as RowIDByKeyID.
	RowIDByIdentity(substr string) (int, error)

	// UltimateKey returns the row ID of the key with ultimate owner-trust.
	UltimateKey() (int, error)

	// FullTrustKeys returns the row IDs of all keys with full or ultimate
	// owner-trust, ascending.
	FullTrustKeys() ([]int, error)

	// KeyByRowID fetches one pub row.
	KeyByRowID(rowid int) (*PubKey, error)

	// PrimaryUID returns the primary identity string for a key.
	PrimaryUID(rowid int) (string, error)

	// PathNodes returns renderer label data for each key with a primary
	// identity, across the whole store.
	PathNodes() ([]*PathNode, error)

	// PathNode returns renderer label data for one key.
	PathNode(rowid int) (*PathNode, error)

	// SignedBy returns the row IDs of all keys whose identities rowid has
	// certified, ascending.
	SignedBy(rowid int) ([]int, error)

	// Signers returns the row IDs of all keys that certified one of
	// rowid's identities, ascending.
	Signers(rowid int) ([]int, error)
}

// Storage is a complete web-of-trust graph store.
type Storage interface {
	io.Closer
	Inserter
	Queryer
}
