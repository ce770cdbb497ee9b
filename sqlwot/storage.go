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

// Package sqlwot implements the web-of-trust graph store on SQLite.
package sqlwot

import (
	"database/sql"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	wotstorage "wotmate/storage"
)

const adjacencyCacheSize = 65536

var crTablesSQL = []string{
	`CREATE TABLE metadata (
version INTEGER
)`,
	`CREATE TABLE pub (
keyid TEXT UNIQUE,
validity TEXT,
size INTEGER,
algo INTEGER,
created TEXT,
expires TEXT,
ownertrust TEXT
)`,
	`CREATE TABLE uid (
pubrowid INTEGER,
validity TEXT,
created TEXT,
expires TEXT,
uiddata TEXT,
is_primary INTEGER,
FOREIGN KEY(pubrowid) REFERENCES pub(rowid)
)`,
	`CREATE TABLE sig (
uidrowid INTEGER,
pubrowid INTEGER,
created TEXT,
expires TEXT,
sigtype INTEGER,
FOREIGN KEY(uidrowid) REFERENCES uid(rowid),
FOREIGN KEY(pubrowid) REFERENCES pub(rowid),
PRIMARY KEY (uidrowid, pubrowid)
) WITHOUT ROWID`,
}

type storage struct {
	*sql.DB
	path string

	tx *sql.Tx

	// Adjacency memoization, never shared across store instances.
	signedBy *lru.Cache
	signers  *lru.Cache
}

var _ wotstorage.Storage = (*storage)(nil)

func dial(path string) (*storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %q", path)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "cannot set WAL mode on %q", path)
	}
	signedBy, err := lru.New(adjacencyCacheSize)
	if err != nil {
		db.Close()
		return nil, errors.WithStack(err)
	}
	signers, err := lru.New(adjacencyCacheSize)
	if err != nil {
		db.Close()
		return nil, errors.WithStack(err)
	}
	return &storage{DB: db, path: path, signedBy: signedBy, signers: signers}, nil
}

// Create opens a fresh store at path and creates the schema. The caller is
// responsible for removing any prior database file first; the graph is
// rebuilt from scratch on every ingestion run.
func Create(path string) (wotstorage.Storage, error) {
	st, err := dial(path)
	if err != nil {
		return nil, err
	}
	for _, crSQL := range crTablesSQL {
		if _, err := st.Exec(crSQL); err != nil {
			st.Close()
			return nil, errors.Wrapf(err, "cannot create schema in %q", path)
		}
	}
	if _, err := st.Exec("INSERT INTO metadata VALUES(?)", wotstorage.Version); err != nil {
		st.Close()
		return nil, errors.Wrapf(err, "cannot store schema version in %q", path)
	}
	return st, nil
}

// Open opens an existing store and verifies its schema version.
func Open(path string) (wotstorage.Storage, error) {
	st, err := dial(path)
	if err != nil {
		return nil, err
	}
	var version int
	row := st.QueryRow("SELECT version FROM metadata")
	if err := row.Scan(&version); err != nil {
		st.Close()
		return nil, errors.Wrapf(wotstorage.ErrIncompatibleSchema,
			"%q has no readable metadata", path)
	}
	if version != wotstorage.Version {
		st.Close()
		return nil, errors.Wrapf(wotstorage.ErrIncompatibleSchema,
			"%q has version %d, want %d", path, version, wotstorage.Version)
	}
	return st, nil
}

func (st *storage) Close() error {
	if st.tx != nil {
		st.tx.Rollback()
		st.tx = nil
	}
	return st.DB.Close()
}

func (st *storage) txn() (*sql.Tx, error) {
	if st.tx == nil {
		tx, err := st.Begin()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		st.tx = tx
	}
	return st.tx, nil
}

func (st *storage) Flush() error {
	if st.tx == nil {
		return nil
	}
	err := st.tx.Commit()
	st.tx = nil
	return errors.WithStack(err)
}

func (st *storage) InsertPubKey(pub *wotstorage.PubKey) (int, error) {
	tx, err := st.txn()
	if err != nil {
		return 0, err
	}
	res, err := tx.Exec("INSERT INTO pub VALUES (?,?,?,?,?,?,?)",
		pub.KeyID, pub.Validity, pub.Size, pub.Algo,
		pub.Created, pub.Expires, pub.OwnerTrust)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot insert pub %q", pub.KeyID)
	}
	rowid, err := res.LastInsertId()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	pub.RowID = int(rowid)
	return pub.RowID, nil
}

func (st *storage) InsertUserID(uid *wotstorage.UserID) (int, error) {
	tx, err := st.txn()
	if err != nil {
		return 0, err
	}
	isPrimary := 0
	if uid.Primary {
		isPrimary = 1
	}
	res, err := tx.Exec("INSERT INTO uid VALUES (?,?,?,?,?,?)",
		uid.PubRowID, uid.Validity, uid.Created, uid.Expires,
		uid.UIDData, isPrimary)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot insert uid %q", uid.UIDData)
	}
	rowid, err := res.LastInsertId()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	uid.RowID = int(rowid)
	return uid.RowID, nil
}

func (st *storage) InsertCerts(certs []*wotstorage.Cert) error {
	if len(certs) == 0 {
		return nil
	}
	tx, err := st.txn()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO sig VALUES (?,?,?,?,?)")
	if err != nil {
		return errors.WithStack(err)
	}
	defer stmt.Close()
	for _, cert := range certs {
		_, err = stmt.Exec(cert.UIDRowID, cert.PubRowID,
			cert.Created, cert.Expires, cert.SigType)
		if err != nil {
			return errors.Wrapf(err, "cannot insert sig %d/%d",
				cert.UIDRowID, cert.PubRowID)
		}
	}
	return nil
}

func (st *storage) RowIDByKeyID(keyid string) (int, error) {
	q := strings.ToUpper(strings.TrimPrefix(strings.TrimPrefix(keyid, "0x"), "0X"))
	var rows *sql.Rows
	var err error
	if len(q) >= 16 {
		// gpg key IDs are 16 hex characters; longer input is a
		// fingerprint, match on its suffix.
		q = q[len(q)-16:]
		rows, err = st.Query("SELECT rowid, keyid FROM pub WHERE keyid = ?", q)
	} else {
		rows, err = st.Query("SELECT rowid, keyid FROM pub WHERE keyid LIKE ?", "%"+q)
	}
	if err != nil {
		return 0, errors.WithStack(err)
	}
	defer rows.Close()
	return st.uniqueMatch(rows, keyid)
}

func (st *storage) RowIDByIdentity(substr string) (int, error) {
	// SQLite LIKE is case-insensitive over ASCII, which matches the
	// caller contract here.
	rows, err := st.Query(`SELECT DISTINCT uid.pubrowid, pub.keyid
	    FROM uid JOIN pub ON uid.pubrowid = pub.rowid
	   WHERE uid.uiddata LIKE ?
	   ORDER BY uid.pubrowid`, "%"+substr+"%")
	if err != nil {
		return 0, errors.WithStack(err)
	}
	defer rows.Close()
	return st.uniqueMatch(rows, substr)
}

func (st *storage) uniqueMatch(rows *sql.Rows, query string) (int, error) {
	var rowids []int
	var keyids []string
	for rows.Next() {
		var rowid int
		var keyid string
		if err := rows.Scan(&rowid, &keyid); err != nil {
			return 0, errors.WithStack(err)
		}
		rowids = append(rowids, rowid)
		keyids = append(keyids, keyid)
	}
	if err := rows.Err(); err != nil {
		return 0, errors.WithStack(err)
	}
	switch len(rowids) {
	case 0:
		return 0, errors.Wrapf(wotstorage.ErrKeyNotFound, "no match for %q", query)
	case 1:
		return rowids[0], nil
	}
	return 0, errors.WithStack(&wotstorage.AmbiguousError{
		Query:      query,
		Candidates: keyids,
	})
}

func (st *storage) UltimateKey() (int, error) {
	var rowid int
	row := st.QueryRow("SELECT rowid FROM pub WHERE ownertrust = 'u' ORDER BY rowid LIMIT 1")
	err := row.Scan(&rowid)
	if err == sql.ErrNoRows {
		return 0, errors.Wrap(wotstorage.ErrKeyNotFound, "no ultimate-trust key")
	}
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return rowid, nil
}

func (st *storage) FullTrustKeys() ([]int, error) {
	rows, err := st.Query(`SELECT DISTINCT rowid FROM pub
	   WHERE ownertrust IN ('u', 'f') ORDER BY rowid`)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()
	return scanRowIDs(rows)
}

func (st *storage) KeyByRowID(rowid int) (*wotstorage.PubKey, error) {
	pub := &wotstorage.PubKey{RowID: rowid}
	row := st.QueryRow(`SELECT keyid, validity, size, algo, created, expires, ownertrust
	    FROM pub WHERE rowid = ?`, rowid)
	err := row.Scan(&pub.KeyID, &pub.Validity, &pub.Size, &pub.Algo,
		&pub.Created, &pub.Expires, &pub.OwnerTrust)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(wotstorage.ErrKeyNotFound, "no key at rowid %d", rowid)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return pub, nil
}

func (st *storage) PrimaryUID(rowid int) (string, error) {
	var uiddata string
	row := st.QueryRow(`SELECT uiddata FROM uid
	   WHERE pubrowid = ? AND is_primary = 1`, rowid)
	err := row.Scan(&uiddata)
	if err == sql.ErrNoRows {
		return "", errors.Wrapf(wotstorage.ErrKeyNotFound,
			"no primary uid for rowid %d", rowid)
	}
	if err != nil {
		return "", errors.WithStack(err)
	}
	return uiddata, nil
}

const pathNodeSQL = `SELECT pub.rowid, pub.keyid, uid.uiddata, pub.validity,
	pub.size, pub.algo, pub.ownertrust
    FROM uid JOIN pub ON uid.pubrowid = pub.rowid
   WHERE uid.is_primary = 1`

func (st *storage) PathNode(rowid int) (*wotstorage.PathNode, error) {
	node := &wotstorage.PathNode{}
	row := st.QueryRow(pathNodeSQL+" AND pub.rowid = ?", rowid)
	err := row.Scan(&node.RowID, &node.KeyID, &node.UIDData, &node.Validity,
		&node.Size, &node.Algo, &node.OwnerTrust)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(wotstorage.ErrKeyNotFound,
			"no primary uid for rowid %d", rowid)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return node, nil
}

func (st *storage) PathNodes() ([]*wotstorage.PathNode, error) {
	rows, err := st.Query(pathNodeSQL + " ORDER BY pub.rowid")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()
	var nodes []*wotstorage.PathNode
	for rows.Next() {
		node := &wotstorage.PathNode{}
		err = rows.Scan(&node.RowID, &node.KeyID, &node.UIDData, &node.Validity,
			&node.Size, &node.Algo, &node.OwnerTrust)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		nodes = append(nodes, node)
	}
	return nodes, errors.WithStack(rows.Err())
}

func (st *storage) SignedBy(rowid int) ([]int, error) {
	if cached, ok := st.signedBy.Get(rowid); ok {
		return cached.([]int), nil
	}
	rows, err := st.Query(`SELECT DISTINCT uid.pubrowid
	    FROM uid JOIN sig ON sig.uidrowid = uid.rowid
	   WHERE sig.pubrowid = ?
	   ORDER BY uid.pubrowid`, rowid)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()
	rowids, err := scanRowIDs(rows)
	if err != nil {
		return nil, err
	}
	st.signedBy.Add(rowid, rowids)
	return rowids, nil
}

func (st *storage) Signers(rowid int) ([]int, error) {
	if cached, ok := st.signers.Get(rowid); ok {
		return cached.([]int), nil
	}
	rows, err := st.Query(`SELECT DISTINCT sig.pubrowid
	    FROM sig JOIN uid ON sig.uidrowid = uid.rowid
	   WHERE uid.pubrowid = ?
	   ORDER BY sig.pubrowid`, rowid)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()
	rowids, err := scanRowIDs(rows)
	if err != nil {
		return nil, err
	}
	st.signers.Add(rowid, rowids)
	return rowids, nil
}

func scanRowIDs(rows *sql.Rows) ([]int, error) {
	var rowids []int
	for rows.Next() {
		var rowid int
		if err := rows.Scan(&rowid); err != nil {
			return nil, errors.WithStack(err)
		}
		rowids = append(rowids, rowid)
	}
	return rowids, errors.WithStack(rows.Err())
}
