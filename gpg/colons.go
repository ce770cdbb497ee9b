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

// Package gpg decodes the machine-readable colon-delimited listing format
// produced by gpg --with-colons, and runs the gpg binary to produce it.
package gpg

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Record kinds we care about. Everything else in a listing is ignored.
const (
	KindPub = "pub"
	KindUID = "uid"
	KindSig = "sig"
	KindRev = "rev"
)

// Fields is one exploded colon record. gpg escapes literal colons inside a
// field as \x3a; SplitFields undoes that.
type Fields []string

func SplitFields(line string) Fields {
	chunks := strings.Split(line, ":")
	fields := make(Fields, len(chunks))
	for i, chunk := range chunks {
		fields[i] = strings.ReplaceAll(chunk, `\x3a`, ":")
	}
	return fields
}

func (f Fields) Kind() string {
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func (f Fields) at(i int) string {
	if i >= len(f) {
		return ""
	}
	return f[i]
}

// timeField converts a unix timestamp field to the sortable textual form
// stored in the database, or "" when the field is absent.
func timeField(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "", errors.Wrapf(err, "bad timestamp field %q", s)
	}
	return time.Unix(n, 0).Format("2006-01-02 15:04:05"), nil
}

// PubRecord is a decoded pub line: one primary key.
type PubRecord struct {
	Validity   string
	Size       int
	Algo       int
	KeyID      string
	Created    string
	Expires    string
	OwnerTrust string
}

func ParsePub(f Fields) (*PubRecord, error) {
	if f.Kind() != KindPub {
		return nil, errors.Errorf("not a pub record: %q", f.Kind())
	}
	size, err := strconv.Atoi(f.at(2))
	if err != nil {
		return nil, errors.Wrapf(err, "bad key size %q", f.at(2))
	}
	algo, err := strconv.Atoi(f.at(3))
	if err != nil {
		return nil, errors.Wrapf(err, "bad algo %q", f.at(3))
	}
	created, err := timeField(f.at(5))
	if err != nil {
		return nil, err
	}
	expires, err := timeField(f.at(6))
	if err != nil {
		return nil, err
	}
	return &PubRecord{
		Validity:   f.at(1),
		Size:       size,
		Algo:       algo,
		KeyID:      f.at(4),
		Created:    created,
		Expires:    expires,
		OwnerTrust: f.at(8),
	}, nil
}

// UIDRecord is a decoded uid line: one identity bound to the current key.
type UIDRecord struct {
	Validity string
	Created  string
	Expires  string
	UIDData  string
}

func ParseUID(f Fields) (*UIDRecord, error) {
	if f.Kind() != KindUID {
		return nil, errors.Errorf("not a uid record: %q", f.Kind())
	}
	if !utf8.ValidString(f.at(9)) {
		return nil, errors.Errorf("undecodable uid data")
	}
	created, err := timeField(f.at(5))
	if err != nil {
		return nil, err
	}
	expires, err := timeField(f.at(6))
	if err != nil {
		return nil, err
	}
	return &UIDRecord{
		Validity: f.at(1),
		Created:  created,
		Expires:  expires,
		UIDData:  f.at(9),
	}, nil
}

// SigRecord is a decoded sig or rev line: one certification of the current
// identity. Class is the raw signature class field, e.g. "13x"; the leading
// two hex digits are the certification type.
type SigRecord struct {
	KeyID   string
	Created string
	Expires string
	Class   string
}

func ParseSig(f Fields) (*SigRecord, error) {
	if k := f.Kind(); k != KindSig && k != KindRev {
		return nil, errors.Errorf("not a sig record: %q", k)
	}
	created, err := timeField(f.at(5))
	if err != nil {
		return nil, err
	}
	expires, err := timeField(f.at(6))
	if err != nil {
		return nil, err
	}
	return &SigRecord{
		KeyID:   f.at(4),
		Created: created,
		Expires: expires,
		Class:   f.at(10),
	}, nil
}

// SigType returns the numeric certification type from the class field.
// ok is false when the field is too short to carry one.
func (r *SigRecord) SigType() (int, bool) {
	if len(r.Class) < 2 {
		return 0, false
	}
	n, err := strconv.ParseInt(r.Class[:2], 16, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
