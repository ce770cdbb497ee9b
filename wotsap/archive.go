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

// Package wotsap decodes the legacy wotsap web-of-trust archive: a Unix
// ar container with a keys member (8-byte key IDs), a names member
// (newline-delimited identity strings) and a signatures member (per key, a
// count-prefixed array of signer words).
package wotsap

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const arMagic = "!<arch>\n"

// Signature words pack the certification class into the top nibble and the
// zero-based signer index into the low 28 bits.
const (
	sigIndexMask = 0x0fffffff
	sigTypeShift = 28
)

// Archive is the decoded form consumed by ingestion.
type Archive struct {
	KeyIDs     [][]byte
	Names      []string
	Signatures [][]uint32
}

// SignerIndex extracts the zero-based key index from a signature word.
func SignerIndex(word uint32) int {
	return int(word & sigIndexMask)
}

// SigType extracts the certification type from a signature word.
func SigType(word uint32) int {
	return 0x10 + int(word>>sigTypeShift)&0x3
}

// Read decodes a wotsap archive. Member order does not matter; members
// other than keys, names and signatures (such as README) are skipped.
func Read(r io.Reader) (*Archive, error) {
	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, errors.Wrap(err, "cannot read archive magic")
	}
	if string(magic) != arMagic {
		return nil, errors.Errorf("not an ar archive: %q", magic)
	}

	members := map[string][]byte{}
	for {
		name, data, err := readMember(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		members[name] = data
	}

	keys, ok := members["keys"]
	if !ok {
		return nil, errors.New("archive has no keys member")
	}
	names, ok := members["names"]
	if !ok {
		return nil, errors.New("archive has no names member")
	}
	sigs, ok := members["signatures"]
	if !ok {
		return nil, errors.New("archive has no signatures member")
	}

	arch := &Archive{}
	if len(keys)%8 != 0 {
		return nil, errors.Errorf("keys member length %d is not a multiple of 8", len(keys))
	}
	for off := 0; off < len(keys); off += 8 {
		arch.KeyIDs = append(arch.KeyIDs, keys[off:off+8])
	}
	arch.Names = strings.Split(strings.TrimRight(string(names), "\n"), "\n")
	if len(arch.Names) != len(arch.KeyIDs) {
		return nil, errors.Errorf("archive has %d keys but %d names",
			len(arch.KeyIDs), len(arch.Names))
	}

	off := 0
	for i := 0; i < len(arch.KeyIDs); i++ {
		if off+4 > len(sigs) {
			return nil, errors.Errorf("signatures member truncated at key %d", i)
		}
		count := int(binary.BigEndian.Uint32(sigs[off:]))
		off += 4
		if off+4*count > len(sigs) {
			return nil, errors.Errorf("signatures member truncated at key %d", i)
		}
		words := make([]uint32, count)
		for j := 0; j < count; j++ {
			words[j] = binary.BigEndian.Uint32(sigs[off:])
			off += 4
		}
		arch.Signatures = append(arch.Signatures, words)
	}
	return arch, nil
}

// readMember decodes one 60-byte ar header and the member payload,
// consuming the padding byte of odd-sized members.
func readMember(r io.Reader) (string, []byte, error) {
	hdr := make([]byte, 60)
	n, err := io.ReadFull(r, hdr)
	if err == io.EOF || (err == io.ErrUnexpectedEOF && n == 0) {
		return "", nil, io.EOF
	}
	if err != nil {
		return "", nil, errors.Wrap(err, "cannot read member header")
	}
	if string(hdr[58:60]) != "`\n" {
		return "", nil, errors.Errorf("bad member header terminator %q", hdr[58:60])
	}
	name := strings.TrimRight(strings.TrimSpace(string(hdr[0:16])), "/")
	var size int
	for _, c := range strings.TrimSpace(string(hdr[48:58])) {
		if c < '0' || c > '9' {
			return "", nil, errors.Errorf("bad member size in header for %q", name)
		}
		size = size*10 + int(c-'0')
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", nil, errors.Wrapf(err, "cannot read member %q", name)
	}
	if size%2 == 1 {
		pad := make([]byte, 1)
		// Trailing pad may be absent on the last member.
		io.ReadFull(r, pad)
	}
	return name, data, nil
}
