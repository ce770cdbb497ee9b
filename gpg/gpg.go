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
	"bytes"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const DefaultBin = "/usr/bin/gpg2"

// GPG runs the key-management binary. Zero value is not usable; construct
// with New so the binary path is always set.
type GPG struct {
	Bin     string
	HomeDir string
}

func New(bin, homedir string) *GPG {
	if bin == "" {
		bin = DefaultBin
	}
	return &GPG{Bin: bin, HomeDir: homedir}
}

func (g *GPG) run(withColons bool, args ...string) ([]byte, error) {
	if withColons {
		args = append([]string{"--with-colons"}, args...)
	}
	cmd := exec.Command(g.Bin, args...)
	if g.HomeDir != "" {
		cmd.Env = append(os.Environ(), "GNUPGHOME="+g.HomeDir)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Infof("Running %s %s...", g.Bin, strings.Join(args, " "))
	err := cmd.Run()
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		log.Warning(msg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s failed: %s",
			g.Bin, strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// lines splits colon-format output, dropping blanks, comments and records
// whose kind is not in matchonly (all records when matchonly is empty).
func lines(output []byte, matchonly ...string) []string {
	var out []string
	for _, line := range strings.Split(string(output), "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		if len(matchonly) == 0 {
			out = append(out, line)
			continue
		}
		for _, match := range matchonly {
			if strings.HasPrefix(line, match) {
				out = append(out, line)
				break
			}
		}
	}
	return out
}

// ListKeys returns the pub records of the public key listing.
func (g *GPG) ListKeys() ([]string, error) {
	output, err := g.run(true, "--list-public-keys")
	if err != nil {
		return nil, err
	}
	return lines(output, "pub:"), nil
}

// ListSigs returns the pub, uid, sig and rev records of the signature
// listing, in keyring order.
func (g *GPG) ListSigs() ([]string, error) {
	output, err := g.run(true, "--list-sigs")
	if err != nil {
		return nil, err
	}
	return lines(output, "pub:", "uid:", "sig:", "rev:"), nil
}

// ExportKey returns the armored export of one key.
func (g *GPG) ExportKey(keyid, exportOptions string) ([]byte, error) {
	return g.run(false, "-a", "--export", "--export-options", exportOptions, keyid)
}

// ListKeyHeader returns the human-readable listing used as the commentary
// header of an exported key file.
func (g *GPG) ListKeyHeader(keyid string) ([]byte, error) {
	return g.run(false, "--list-options", "show-notations",
		"--list-options", "no-show-uid-validity",
		"--with-subkey-fingerprints", "--list-key", keyid)
}
