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

// Package render turns discovered certification paths into a graphviz DOT
// document. Rasterizing the DOT output is left to the dot binary or any
// other graphviz consumer.
package render

import (
	"fmt"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"

	wotstorage "wotmate/storage"
)

var algos = map[int]string{
	1:  "RSA",
	17: "DSA",
	18: "ECDH",
	19: "ECDSA",
	22: "EdDSA",
}

const (
	DefaultFont     = "droid sans,dejavu sans,helvetica"
	DefaultFontSize = "11"
)

// Options control graph-wide presentation.
type Options struct {
	Font      string
	FontSize  string
	ShowTrust bool
}

// NodeName returns the DOT node identifier for a pub row.
func NodeName(rowid int) string {
	return fmt.Sprintf("a_%d", rowid)
}

// trustColor picks the node outline by owner-trust.
func trustColor(trust string) string {
	switch trust {
	case "u":
		return "purple"
	case "f":
		return "red"
	case "m":
		return "blue"
	}
	return "gray"
}

// label builds the record label: holder name and email domain on top,
// algorithm/size and key ID below, validity and trust in between when
// requested.
func label(node *wotstorage.PathNode, showTrust bool) string {
	uiddata := strings.ReplaceAll(node.UIDData, `"`, "")
	name := strings.TrimSpace(strings.SplitN(uiddata, "<", 2)[0])
	name = strings.TrimSpace(strings.SplitN(name, "(", 2)[0])

	show := ""
	if _, rest, found := strings.Cut(uiddata, "<"); found {
		email := strings.TrimSpace(strings.ReplaceAll(rest, ">", ""))
		if _, domain, found := strings.Cut(email, "@"); found {
			show = domain
		} else {
			show = email
		}
	}

	algosize := fmt.Sprintf("ALGO? %d", node.Size)
	if algo, ok := algos[node.Algo]; ok {
		algosize = fmt.Sprintf("%s %d", algo, node.Size)
	}

	if showTrust {
		return fmt.Sprintf(`{{%s\n%s|{val: %s|tru: %s}}|{%s|%s}}`,
			escapeRecord(name), escapeRecord(show),
			node.Validity, node.OwnerTrust, algosize, node.KeyID)
	}
	return fmt.Sprintf(`{%s\n%s|{%s|%s}}`,
		escapeRecord(name), escapeRecord(show), algosize, node.KeyID)
}

// escapeRecord protects the characters that structure a record label.
func escapeRecord(s string) string {
	r := strings.NewReplacer(
		"{", `\{`, "}", `\}`, "|", `\|`, "<", `\<`, ">", `\>`)
	return r.Replace(s)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// Draw builds a DOT digraph of the given paths. nodes must carry label
// data for every row ID appearing in paths. The first key of each path is
// placed in an uncolored toplevel cluster so the roots line up.
func Draw(paths [][]int, nodes map[int]*wotstorage.PathNode, opts Options) (string, error) {
	if opts.Font == "" {
		opts.Font = DefaultFont
	}
	if opts.FontSize == "" {
		opts.FontSize = DefaultFontSize
	}

	g := gographviz.NewGraph()
	if err := g.SetName("wot"); err != nil {
		return "", errors.WithStack(err)
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.WithStack(err)
	}
	err := g.AddNode("wot", "node", map[string]string{
		"fontname": quote(opts.Font),
		"fontsize": quote(opts.FontSize),
	})
	if err != nil {
		return "", errors.WithStack(err)
	}
	err = g.AddSubGraph("wot", "cluster_toplevel", map[string]string{
		"color": "white",
	})
	if err != nil {
		return "", errors.WithStack(err)
	}

	seen := make(map[int]bool)
	for _, path := range paths {
		signer := 0
		haveSigner := false
		for _, actor := range path {
			if !seen[actor] {
				node, ok := nodes[actor]
				if !ok {
					return "", errors.Errorf("no label data for rowid %d", actor)
				}
				parent := "wot"
				if !haveSigner {
					parent = "cluster_toplevel"
				}
				err = g.AddNode(parent, NodeName(actor), map[string]string{
					"shape": "record",
					"style": "rounded",
					"color": trustColor(node.OwnerTrust),
					"label": quote(label(node, opts.ShowTrust)),
				})
				if err != nil {
					return "", errors.WithStack(err)
				}
				seen[actor] = true
			}
			if haveSigner {
				err = g.AddEdge(NodeName(signer), NodeName(actor), true, nil)
				if err != nil {
					return "", errors.WithStack(err)
				}
			}
			signer = actor
			haveSigner = true
		}
	}
	return g.String(), nil
}
