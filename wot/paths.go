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

// Package wot discovers and prunes certification paths over an ingested
// graph store.
package wot

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Graph is the adjacency the finder walks: SignedBy returns the keys
// whose identities rowid has certified, ascending.
type Graph interface {
	SignedBy(rowid int) ([]int, error)
}

const (
	DefaultMaxDepth = 4
	DefaultMaxPaths = 4

	// DefaultMaxIterations bounds worklist pops per Find call. The
	// reseed-on-discovery step rescans from the root after every
	// accepted path, which on pathological graphs can revisit large
	// parts of the frontier.
	DefaultMaxIterations = 1 << 20
)

// Finder discovers up to MaxPaths shortest, mutually non-redundant
// certification paths between two keys. Successors of a node are the keys
// whose identities that node certified, so paths run along certification
// direction from root to target.
type Finder struct {
	Storage       Graph
	MaxDepth      int
	MaxPaths      int
	MaxIterations int

	// Exclude seeds the used set: keys listed here are never taken as
	// intermediates (path endpoints are unaffected).
	Exclude []int
}

func NewFinder(st Graph) *Finder {
	return &Finder{
		Storage:       st,
		MaxDepth:      DefaultMaxDepth,
		MaxPaths:      DefaultMaxPaths,
		MaxIterations: DefaultMaxIterations,
	}
}

type entry struct {
	depth int
	path  []int
}

// Find returns up to MaxPaths paths [root, ..., target] of at most
// MaxDepth edges each. An empty result means no path exists within the
// bound; that is not an error.
func (f *Finder) Find(root, target int) ([][]int, error) {
	start := time.Now()
	recordSearch()

	maxdepth := f.MaxDepth
	if maxdepth <= 0 {
		maxdepth = DefaultMaxDepth
	}
	maxpaths := f.MaxPaths
	if maxpaths <= 0 {
		maxpaths = DefaultMaxPaths
	}
	maxiter := f.MaxIterations
	if maxiter <= 0 {
		maxiter = DefaultMaxIterations
	}

	used := make(map[int]bool)
	for _, rowid := range f.Exclude {
		used[rowid] = true
	}
	resolved := make(map[int]bool)
	queue := []entry{{0, []int{root}}}

	var paths [][]int
	iters := 0
	for len(queue) > 0 && len(paths) < maxpaths {
		iters++
		if iters > maxiter {
			log.Warningf("path search from %d to %d hit the iteration ceiling (%d)",
				root, target, maxiter)
			recordExhausted()
			break
		}
		head := queue[0]
		queue = queue[1:]
		last := head.path[len(head.path)-1]

		if resolved[last] {
			// a shorter or equal path to this key was already found
			continue
		}
		if last == target {
			paths = append(paths, head.path)
			if head.depth <= 1 {
				// directly certified; no better path can exist
				break
			}
			for _, rowid := range head.path[1 : len(head.path)-1] {
				used[rowid] = true
			}
			// Excluding the new intermediates can make previously
			// pruned branches viable again, so restart the scan.
			resolved = make(map[int]bool)
			queue = []entry{{0, []int{root}}}
			continue
		}
		if head.depth >= maxdepth {
			continue
		}
		resolved[last] = true

		signed, err := f.Storage.SignedBy(last)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot expand key %d", last)
		}
		direct := false
		for _, next := range signed {
			if next == target {
				direct = true
				break
			}
		}
		if direct {
			queue = append(queue, extend(head, target))
			continue
		}
		for _, next := range signed {
			if used[next] || resolved[next] {
				continue
			}
			queue = append(queue, extend(head, next))
		}
	}

	recordPathsFound(len(paths), time.Since(start))
	if len(paths) == 0 {
		log.Infof("no path from %d to %d within %d hops", root, target, maxdepth)
	}
	return paths, nil
}

func extend(head entry, next int) entry {
	path := make([]int, len(head.path), len(head.path)+1)
	copy(path, head.path)
	return entry{head.depth + 1, append(path, next)}
}
