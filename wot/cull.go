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

package wot

import (
	"sort"
	"strconv"
	"strings"
)

// CullRedundant drops paths whose trailing segment duplicates a segment of
// a shorter already-kept path, and keeps at most maxpaths (no cap when
// maxpaths is 0). Only trailing subsequences are compared: two paths that
// share a leading segment but diverge later are both informative.
func CullRedundant(paths [][]int, maxpaths int) [][]int {
	sorted := make([][]int, len(paths))
	copy(sorted, paths)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) < len(sorted[j])
	})

	chunks := make(map[string]bool)
	var culled [][]int
	for _, path := range sorted {
		redundant := false
		for cut := len(path) - 2; cut >= 1; cut-- {
			if chunks[chunkKey(path[cut:])] {
				redundant = true
				break
			}
		}
		if redundant {
			recordCulled()
			continue
		}
		for cut := len(path) - 2; cut >= 1; cut-- {
			chunks[chunkKey(path[cut:])] = true
		}
		culled = append(culled, path)
		if maxpaths > 0 && len(culled) >= maxpaths {
			break
		}
	}
	return culled
}

func chunkKey(chunk []int) string {
	var b strings.Builder
	for i, rowid := range chunk {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(rowid))
	}
	return b.String()
}
