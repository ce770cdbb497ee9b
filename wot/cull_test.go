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
	gc "gopkg.in/check.v1"
)

type CullSuite struct{}

var _ = gc.Suite(&CullSuite{})

func (s *CullSuite) TestTrailingSegmentCulled(c *gc.C) {
	// The longer path ends in 3,4, a trailing segment of the kept
	// shorter path, so it adds no new certification evidence.
	paths := [][]int{
		{1, 2, 3, 4},
		{1, 5, 2, 3, 4},
	}
	c.Assert(CullRedundant(paths, 0), gc.DeepEquals, [][]int{{1, 2, 3, 4}})
}

func (s *CullSuite) TestDivergentTailsKept(c *gc.C) {
	paths := [][]int{
		{1, 2, 4},
		{1, 3, 4},
	}
	c.Assert(CullRedundant(paths, 0), gc.DeepEquals, paths)
}

func (s *CullSuite) TestSharedPrefixKept(c *gc.C) {
	// Only trailing segments count: a shared leading segment with a
	// different tail is not redundant.
	paths := [][]int{
		{1, 2, 3},
		{1, 2, 5, 6},
	}
	c.Assert(CullRedundant(paths, 0), gc.DeepEquals, paths)
}

func (s *CullSuite) TestShorterPathWins(c *gc.C) {
	// Input order does not matter; the shorter path is kept and the
	// longer one sharing its tail is dropped.
	paths := [][]int{
		{1, 5, 2, 3, 4},
		{1, 2, 3, 4},
	}
	c.Assert(CullRedundant(paths, 0), gc.DeepEquals, [][]int{{1, 2, 3, 4}})
}

func (s *CullSuite) TestMaxPathsCap(c *gc.C) {
	paths := [][]int{
		{1, 2, 9},
		{1, 3, 9},
		{1, 4, 9},
	}
	culled := CullRedundant(paths, 2)
	c.Assert(culled, gc.DeepEquals, [][]int{{1, 2, 9}, {1, 3, 9}})
}

func (s *CullSuite) TestStableOrderAmongEqualLengths(c *gc.C) {
	paths := [][]int{
		{1, 4, 9},
		{1, 2, 9},
		{1, 3, 9},
	}
	c.Assert(CullRedundant(paths, 0), gc.DeepEquals, paths)
}

func (s *CullSuite) TestEmpty(c *gc.C) {
	c.Assert(CullRedundant(nil, 4), gc.HasLen, 0)
}
