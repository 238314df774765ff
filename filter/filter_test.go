/*
 * filter_test.go, part of ssbind.
 *
 * Copyright 2024 The ssbind developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v3 "github.com/ssbind/ssbind/v3"
)

func conf(t *testing.T, data ...float64) *v3.Matrix {
	t.Helper()
	m, err := v3.NewMatrix(data)
	require.NoError(t, err)
	return m
}

func TestUniqueByRMSD(t *testing.T) {
	a := conf(t, 0, 0, 0, 1.5, 0, 0, 3, 0, 0)
	aJittered := conf(t, 0.05, 0, 0, 1.55, 0, 0, 3.05, 0, 0)
	far := conf(t, 0, 0, 5, 1.5, 0, 5, 3, 0, 5)
	kept, err := UniqueByRMSD([]*v3.Matrix{a, aJittered, far}, 0.2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, kept, "the jittered duplicate must be dropped")

	kept, err = UniqueByRMSD([]*v3.Matrix{a, aJittered, far}, 0.01)
	require.NoError(t, err)
	assert.Len(t, kept, 3, "a cutoff below the jitter keeps everything")
}

func TestNoClashes(t *testing.T) {
	receptor := conf(t, 0, 0, 0, 2, 0, 0)
	near := conf(t, 0.8, 0, 0, 5, 5, 5)
	fine := conf(t, 0, 0, 4, 5, 5, 5)
	kept := NoClashes([]*v3.Matrix{near, fine}, receptor, 1.5)
	assert.Equal(t, []int{1}, kept)

	kept = NoClashes([]*v3.Matrix{near, fine}, nil, 1.5)
	assert.Len(t, kept, 2, "no receptor means no clash filtering")
}

func TestLowestDist(t *testing.T) {
	a := conf(t, 0, 0, 0, 10, 0, 0)
	b := conf(t, 0, 3, 0, 10, 1, 0)
	d, pair := LowestDist(a, b)
	assert.InDelta(t, 1.0, d, 1e-9)
	assert.Equal(t, [2]int{1, 1}, pair)
}

func TestApply(t *testing.T) {
	receptor := conf(t, 0, 0, 0)
	a := conf(t, 0, 0, 4, 1.5, 0, 4)
	dup := conf(t, 0, 0, 4.05, 1.5, 0, 4.05)
	clashing := conf(t, 0.5, 0, 0, 1.5, 0, 4)
	out, err := Apply([]*v3.Matrix{a, dup, clashing}, receptor, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, out, 1, "one duplicate and one clash must go")
}
