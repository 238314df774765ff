/*
 * cluster_test.go, part of ssbind.
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

package cluster

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v3 "github.com/ssbind/ssbind/v3"
)

// three groups of two-atom conformers, well separated in space
func grouped(t *testing.T) []*v3.Matrix {
	t.Helper()
	offsets := [][3]float64{{0, 0, 0}, {5, 0, 0}, {0, 5, 0}}
	jitter := []float64{0, 0.05, -0.05}
	confs := make([]*v3.Matrix, 0, 9)
	for _, off := range offsets {
		for _, j := range jitter {
			m, err := v3.NewMatrix([]float64{
				off[0] + j, off[1], off[2],
				off[0] + j + 1.5, off[1], off[2],
			})
			require.NoError(t, err)
			confs = append(confs, m)
		}
	}
	return confs
}

func TestPCASeparatesGroups(t *testing.T) {
	confs := grouped(t)
	pc1, pc2, varfrac, err := PCA(confs)
	require.NoError(t, err)
	require.Len(t, pc1, 9)
	require.Len(t, pc2, 9)
	assert.Greater(t, varfrac[0], 0.3, "the first component must carry real variance")
	//conformers of the same group must score close together on PC1
	for g := 0; g < 3; g++ {
		for i := 1; i < 3; i++ {
			assert.InDelta(t, pc1[3*g], pc1[3*g+i], 0.5)
		}
	}
}

func TestPCARejectsTinyEnsembles(t *testing.T) {
	confs := grouped(t)[:2]
	_, _, _, err := PCA(confs)
	assert.Error(t, err)
}

func TestDoFindsGroups(t *testing.T) {
	confs := grouped(t)
	c, err := Do(confs, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, c.NClusters())
	for g := 0; g < 3; g++ {
		for i := 1; i < 3; i++ {
			assert.Equal(t, c.Assign[3*g], c.Assign[3*g+i],
				"conformers of one group must share a cluster")
		}
	}
	for _, r := range c.Reps {
		assert.GreaterOrEqual(t, r, 0)
		assert.Less(t, r, len(confs))
	}
}

func TestDoHonorsNumBin(t *testing.T) {
	confs := grouped(t)
	o := DefaultOptions()
	o.NumBin = 2
	c, err := Do(confs, o)
	require.NoError(t, err)
	assert.LessOrEqual(t, c.NClusters(), 2)
	assert.Len(t, c.Assign, len(confs))
}

func TestWriteCSV(t *testing.T) {
	confs := grouped(t)
	c, err := Do(confs, DefaultOptions())
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, c.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(confs)+1)
	assert.Equal(t, "conformer,pc1,pc2,cluster", lines[0])
}

func TestPlotWritesFile(t *testing.T) {
	confs := grouped(t)
	c, err := Do(confs, DefaultOptions())
	require.NoError(t, err)
	name := filepath.Join(t.TempDir(), "pca.png")
	require.NoError(t, c.Plot(name))
}
