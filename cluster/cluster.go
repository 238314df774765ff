/*
 * cluster.go, part of ssbind.
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

/*
Package cluster groups a conformer ensemble in the plane of its first
two principal components: scores are snapped to a grid, leader
clustering merges nearby conformers, and one representative per cluster
is picked. The scores can be written to CSV and plotted to PNG.
*/
package cluster

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	v3 "github.com/ssbind/ssbind/v3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Options control the clustering of the principal component scores.
type Options struct {
	//Bin is the grid spacing the scores are snapped to before
	//clustering.
	Bin float64
	//DistThresh is the leader clustering radius, in score units.
	DistThresh float64
	//NumBin caps the number of clusters; surplus conformers join
	//their nearest cluster.
	NumBin int
}

// DefaultOptions returns the options used by the reference workflow.
func DefaultOptions() *Options {
	return &Options{Bin: 0.25, DistThresh: 0.5, NumBin: 10}
}

// Error is returned when the ensemble cannot be clustered.
type Error struct {
	message string
	deco    []string
}

func (e *Error) Error() string {
	return strings.Join(append([]string{e.message}, e.deco...), " ")
}

func (e *Error) Decorate(dec string) []string {
	if dec != "" {
		e.deco = append(e.deco, dec)
	}
	return e.deco
}

func newError(format string, a ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, a...)}
}

// Clusters holds the outcome: per-conformer scores and assignments,
// plus one representative conformer index per cluster.
type Clusters struct {
	PC1, PC2 []float64
	Assign   []int
	Reps     []int
	//VarFrac is the fraction of the total variance captured by each
	//of the two components.
	VarFrac [2]float64
}

// NClusters returns the number of clusters found.
func (c *Clusters) NClusters() int {
	return len(c.Reps)
}

// PCA projects the flattened conformer coordinates onto their first
// two principal components. At least three conformers are needed.
func PCA(confs []*v3.Matrix) (pc1, pc2 []float64, varfrac [2]float64, err error) {
	n := len(confs)
	if n < 3 {
		return nil, nil, varfrac, newError("cluster: %d conformers, at least 3 needed for a PCA", n)
	}
	dims := confs[0].NVecs() * 3
	data := mat.NewDense(n, dims, nil)
	for i, c := range confs {
		if c.NVecs()*3 != dims {
			return nil, nil, varfrac, newError("cluster: conformer %d has a different atom count", i)
		}
		for a := 0; a < c.NVecs(); a++ {
			data.Set(i, 3*a, c.At(a, 0))
			data.Set(i, 3*a+1, c.At(a, 1))
			data.Set(i, 3*a+2, c.At(a, 2))
		}
	}
	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, nil, varfrac, newError("cluster: principal component analysis failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)
	total := 0.0
	for _, v := range vars {
		total += v
	}
	if total > 0 && len(vars) >= 2 {
		varfrac[0] = vars[0] / total
		varfrac[1] = vars[1] / total
	}
	//center the data and project it onto the first two components
	means := make([]float64, dims)
	for j := 0; j < dims; j++ {
		col := mat.Col(nil, j, data)
		means[j] = stat.Mean(col, nil)
	}
	pc1 = make([]float64, n)
	pc2 = make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < dims; j++ {
			d := data.At(i, j) - means[j]
			pc1[i] += d * vecs.At(j, 0)
			if vecs.RawMatrix().Cols > 1 {
				pc2[i] += d * vecs.At(j, 1)
			}
		}
	}
	return pc1, pc2, varfrac, nil
}

// Do clusters the conformers in PC space: scores snapped to the Bin
// grid, leader clustering with DistThresh, at most NumBin clusters.
// The representative of a cluster is the conformer nearest to its
// centroid.
func Do(confs []*v3.Matrix, o *Options) (*Clusters, error) {
	if o == nil {
		o = DefaultOptions()
	}
	pc1, pc2, varfrac, err := PCA(confs)
	if err != nil {
		return nil, err
	}
	n := len(confs)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = snap(pc1[i], o.Bin)
		y[i] = snap(pc2[i], o.Bin)
	}
	assign := make([]int, n)
	var leadersX, leadersY []float64
	for i := 0; i < n; i++ {
		best, bestDist := -1, math.Inf(1)
		for c := range leadersX {
			d := math.Hypot(x[i]-leadersX[c], y[i]-leadersY[c])
			if d < bestDist {
				best, bestDist = c, d
			}
		}
		if best >= 0 && (bestDist <= o.DistThresh || len(leadersX) >= o.NumBin) {
			assign[i] = best
			continue
		}
		leadersX = append(leadersX, x[i])
		leadersY = append(leadersY, y[i])
		assign[i] = len(leadersX) - 1
	}
	nclust := len(leadersX)
	//centroids in score space, then the nearest member as representative
	cx := make([]float64, nclust)
	cy := make([]float64, nclust)
	count := make([]int, nclust)
	for i := 0; i < n; i++ {
		cx[assign[i]] += pc1[i]
		cy[assign[i]] += pc2[i]
		count[assign[i]]++
	}
	reps := make([]int, nclust)
	repDist := make([]float64, nclust)
	for c := 0; c < nclust; c++ {
		cx[c] /= float64(count[c])
		cy[c] /= float64(count[c])
		repDist[c] = math.Inf(1)
		reps[c] = -1
	}
	for i := 0; i < n; i++ {
		c := assign[i]
		d := math.Hypot(pc1[i]-cx[c], pc2[i]-cy[c])
		if d < repDist[c] {
			repDist[c] = d
			reps[c] = i
		}
	}
	return &Clusters{PC1: pc1, PC2: pc2, Assign: assign, Reps: reps, VarFrac: varfrac}, nil
}

// snap rounds v to the nearest multiple of bin.
func snap(v, bin float64) float64 {
	if bin <= 0 {
		return v
	}
	return math.Round(v/bin) * bin
}

// WriteCSV writes one line per conformer: index, the two scores and
// the cluster.
func (c *Clusters) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"conformer", "pc1", "pc2", "cluster"}); err != nil {
		return err
	}
	for i := range c.PC1 {
		rec := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(c.PC1[i], 'f', 4, 64),
			strconv.FormatFloat(c.PC2[i], 'f', 4, 64),
			strconv.Itoa(c.Assign[i]),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Plot saves a PC1/PC2 scatter of the ensemble to filename, one color
// per cluster. The extension picks the format, png for the reference
// workflow.
func (c *Clusters) Plot(filename string) error {
	p := plot.New()
	p.Title.Text = "Conformer clusters"
	p.X.Label.Text = fmt.Sprintf("PC1 (%.0f%%)", c.VarFrac[0]*100)
	p.Y.Label.Text = fmt.Sprintf("PC2 (%.0f%%)", c.VarFrac[1]*100)
	for cl := 0; cl < c.NClusters(); cl++ {
		pts := make(plotter.XYs, 0)
		for i := range c.PC1 {
			if c.Assign[i] == cl {
				pts = append(pts, plotter.XY{X: c.PC1[i], Y: c.PC2[i]})
			}
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return newError("cluster: %v", err)
		}
		s.GlyphStyle.Color = plotutil.Color(cl)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("cluster %d", cl), s)
	}
	if err := p.Save(6*vg.Inch, 6*vg.Inch, filename); err != nil {
		return newError("cluster: %v", err)
	}
	return nil
}
