/*
 * main.go, part of ssbind.
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

// ssbind generates substructure-anchored conformers for a ligand
// around a bound reference molecule, filters them against the
// receptor, and clusters what is left.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	chem "github.com/ssbind/ssbind"
	"github.com/ssbind/ssbind/cluster"
	"github.com/ssbind/ssbind/embed"
	"github.com/ssbind/ssbind/filter"
	"github.com/ssbind/ssbind/generator"
	"github.com/ssbind/ssbind/mcs"
	"github.com/ssbind/ssbind/traj/ccf"
	v3 "github.com/ssbind/ssbind/v3"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "ssbind",
		Short: "substructure-anchored conformer generation",
		Long: `ssbind builds 3D conformers for a ligand that shares a substructure
with a reference molecule bound to a receptor: the shared atoms stay at
their reference positions while the rest of the ligand explores.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if cfg := v.GetString("config"); cfg != "" {
				v.SetConfigFile(cfg)
				if err := v.ReadInConfig(); err != nil {
					return err
				}
			}
			return run(cmd.Context(), v)
		},
	}
	fl := cmd.Flags()
	fl.String("config", "", "configuration file (yaml)")
	fl.String("reference", "", "bound reference molecule (sdf/mol/pdb/xyz)")
	fl.String("ligand", "", "ligand to generate conformers for")
	fl.String("receptor", "", "receptor structure, for clash filtering (optional)")
	fl.String("generator", "embed", "conformer strategy: embed, angle or dock")
	fl.Int("numconf", 100, "conformers to request")
	fl.Int64("seed", -1, "random seed, -1 for one drawn from the clock")
	fl.Int("cpu", 1, "generation workers")
	fl.Float64("tol", 1.0, "distance tolerance for the atom correspondence, A")
	fl.Float64("rms", 0.2, "RMSD cutoff between kept conformers, A")
	fl.Float64("cutoff", 1.5, "minimum ligand-receptor distance, A")
	fl.Float64("degree", 60, "torsion scan step, degrees")
	fl.Float64("bin", 0.25, "PCA score grid spacing")
	fl.Float64("distThresh", 0.5, "clustering radius in PCA score space")
	fl.Int("numbin", 10, "maximum number of clusters")
	fl.Bool("minimize", false, "relax each conformer under restraints")
	fl.String("dockCommand", "plants", "external docking engine for --generator dock")
	fl.String("out", ".", "output directory")
	cobra.CheckErr(cmd.MarkFlagRequired("reference"))
	cobra.CheckErr(cmd.MarkFlagRequired("ligand"))
	return cmd
}

func run(ctx context.Context, v *viper.Viper) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	lig, err := chem.MolFromFile(v.GetString("ligand"))
	if err != nil {
		return err
	}
	ref, err := chem.MolFromFile(v.GetString("reference"))
	if err != nil {
		return err
	}
	var receptor *chem.Molecule
	if name := v.GetString("receptor"); name != "" {
		receptor, err = chem.PDBFileRead(name)
		if err != nil {
			return err
		}
	}
	log.Infow("inputs read", "ligand", lig.Len(), "reference", ref.Len())

	opts := generator.DefaultOptions()
	opts.NumConf = v.GetInt("numconf")
	opts.Seed = v.GetInt64("seed")
	opts.CPU = v.GetInt("cpu")
	opts.Degree = v.GetFloat64("degree")
	opts.Minimize = v.GetBool("minimize")
	opts.MCS = mcs.DefaultOptions()
	opts.MCS.DistTol = v.GetFloat64("tol")
	opts.Embed = embed.DefaultOptions()

	core, err := generator.NewCore(lig, ref, opts)
	if err != nil {
		return err
	}
	corr := core.Correspondence()
	log.Infow("correspondence built", "atoms", corr.Len(), "sumdist", corr.SumDist)

	var gen generator.Generator
	switch v.GetString("generator") {
	case "embed":
		gen = generator.NewEmbedGenerator(core)
	case "angle":
		gen = generator.NewAngleGenerator(core)
	case "dock":
		handle := generator.NewDockHandle()
		handle.SetCommand(v.GetString("dockCommand"))
		handle.SetnCPU(opts.CPU)
		gen = generator.NewDockGenerator(core, handle, receptor)
	default:
		return fmt.Errorf("unknown generator %q", v.GetString("generator"))
	}

	res, err := gen.GenerateConformers(ctx, opts.NumConf)
	if err != nil {
		return err
	}
	for _, f := range res.Failed {
		log.Warnw("conformer failed", "index", f.Index, "seed", f.Seed, "error", f.Err)
	}
	log.Infow("conformers generated", "ok", len(res.Confs), "failed", len(res.Failed))

	confs := res.Confs
	if opts.Minimize {
		relaxed := make([]*v3.Matrix, 0, len(confs))
		for i, c := range confs {
			m, err := core.MinimizeOne(c)
			if err != nil {
				log.Warnw("minimization failed", "conformer", i, "error", err)
				continue
			}
			relaxed = append(relaxed, m)
		}
		confs = relaxed
		log.Infow("conformers minimized", "ok", len(confs))
	}

	outdir := v.GetString("out")
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return err
	}
	if err := writeArchive(outdir+"/conformers.ccf", lig.Len(), confs); err != nil {
		return err
	}
	if err := writeSDF(outdir+"/conformers.sdf", core, confs); err != nil {
		return err
	}

	fo := &filter.Options{RMS: v.GetFloat64("rms"), Cutoff: v.GetFloat64("cutoff")}
	var reccoords *v3.Matrix
	if receptor != nil {
		reccoords = receptor.Coords[0]
	}
	filtered, err := filter.Apply(confs, reccoords, fo)
	if err != nil {
		return err
	}
	log.Infow("conformers filtered", "kept", len(filtered), "of", len(confs))
	if err := writeSDF(outdir+"/filtered.sdf", core, filtered); err != nil {
		return err
	}

	co := &cluster.Options{
		Bin:        v.GetFloat64("bin"),
		DistThresh: v.GetFloat64("distThresh"),
		NumBin:     v.GetInt("numbin"),
	}
	clusters, err := cluster.Do(filtered, co)
	if err != nil {
		log.Warnw("clustering skipped", "error", err)
		return nil
	}
	log.Infow("conformers clustered", "clusters", clusters.NClusters())
	csvf, err := os.Create(outdir + "/clusts.csv")
	if err != nil {
		return err
	}
	defer csvf.Close()
	if err := clusters.WriteCSV(csvf); err != nil {
		return err
	}
	if err := clusters.Plot(outdir + "/pca.png"); err != nil {
		return err
	}
	reps := make([]*v3.Matrix, 0, clusters.NClusters())
	for _, r := range clusters.Reps {
		reps = append(reps, filtered[r])
	}
	return writeSDF(outdir+"/representatives.sdf", core, reps)
}

// writeSDF writes the conformers as frames of the ligand topology.
func writeSDF(name string, core *generator.Core, confs []*v3.Matrix) error {
	if len(confs) == 0 {
		return nil
	}
	mol := core.Ligand().Copy()
	mol.Coords = confs
	return chem.SDFFileWrite(name, mol, nil)
}

// writeArchive parks the raw ensemble in the compressed conformer
// format.
func writeArchive(name string, natoms int, confs []*v3.Matrix) error {
	w, err := ccf.NewWriter(name, natoms)
	if err != nil {
		return err
	}
	for _, c := range confs {
		if err := w.WNext(c); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
