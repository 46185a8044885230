package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/snowberryfield/printemps/internal/analysis"
	"github.com/snowberryfield/printemps/internal/heatmap"
	"github.com/snowberryfield/printemps/internal/opt"
	"github.com/snowberryfield/printemps/internal/projection"
	"github.com/snowberryfield/printemps/internal/solution"
	"github.com/spf13/cobra"
)

var (
	solutionsNumber        int
	solutionsShuffle       bool
	solutionsSeed          int64
	solutionsDescending    bool
	solutionsEpsilon       float64
	solutionsMDS           bool
	solutionsStress        bool
	solutionsContribution  bool
	solutionsDot           bool
	solutionsTitle         bool
	solutionsPrefix        string
	solutionsNormalization string
	solutionsIters         int
	solutionsPopSize       int
)

var solutionsCmd = &cobra.Command{
	Use:   "solutions <input>",
	Short: "Visualize a set of feasible solutions",
	Long: `Reads a feasible-solution archive, optionally samples it, drops near-duplicate
solutions and writes heatmap.png with the pairwise Manhattan distances.

Further outputs are enabled per flag:
  --mds           mds.png, a classical MDS layout colored by objective
  --stress        stress.png, the MDS layout refined by the mayfly optimizer
  --contribution  contribution.png, objectives of the solutions using each variable
  --dot           mst.dot, the minimum spanning tree of the distance graph`,
	Args: cobra.ExactArgs(1),
	RunE: runSolutions,
}

func init() {
	solutionsCmd.Flags().IntVarP(&solutionsNumber, "number-of-solutions", "n", 1000000, "Maximum number of solutions to plot")
	solutionsCmd.Flags().BoolVarP(&solutionsShuffle, "shuffle", "s", false, "Sample solutions at random instead of keeping the best ones")
	solutionsCmd.Flags().Int64Var(&solutionsSeed, "seed", 1, "Random seed for --shuffle and --stress")
	solutionsCmd.Flags().BoolVar(&solutionsDescending, "descending", false, "Sort solutions in descending order of objective")
	solutionsCmd.Flags().Float64Var(&solutionsEpsilon, "epsilon", 1e-5, "Drop solutions closer than this to another with the same objective")
	solutionsCmd.Flags().BoolVar(&solutionsMDS, "mds", false, "Write the MDS layout")
	solutionsCmd.Flags().BoolVar(&solutionsStress, "stress", false, "Write the stress-refined layout")
	solutionsCmd.Flags().BoolVar(&solutionsContribution, "contribution", false, "Write the variable contribution plot")
	solutionsCmd.Flags().BoolVar(&solutionsDot, "dot", false, "Write the minimum spanning tree DOT file")
	solutionsCmd.Flags().BoolVar(&solutionsTitle, "title", false, "Add titles to figures")
	solutionsCmd.Flags().StringVar(&solutionsPrefix, "prefix", ".", "Directory the outputs are written to")
	solutionsCmd.Flags().StringVar(&solutionsNormalization, "normalization", "log", "Objective color curve (log, sqrt, linear)")
	solutionsCmd.Flags().IntVar(&solutionsIters, "iterations", 200, "Optimizer iterations for --stress")
	solutionsCmd.Flags().IntVar(&solutionsPopSize, "population", 30, "Optimizer population for --stress")

	rootCmd.AddCommand(solutionsCmd)
}

func runSolutions(cmd *cobra.Command, args []string) error {
	norm, err := analysis.ParseNormalization(solutionsNormalization)
	if err != nil {
		return err
	}

	order := solution.Ascending
	if solutionsDescending {
		order = solution.Descending
	}

	set, err := solution.Load(args[0])
	if err != nil {
		return err
	}

	// Shuffling samples before sorting; otherwise the best N survive.
	var records []solution.Record
	if solutionsShuffle {
		rng := rand.New(rand.NewSource(solutionsSeed))
		sampled := solution.Sample(set.Solutions, solutionsNumber, rng)
		records = solution.Deduplicate(sampled, solutionsEpsilon, 0, order)
	} else {
		records = solution.Deduplicate(set.Solutions, solutionsEpsilon, solutionsNumber, order)
	}

	printSetSummary(cmd, set, len(records))
	if len(records) == 0 {
		return fmt.Errorf("no solutions to plot in %s", args[0])
	}

	if err := os.MkdirAll(solutionsPrefix, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	output := func(name string) string {
		return filepath.Join(solutionsPrefix, name)
	}

	m, err := analysis.BuildMatrix(records)
	if err != nil {
		return fmt.Errorf("failed to build distance matrix: %w", err)
	}
	objectives := solution.Objectives(records)
	summary := fmt.Sprintf("(Instance: %s, #Variable: %d, #Constraint: %d)",
		set.Name, set.NumberOfVariables, set.NumberOfConstraints)

	// go-chart titles are single-line; the heatmap splits on newlines.
	title := func(caption string) string {
		if !solutionsTitle {
			return ""
		}
		return caption + " " + summary
	}

	err = heatmap.WritePNG(output("heatmap.png"), m, heatmap.Options{
		Title:    strings.Replace(title("Manhattan distance between 2 solutions"), " (", "\n(", 1),
		Footnote: sortFootnote(order),
	})
	if err != nil {
		return err
	}

	if solutionsMDS || solutionsStress {
		layout, err := projection.ClassicalMDS(m)
		if err != nil {
			return err
		}

		if solutionsMDS {
			err := writeScatter(output("mds.png"), layout, objectives, projection.PlotOptions{
				Title:         title("2D projection of solutions by MDS"),
				Normalization: norm,
			})
			if err != nil {
				return err
			}
		}

		if solutionsStress {
			optimizer := opt.NewMayfly(solutionsIters, solutionsPopSize, solutionsSeed)
			refined, err := projection.Refine(m, layout, optimizer)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), " stress: %g (MDS) -> %g (refined)\n",
				projection.Stress(m, layout), projection.Stress(m, refined))

			err = writeScatter(output("stress.png"), refined, objectives, projection.PlotOptions{
				Title:         title("2D projection of solutions by stress minimization"),
				Normalization: norm,
			})
			if err != nil {
				return err
			}
		}
	}

	if solutionsContribution {
		groups := projection.Contributions(records)
		err := projection.WriteFile(output("contribution.png"), func(w io.Writer) error {
			return projection.RenderContributions(w, groups, projection.PlotOptions{
				Title: title("Objective function values of solutions containing each variable"),
			})
		})
		if err != nil {
			return err
		}
	}

	if solutionsDot {
		treeTitle := ""
		if solutionsTitle {
			treeTitle = analysis.NetworkTitle(set.Name, set.NumberOfVariables, set.NumberOfConstraints)
		}
		tree, err := analysis.BuildMST(m, objectives, analysis.TreeOptions{Title: treeTitle, Normalization: norm})
		if err != nil {
			return fmt.Errorf("failed to build minimum spanning tree: %w", err)
		}
		if err := tree.WriteDOT(output("mst.dot")); err != nil {
			return err
		}
	}

	return nil
}

func writeScatter(path string, points []projection.Point, objectives []float64, opts projection.PlotOptions) error {
	return projection.WriteFile(path, func(w io.Writer) error {
		return projection.RenderScatter(w, points, objectives, opts)
	})
}
