package main

import (
	"fmt"
	"log/slog"

	"github.com/snowberryfield/printemps/internal/analysis"
	"github.com/snowberryfield/printemps/internal/heatmap"
	"github.com/snowberryfield/printemps/internal/solution"
	"github.com/spf13/cobra"
)

var (
	distanceOutput        string
	distanceSize          int
	distanceDescending    bool
	distanceDot           bool
	distanceDotOutput     string
	distanceEpsilon       float64
	distanceTitle         string
	distanceNormalization string
)

var distanceCmd = &cobra.Command{
	Use:   "distance <input>",
	Short: "Plot the Manhattan distance between every pair of solutions",
	Long: `Reads a feasible-solution archive written by the solver, sorts the solutions
by objective and draws the pairwise Manhattan distances as a heatmap.

With --dot the minimum spanning tree of the complete distance graph is also
written as a Graphviz DOT file, nodes colored by objective value.`,
	Args: cobra.ExactArgs(1),
	RunE: runDistance,
}

func init() {
	distanceCmd.Flags().StringVarP(&distanceOutput, "output", "o", "distance.png", "Heatmap PNG file")
	distanceCmd.Flags().IntVarP(&distanceSize, "size", "s", 1000000, "Maximum number of solutions to plot")
	distanceCmd.Flags().BoolVar(&distanceDescending, "descending", false, "Sort solutions in descending order of objective")
	distanceCmd.Flags().BoolVar(&distanceDot, "dot", false, "Also write the minimum spanning tree as a DOT file")
	distanceCmd.Flags().StringVar(&distanceDotOutput, "dot-output", "distance.dot", "DOT file written with --dot")
	distanceCmd.Flags().Float64Var(&distanceEpsilon, "epsilon", 0, "Drop solutions closer than this to another with the same objective (0 = keep all)")
	distanceCmd.Flags().StringVar(&distanceTitle, "title", "", "Heatmap title (default: instance summary)")
	distanceCmd.Flags().StringVar(&distanceNormalization, "normalization", "log", "Node color curve (log, sqrt, linear)")

	rootCmd.AddCommand(distanceCmd)
}

func runDistance(cmd *cobra.Command, args []string) error {
	norm, err := analysis.ParseNormalization(distanceNormalization)
	if err != nil {
		return err
	}

	order := solution.Ascending
	if distanceDescending {
		order = solution.Descending
	}

	set, err := solution.Load(args[0])
	if err != nil {
		return err
	}

	records := solution.Deduplicate(set.Solutions, distanceEpsilon, distanceSize, order)
	printSetSummary(cmd, set, len(records))
	if len(records) == 0 {
		return fmt.Errorf("no solutions to plot in %s", args[0])
	}

	m, err := analysis.BuildMatrix(records)
	if err != nil {
		return fmt.Errorf("failed to build distance matrix: %w", err)
	}

	title := distanceTitle
	if title == "" {
		title = fmt.Sprintf("Manhattan distance between 2 solutions\n(Instance: %s, #Var.: %d, #Cons.: %d)",
			set.Name, set.NumberOfVariables, set.NumberOfConstraints)
	}

	err = heatmap.WritePNG(distanceOutput, m, heatmap.Options{
		Title:    title,
		Footnote: sortFootnote(order),
	})
	if err != nil {
		return err
	}

	if distanceDot {
		tree, err := analysis.BuildMST(m, solution.Objectives(records), analysis.TreeOptions{
			Title:         analysis.NetworkTitle(set.Name, set.NumberOfVariables, set.NumberOfConstraints),
			Normalization: norm,
		})
		if err != nil {
			return fmt.Errorf("failed to build minimum spanning tree: %w", err)
		}
		if err := tree.WriteDOT(distanceDotOutput); err != nil {
			return err
		}
	}

	slog.Debug("Distance visualization finished", "input", args[0], "solutions", len(records))
	return nil
}

// printSetSummary echoes the archive header and how many solutions survived
// sampling and deduplication.
func printSetSummary(cmd *cobra.Command, set *solution.Set, reduced int) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, " instance name: %s\n", set.Name)
	fmt.Fprintf(out, " number of variables: %d\n", set.NumberOfVariables)
	fmt.Fprintf(out, " number of constraints: %d\n", set.NumberOfConstraints)
	fmt.Fprintf(out, " original number of feasible solutions: %d\n", len(set.Solutions))
	fmt.Fprintf(out, " reduced number of feasible solutions: %d\n", reduced)
}

func sortFootnote(order solution.Order) string {
	return fmt.Sprintf("* The solutions are sorted in %s order of objective function value.", order)
}
