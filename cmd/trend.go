package main

import (
	"github.com/snowberryfield/printemps/internal/trend"
	"github.com/spf13/cobra"
)

var trendOutput string

var trendCmd = &cobra.Command{
	Use:   "trend <input>",
	Short: "Render a tabu search trend file as an HTML dashboard",
	Long: `Reads the whitespace-separated trend file the solver writes per tabu search
iteration and renders ten charts (elapsed time, intensity, objective,
violation and the controller decisions) into a single HTML page.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := trend.Load(args[0])
		if err != nil {
			return err
		}
		return trend.WriteHTML(trendOutput, table)
	},
}

func init() {
	trendCmd.Flags().StringVarP(&trendOutput, "output", "o", "trend.html", "HTML output file")
	rootCmd.AddCommand(trendCmd)
}
