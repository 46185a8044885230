package analysis

import (
	"fmt"
	"log/slog"
	"os"

	"gonum.org/v1/gonum/graph/encoding/dot"
)

// MarshalDOT renders the tree as an undirected DOT graph.
func (t *Tree) MarshalDOT() ([]byte, error) {
	data, err := dot.Marshal(t, "", "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tree: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteDOT writes the tree to path.
func (t *Tree) WriteDOT(path string) error {
	data, err := t.MarshalDOT()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dot file: %w", err)
	}

	slog.Info("Wrote minimum spanning tree", "path", path, "nodes", t.NodeCount(), "edges", t.EdgeCount(), "weight", t.Weight)
	return nil
}

// NetworkTitle is the caption used for solution-network graphs.
func NetworkTitle(name string, variables, constraints int) string {
	return "Solution network: The minimum spanning tree of a complete graph where nodes denote solutions.\n" +
		"An edge connecting 2 nodes is weighted by Manhattan distance between the solutions.\n" +
		fmt.Sprintf("(Instance: %s, #Var.: %d, #Cons.: %d)", name, variables, constraints)
}
