package analysis

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// Presentation attributes written to DOT output.
const (
	nodePenWidth = "0.1"
	nodeStyle    = "filled, rounded"
	edgePenWidth = "0.3"
)

// SolutionNode is a tree node standing for one solution.
type SolutionNode struct {
	Index     int64
	Objective float64
	Fill      RGBA
}

// ID implements graph.Node.
func (n SolutionNode) ID() int64 { return n.Index }

// Label is the raw objective value as text.
func (n SolutionNode) Label() string {
	return strconv.FormatFloat(n.Objective, 'g', -1, 64)
}

// Attributes implements encoding.Attributer.
func (n SolutionNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: n.Label()},
		{Key: "penwidth", Value: nodePenWidth},
		{Key: "fillcolor", Value: n.Fill.Hex()},
		{Key: "style", Value: nodeStyle},
	}
}

// DistanceEdge connects two solutions and is weighted by their distance.
type DistanceEdge struct {
	F, T SolutionNode
	W    float64
}

// From implements graph.Edge.
func (e DistanceEdge) From() graph.Node { return e.F }

// To implements graph.Edge.
func (e DistanceEdge) To() graph.Node { return e.T }

// ReversedEdge implements graph.Edge.
func (e DistanceEdge) ReversedEdge() graph.Edge { return DistanceEdge{F: e.T, T: e.F, W: e.W} }

// Weight implements graph.WeightedEdge.
func (e DistanceEdge) Weight() float64 { return e.W }

// Attributes implements encoding.Attributer.
func (e DistanceEdge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "penwidth", Value: edgePenWidth}}
}

// completeGraph lists its edges in (from, to) index order so that Kruskal
// sees a stable input regardless of map iteration order.
type completeGraph struct {
	*simple.WeightedUndirectedGraph
	ordered []graph.WeightedEdge
}

func (g *completeGraph) WeightedEdges() graph.WeightedEdges {
	if len(g.ordered) == 0 {
		return graph.Empty
	}
	return iterator.NewOrderedWeightedEdges(g.ordered)
}

// TreeOptions controls node coloring and the graph caption.
type TreeOptions struct {
	// Title becomes the graph label. Empty leaves the label out.
	Title string
	// Normalization selects the color curve.
	Normalization Normalization
}

// Tree is a minimum spanning tree over solutions, ready for DOT export.
type Tree struct {
	*simple.WeightedUndirectedGraph

	// Weight is the total edge weight.
	Weight float64

	graphAttrs encoding.Attributes
}

// DOTAttributers implements dot.Attributers.
func (t *Tree) DOTAttributers() (g, n, e encoding.Attributer) {
	return &t.graphAttrs, &encoding.Attributes{}, &encoding.Attributes{}
}

// EdgeCount returns the number of tree edges.
func (t *Tree) EdgeCount() int {
	return len(graph.EdgesOf(t.Edges()))
}

// NodeCount returns the number of tree nodes.
func (t *Tree) NodeCount() int {
	return t.Nodes().Len()
}

// BuildMST builds the complete graph implied by m and returns its minimum
// spanning tree. objectives[i] labels and colors node i.
//
// Zero solutions give an empty tree and one solution gives a single node
// without edges; neither is an error.
func BuildMST(m mat.Symmetric, objectives []float64, opts TreeOptions) (*Tree, error) {
	n := Size(m)
	if len(objectives) != n {
		return nil, fmt.Errorf("objective count %d does not match matrix size %d", len(objectives), n)
	}

	tree := &Tree{WeightedUndirectedGraph: simple.NewWeightedUndirectedGraph(0, math.Inf(1))}
	tree.graphAttrs = encoding.Attributes{{Key: "labelloc", Value: "t"}}
	if opts.Title != "" {
		tree.graphAttrs = append(encoding.Attributes{{Key: "label", Value: opts.Title}}, tree.graphAttrs...)
	}

	if n == 0 {
		return tree, nil
	}

	min, max := objectives[0], objectives[0]
	for _, v := range objectives[1:] {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}

	nodes := make([]SolutionNode, n)
	full := &completeGraph{WeightedUndirectedGraph: simple.NewWeightedUndirectedGraph(0, math.Inf(1))}
	for i := range nodes {
		nodes[i] = SolutionNode{
			Index:     int64(i),
			Objective: objectives[i],
			Fill:      Color(objectives[i], min, max, opts.Normalization),
		}
		full.AddNode(nodes[i])
	}

	full.ordered = make([]graph.WeightedEdge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			e := DistanceEdge{F: nodes[i], T: nodes[j], W: m.At(i, j)}
			full.SetWeightedEdge(e)
			full.ordered = append(full.ordered, e)
		}
	}

	tree.Weight = path.Kruskal(tree, full)
	return tree, nil
}
