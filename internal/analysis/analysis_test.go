package analysis

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snowberryfield/printemps/internal/solution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func randomRecords(rng *rand.Rand, n int) []solution.Record {
	records := make([]solution.Record, n)
	for i := range records {
		m := map[string]float64{}
		for k := 0; k < 5; k++ {
			if rng.Intn(2) == 0 {
				m[string(rune('a'+k))] = float64(rng.Intn(20))
			}
		}
		records[i] = solution.Record{Objective: float64(rng.Intn(100)), Variables: solution.NewSparse(m)}
	}
	return records
}

func TestBuildMatrix_SymmetricZeroDiagonal(t *testing.T) {
	records := randomRecords(rand.New(rand.NewSource(11)), 25)

	m, err := BuildMatrix(records)
	require.NoError(t, err)
	require.Equal(t, 25, Size(m))

	for i := 0; i < 25; i++ {
		assert.Equal(t, 0.0, m.At(i, i))
		for j := 0; j < 25; j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i))
			assert.Equal(t, solution.Distance(records[i].Variables, records[j].Variables), m.At(i, j))
		}
	}
}

func TestBuildMatrix_Empty(t *testing.T) {
	m, err := BuildMatrix(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, Size(m))
	assert.Equal(t, 0.0, MaxDistance(m))
}

func TestBuildMatrix_MixedRepresentations(t *testing.T) {
	records := []solution.Record{
		{Variables: solution.Dense{1}},
		{Variables: solution.NewSparse(map[string]float64{"x": 1})},
	}

	_, err := BuildMatrix(records)
	assert.ErrorIs(t, err, solution.ErrMixedRepresentation)
}

func TestBuildMST_ThreeNodes(t *testing.T) {
	m := mat.NewSymDense(3, []float64{
		0, 2, 5,
		2, 0, 3,
		5, 3, 0,
	})

	tree, err := BuildMST(m, []float64{1, 2, 3}, TreeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 5.0, tree.Weight)
	assert.Equal(t, 2, tree.EdgeCount())
	assert.True(t, tree.HasEdgeBetween(0, 1))
	assert.True(t, tree.HasEdgeBetween(1, 2))
	assert.False(t, tree.HasEdgeBetween(0, 2))
}

func TestBuildMST_DegenerateSizes(t *testing.T) {
	empty, err := BuildMST(&mat.SymDense{}, nil, TreeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.NodeCount())
	assert.Equal(t, 0, empty.EdgeCount())

	single, err := BuildMST(mat.NewSymDense(1, nil), []float64{4}, TreeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, single.NodeCount())
	assert.Equal(t, 0, single.EdgeCount())
}

func TestBuildMST_ObjectiveCountMismatch(t *testing.T) {
	_, err := BuildMST(mat.NewSymDense(2, nil), []float64{1}, TreeOptions{})
	assert.Error(t, err)
}

func TestBuildMST_SpanningAndMinimal(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	for n := 2; n <= 6; n++ {
		for trial := 0; trial < 10; trial++ {
			m := mat.NewSymDense(n, nil)
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j++ {
					m.SetSym(i, j, float64(rng.Intn(30)+1))
				}
			}

			tree, err := BuildMST(m, make([]float64, n), TreeOptions{})
			require.NoError(t, err)

			assert.Equal(t, n-1, tree.EdgeCount())
			assert.Equal(t, n, reachable(tree, 0))
			assert.InDelta(t, bruteForceMST(m), tree.Weight, 1e-9)
		}
	}
}

// reachable counts nodes reachable from start through tree edges.
func reachable(tree *Tree, start int64) int {
	seen := map[int64]bool{start: true}
	queue := []int64{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		it := tree.From(id)
		for it.Next() {
			next := it.Node().ID()
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return len(seen)
}

// bruteForceMST enumerates every (n-1)-edge subset and returns the lightest
// one that spans the graph.
func bruteForceMST(m *mat.SymDense) float64 {
	n := m.SymmetricDim()
	type pair struct{ i, j int }
	var edges []pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, pair{i, j})
		}
	}

	best := math.Inf(1)
	var choose func(start int, picked []pair)
	choose = func(start int, picked []pair) {
		if len(picked) == n-1 {
			parent := make([]int, n)
			for i := range parent {
				parent[i] = i
			}
			var find func(int) int
			find = func(x int) int {
				for parent[x] != x {
					x = parent[x]
				}
				return x
			}
			var w float64
			for _, e := range picked {
				a, b := find(e.i), find(e.j)
				if a == b {
					return
				}
				parent[a] = b
				w += m.At(e.i, e.j)
			}
			best = math.Min(best, w)
			return
		}
		for k := start; k < len(edges); k++ {
			choose(k+1, append(picked, edges[k]))
		}
	}
	choose(0, nil)
	return best
}

func TestColor_Endpoints(t *testing.T) {
	low := Color(10, 10, 20, LogNormalization)
	assert.Equal(t, RGBA{R: 0, G: 127, B: 102, A: 127}, low)
	assert.Equal(t, "#007f667f", low.Hex())

	high := Color(20, 10, 20, LogNormalization)
	assert.Equal(t, RGBA{R: 255, G: 255, B: 102, A: 127}, high)
}

func TestColor_DegenerateRange(t *testing.T) {
	assert.Equal(t, Color(3, 3, 3, SqrtNormalization), Color(0, 0, 0, LogNormalization))
	assert.Equal(t, 0.0, Normalize(5, 5, 5, LogNormalization))
}

func TestNormalize_Monotonic(t *testing.T) {
	for _, norm := range []Normalization{LogNormalization, SqrtNormalization, LinearNormalization} {
		prev := -1.0
		for v := 0.0; v <= 100; v += 5 {
			x := Normalize(v, 0, 100, norm)
			assert.GreaterOrEqual(t, x, prev)
			assert.GreaterOrEqual(t, x, 0.0)
			assert.LessOrEqual(t, x, 1.0)
			prev = x
		}
	}
}

func TestParseNormalization(t *testing.T) {
	n, err := ParseNormalization("sqrt")
	require.NoError(t, err)
	assert.Equal(t, SqrtNormalization, n)

	_, err = ParseNormalization("cubic")
	assert.Error(t, err)
}

func TestTree_MarshalDOT(t *testing.T) {
	m := mat.NewSymDense(3, []float64{
		0, 2, 5,
		2, 0, 3,
		5, 3, 0,
	})

	tree, err := BuildMST(m, []float64{-10, -7.5, -3}, TreeOptions{Title: NetworkTitle("knapsack", 3, 1)})
	require.NoError(t, err)

	data, err := tree.MarshalDOT()
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "strict graph {"), out)
	assert.Contains(t, out, "labelloc=t")
	assert.Contains(t, out, "Instance: knapsack")
	assert.Contains(t, out, `style="filled, rounded"`)
	assert.Contains(t, out, `fillcolor="#007f667f"`)
	assert.Contains(t, out, "label=-7.5")
	assert.Contains(t, out, "penwidth=0.1")
	assert.Contains(t, out, "penwidth=0.3")
	assert.Contains(t, out, "0 -- 1")
	assert.NotContains(t, out, "0 -- 2")

	path := filepath.Join(t.TempDir(), "mst.dot")
	require.NoError(t, tree.WriteDOT(path))
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, written)
}
