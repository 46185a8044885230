package solution

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sparseArchive = `{
    "version": "2.0.0",
    "name": "knapsack",
    "number_of_variables": 3,
    "number_of_constraints": 1,
    "solutions": [
        {"is_feasible": true, "objective": -10, "total_violation": 0, "variables": {"x[0]": 1, "x[2]": 1}},
        {"is_feasible": true, "objective": -7, "total_violation": 0, "variables": {"x[1]": 1}}
    ]
}`

func TestDecode_Sparse(t *testing.T) {
	set, err := Decode(strings.NewReader(sparseArchive))
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", set.Version)
	assert.Equal(t, "knapsack", set.Name)
	assert.Equal(t, 3, set.NumberOfVariables)
	assert.Equal(t, 1, set.NumberOfConstraints)
	require.Len(t, set.Solutions, 2)

	first := set.Solutions[0]
	assert.Equal(t, -10.0, first.Objective)
	assert.True(t, first.Feasible)
	assert.True(t, first.HasViolation)

	sparse, ok := first.Variables.(Sparse)
	require.True(t, ok)
	assert.Equal(t, []string{"x[0]", "x[2]"}, sparse.Keys())
	assert.Equal(t, 3.0, Distance(first.Variables, set.Solutions[1].Variables))
}

func TestDecode_Dense(t *testing.T) {
	input := `{"name": "d", "number_of_variables": 2, "number_of_constraints": 0,
		"solutions": [{"objective": 1, "variables": [1, 2]}, {"objective": 2, "variables": [0, 2]}]}`

	set, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, set.Solutions, 2)

	assert.Equal(t, Dense{1, 2}, set.Solutions[0].Variables)
	assert.False(t, set.Solutions[0].HasViolation)
	assert.True(t, set.Solutions[0].Feasible)
}

func TestDecode_RejectsMixedRepresentations(t *testing.T) {
	input := `{"solutions": [{"objective": 1, "variables": [1]}, {"objective": 2, "variables": {"x": 1}}]}`

	_, err := Decode(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrMixedRepresentation)
}

func TestDecode_RejectsRaggedDense(t *testing.T) {
	input := `{"solutions": [{"objective": 1, "variables": [1, 2]}, {"objective": 2, "variables": [1]}]}`

	_, err := Decode(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDecode_RejectsMissingVariables(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"solutions": [{"objective": 1}]}`))
	assert.Error(t, err)
}

func TestDecode_NumericVersion(t *testing.T) {
	set, err := Decode(strings.NewReader(`{"version": 1.5, "solutions": []}`))
	require.NoError(t, err)
	assert.Equal(t, "1.5", set.Version)
	assert.Empty(t, set.Solutions)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feasible.json")
	require.NoError(t, os.WriteFile(path, []byte(sparseArchive), 0644))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, set.Solutions, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSample_IsReproducible(t *testing.T) {
	var records []Record
	for i := 0; i < 20; i++ {
		records = append(records, Record{Objective: float64(i), Variables: Dense{float64(i)}})
	}

	a := Sample(records, 5, rand.New(rand.NewSource(1)))
	b := Sample(records, 5, rand.New(rand.NewSource(1)))

	assert.Len(t, a, 5)
	assert.Equal(t, Objectives(a), Objectives(b))
	assert.Equal(t, float64(0), records[0].Objective, "input must not be shuffled in place")
}

func TestSample_NilRandKeepsOrder(t *testing.T) {
	records := []Record{{Objective: 3}, {Objective: 1}, {Objective: 2}}

	assert.Equal(t, []float64{3, 1}, Objectives(Sample(records, 2, nil)))
	assert.Len(t, Sample(records, 0, nil), 3)
}
