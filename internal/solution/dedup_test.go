package solution

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicate_CollapsesIdenticalPair(t *testing.T) {
	records := []Record{
		{Objective: 5, Variables: Dense{1, 0, 0}},
		{Objective: 5, Variables: Dense{1, 0, 0}},
		{Objective: 3, Variables: Dense{0, 1, 0}},
	}

	got := Deduplicate(records, 1e-5, 0, Ascending)

	assert.Len(t, got, 2)
	assert.Equal(t, 3.0, got[0].Objective)
	assert.Equal(t, 5.0, got[1].Objective)
}

func TestDeduplicate_EmptyInput(t *testing.T) {
	got := Deduplicate(nil, 1e-5, 10, Ascending)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDeduplicate_EpsilonBoundaryIsExclusive(t *testing.T) {
	records := []Record{
		{Objective: 1, Variables: Dense{0, 0}},
		{Objective: 1, Variables: Dense{0.5, 0}},
	}

	// distance is exactly 0.5
	assert.Len(t, Deduplicate(records, 0.5, 0, Ascending), 2)
	assert.Len(t, Deduplicate(records, 0.5000001, 0, Ascending), 1)
}

func TestDeduplicate_OnlyComparesEqualObjectives(t *testing.T) {
	records := []Record{
		{Objective: 1, Variables: Dense{1, 1}},
		{Objective: 2, Variables: Dense{1, 1}},
	}

	assert.Len(t, Deduplicate(records, 1e-5, 0, Ascending), 2)
}

func TestDeduplicate_Descending(t *testing.T) {
	records := []Record{
		{Objective: 1, Variables: Dense{1}},
		{Objective: 3, Variables: Dense{3}},
		{Objective: 2, Variables: Dense{2}},
	}

	got := Deduplicate(records, 1e-5, 0, Descending)
	assert.Equal(t, []float64{3, 2, 1}, Objectives(got))
}

func TestDeduplicate_DoesNotMutateInput(t *testing.T) {
	records := []Record{
		{Objective: 2, Variables: Dense{2}},
		{Objective: 1, Variables: Dense{1}},
	}

	Deduplicate(records, 1e-5, 0, Ascending)
	assert.Equal(t, []float64{2, 1}, Objectives(records))
}

func TestDeduplicate_CapAndIdempotence(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for trial := 0; trial < 50; trial++ {
		var records []Record
		for i := 0; i < 40; i++ {
			records = append(records, Record{
				Objective: float64(rng.Intn(4)),
				Variables: NewSparse(map[string]float64{
					"x": float64(rng.Intn(2)),
					"y": float64(rng.Intn(2)),
				}),
			})
		}

		maxCount := rng.Intn(10) + 1
		once := Deduplicate(records, 1e-5, maxCount, Ascending)
		assert.LessOrEqual(t, len(once), maxCount)

		uncapped := Deduplicate(records, 1e-5, 0, Ascending)
		twice := Deduplicate(uncapped, 1e-5, 0, Ascending)
		assert.Equal(t, uncapped, twice)

		for i := range uncapped {
			for j := i + 1; j < len(uncapped); j++ {
				if uncapped[i].Objective == uncapped[j].Objective {
					assert.GreaterOrEqual(t, Distance(uncapped[i].Variables, uncapped[j].Variables), 1e-5)
				}
			}
		}
	}
}

func TestDeduplicate_ZeroEpsilonOnlySortsAndTruncates(t *testing.T) {
	records := []Record{
		{Objective: 2, Variables: Dense{0}},
		{Objective: 2, Variables: Dense{0}},
		{Objective: 1, Variables: Dense{0}},
	}

	got := Deduplicate(records, 0, 2, Ascending)
	assert.Equal(t, []float64{1, 2}, Objectives(got))
}
