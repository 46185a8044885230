package projection

import (
	"math"
	"sort"

	"github.com/snowberryfield/printemps/internal/solution"
)

// Contribution lists the objectives of every solution in which a variable
// takes a non-zero value.
type Contribution struct {
	Key        string
	Objectives []float64
}

// Best is the lowest objective among the solutions holding the variable.
func (c Contribution) Best() float64 {
	best := math.Inf(1)
	for _, v := range c.Objectives {
		best = math.Min(best, v)
	}
	return best
}

// Contributions groups objectives by variable. Groups are ordered by their
// best objective, ties broken by key.
func Contributions(records []solution.Record) []Contribution {
	index := make(map[string]int)
	var groups []Contribution

	for _, r := range records {
		if r.Variables == nil {
			continue
		}
		r.Variables.Each(func(key string, value float64) {
			if value == 0 {
				return
			}
			i, ok := index[key]
			if !ok {
				i = len(groups)
				index[key] = i
				groups = append(groups, Contribution{Key: key})
			}
			groups[i].Objectives = append(groups[i].Objectives, r.Objective)
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		bi, bj := groups[i].Best(), groups[j].Best()
		if bi != bj {
			return bi < bj
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}
