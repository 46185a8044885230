package solution

// Deduplicate sorts records by objective and drops near-duplicates.
//
// Only records with exactly equal objectives are compared. Record i is
// dropped when some later record with the same objective lies at a distance
// strictly below epsilon. Accumulation stops after maxCount records; a
// maxCount of zero or less means no cap. The input slice is not modified.
//
// An epsilon of zero disables deduplication, leaving a sort and truncate.
func Deduplicate(records []Record, epsilon float64, maxCount int, order Order) []Record {
	sorted := Sort(records, order)
	unique := make([]Record, 0, len(sorted))

	for i := range sorted {
		if maxCount > 0 && len(unique) >= maxCount {
			break
		}

		duplicated := false
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].Objective != sorted[i].Objective {
				break
			}
			if Distance(sorted[i].Variables, sorted[j].Variables) < epsilon {
				duplicated = true
				break
			}
		}

		if !duplicated {
			unique = append(unique, sorted[i])
		}
	}

	return unique
}
