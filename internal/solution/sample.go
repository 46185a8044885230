package solution

import "math/rand"

// Sample returns up to n records chosen by shuffling a copy of records with
// rng. A nil rng leaves the order unchanged. n <= 0 keeps every record.
func Sample(records []Record, n int, rng *rand.Rand) []Record {
	out := make([]Record, len(records))
	copy(out, records)

	if rng != nil {
		rng.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
