package practice

import (
	"math/rand"

	"vocabdrill/internal/models"
)

// maxDistractors is the number of wrong meanings shown next to the right one
const maxDistractors = 3

// Options builds the multiple-choice set for current: its meaning plus up to three
// distinct meanings drawn at random from the other items in pool. When the pool is
// too small fewer options are returned; wrong meanings are never invented.
// Items are told apart by meaning alone, so missing or repeated IDs do not matter.
func Options(rng *rand.Rand, pool []models.VocabularyItem, current models.VocabularyItem) []string {
	seen := map[string]bool{current.Meaning: true}
	candidates := make([]string, 0, len(pool))
	for _, item := range pool {
		if seen[item.Meaning] {
			continue
		}
		seen[item.Meaning] = true
		candidates = append(candidates, item.Meaning)
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if len(candidates) > maxDistractors {
		candidates = candidates[:maxDistractors]
	}

	options := append(candidates, current.Meaning)

	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return options
}
