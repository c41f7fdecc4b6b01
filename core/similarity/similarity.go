// Package similarity computes normalized string distances and clusters
// near-duplicate entity values.
package similarity

import (
	"context"

	"github.com/google/uuid"
	"github.com/siherrmann/anonymizer/model"
)

// Similarity returns the normalized edit distance between two strings as a
// score in [0, 1]: 1 - levenshtein(a, b) / max(len(a), len(b)). Two empty
// strings score 1.0. The function is symmetric and Similarity(a, a) == 1.0.
func Similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)

	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1.0
	}

	distance := levenshteinDistance(ra, rb)
	return float64(longest-distance) / float64(longest)
}

// levenshteinDistance computes the classic single-character
// insertion/deletion/substitution cost-1 edit distance by dynamic
// programming over a (len(a)+1) x (len(b)+1) table.
func levenshteinDistance(a, b []rune) int {
	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
				continue
			}
			matrix[i][j] = min(
				matrix[i-1][j-1]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j]+1,
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// ClusterByType clusters entities of the same type whose values are
// near-duplicates under the given threshold, using single linkage through a
// representative: entities
// are visited in input order, each unprocessed entity seeds a cluster of all
// other unprocessed entities scoring >= threshold against it, and every
// member is then marked processed. Entities matching no one produce no
// cluster at all — singletons are dropped, not emitted, so callers are not
// flooded with trivial one-member groups.
//
// Cost is O(n²) distance evaluations; callers are expected to keep n bounded
// (entities per document stay in the low thousands). Cancellation is checked
// once per seed entity.
func ClusterByType(ctx context.Context, entities []*model.Entity, threshold float64) ([]*model.EntityCluster, error) {
	clusters := []*model.EntityCluster{}
	processed := make(map[string]bool, len(entities))

	for _, seed := range entities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if processed[seed.ID.String()] {
			continue
		}

		var members []*model.Entity
		for _, other := range entities {
			if other.ID == seed.ID || other.Type != seed.Type || processed[other.ID.String()] {
				continue
			}
			if Similarity(seed.Value, other.Value) >= threshold {
				members = append(members, other)
			}
		}

		if len(members) == 0 {
			continue
		}

		all := append([]*model.Entity{seed}, members...)
		for _, e := range all {
			processed[e.ID.String()] = true
		}

		clusters = append(clusters, &model.EntityCluster{
			ID:             uuid.New(),
			Representative: seed,
			Entities:       all,
			Similarity:     threshold,
		})
	}

	return clusters, nil
}
