package services

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Sample returns len(items) and min(len(items), k) elements drawn uniformly
// at random without replacement. items is not modified; the order of the
// returned sample carries no meaning.
func Sample[T any](r *rand.Rand, items []T, k int) (int, []T, error) {
	if k < 0 {
		return 0, nil, fmt.Errorf("%w: sample size %d is negative", ErrInvalidArgument, k)
	}

	total := len(items)
	n := min(total, k)
	sample := make([]T, 0, n)
	if n == 0 {
		return total, sample, nil
	}

	// Partial Fisher-Yates over indices
	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + r.IntN(total-i)
		idx[i], idx[j] = idx[j], idx[i]
		sample = append(sample, items[idx[i]])
	}

	return total, sample, nil
}

// newRequestRand returns a generator owned by a single request, seeded from
// the OS entropy source.
func newRequestRand() *rand.Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand.Read does not fail on supported platforms
		binary.LittleEndian.PutUint64(seed[:], rand.Uint64())
	}
	return rand.New(rand.NewChaCha8(seed))
}
