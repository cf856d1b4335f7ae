package assign

import (
	"math/rand"
	"strings"
	"time"
)

// Assigner selects a reviewer for a freshly uploaded document. Selection is
// uniform pseudo-random over the candidate pool minus the uploader; it does
// not need to be cryptographically strong.
type Assigner struct {
	rand *rand.Rand
}

// Option customises the Assigner.
type Option func(*Assigner)

// WithRand injects a seeded random source, primarily for deterministic tests.
func WithRand(r *rand.Rand) Option {
	return func(a *Assigner) {
		if r != nil {
			a.rand = r
		}
	}
}

// New constructs an Assigner with a time-seeded random source.
func New(opts ...Option) *Assigner {
	assigner := &Assigner{}
	for _, opt := range opts {
		opt(assigner)
	}

	if assigner.rand == nil {
		assigner.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return assigner
}

// Assign picks one reviewer from pool, never the uploader. The second return
// value is false when no candidate remains after excluding the uploader.
func (a *Assigner) Assign(uploaderID string, pool []string) (string, bool) {
	uploaderID = strings.TrimSpace(uploaderID)

	seen := make(map[string]struct{}, len(pool))
	candidates := make([]string, 0, len(pool))
	for _, id := range pool {
		id = strings.TrimSpace(id)
		if id == "" || id == uploaderID {
			continue
		}
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		candidates = append(candidates, id)
	}

	if len(candidates) == 0 {
		return "", false
	}

	return candidates[a.rand.Intn(len(candidates))], true
}
