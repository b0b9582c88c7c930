package completion

import (
	"context"
	"fmt"
	"math/rand"

	"courtside/internal/schema"
	"courtside/internal/storage"
)

// CompletedSet yields the identifiers a stage has already handled.
type CompletedSet interface {
	Completed(ctx context.Context) ([]string, error)
}

// Lister is satisfied by the raw payload store.
type Lister interface {
	List() ([]string, error)
}

// StoredPayloads treats every payload already on disk as complete.
type StoredPayloads struct {
	Store Lister
}

func (s StoredPayloads) Completed(ctx context.Context) ([]string, error) {
	return s.Store.List()
}

// LoadedSources treats every provenance value present in a destination
// table as complete.
type LoadedSources struct {
	Dest  storage.DestinationTable
	Table schema.Table
}

func (l LoadedSources) Completed(ctx context.Context) ([]string, error) {
	return l.Dest.CompletedSources(ctx, l.Table)
}

type Result struct {
	Candidates int
	Completed  int
	Remaining  []string
}

// Filter returns candidates minus completed, deduplicated and shuffled with
// rng. A nil rng keeps candidate order.
func Filter(candidates, completed []string, rng *rand.Rand) []string {
	done := make(map[string]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}

	remaining := filterArray(candidates, func(id string) bool {
		if _, ok := done[id]; ok {
			return false
		}
		done[id] = struct{}{}
		return true
	})

	if rng != nil {
		rng.Shuffle(len(remaining), func(i, j int) {
			remaining[i], remaining[j] = remaining[j], remaining[i]
		})
	}
	return remaining
}

// Apply reads the completed set and filters candidates against it. Failing
// to read the completed set is fatal for the stage.
func Apply(ctx context.Context, candidates []string, set CompletedSet, rng *rand.Rand) (Result, error) {
	completed, err := set.Completed(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read completed set: %w", err)
	}

	return Result{
		Candidates: len(candidates),
		Completed:  len(completed),
		Remaining:  Filter(candidates, completed, rng),
	}, nil
}

func filterArray[T any](input []T, predicate func(T) bool) []T {
	filtered := make([]T, 0, len(input))
	for _, item := range input {
		if predicate(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
