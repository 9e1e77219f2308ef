package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vmunix/synctower/internal/catalog"
)

// Filter narrows fetched items to the ones the mirror still needs.
type Filter struct {
	mirror Mirror
	log    *slog.Logger
}

// NewFilter creates a filter backed by mirror.
func NewFilter(mirror Mirror, log *slog.Logger) *Filter {
	if log == nil {
		log = slog.Default()
	}
	return &Filter{mirror: mirror, log: log}
}

// Apply checks the first syncDiff items against the mirror and returns those it
// reports as needing sync, in listing order. Items beyond syncDiff are
// never checked. A failed check returns no items.
func (f *Filter) Apply(ctx context.Context, category catalog.Category, items []catalog.Item, syncDiff int) ([]catalog.Item, error) {
	candidates := truncate(items, syncDiff)
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(candidates))
	for i, it := range candidates {
		ids[i] = it.ID
	}

	toSync, err := f.mirror.FilterExisting(ctx, category, ids)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", category, err)
	}

	wanted := make(map[int64]struct{}, len(toSync))
	for _, id := range toSync {
		wanted[id] = struct{}{}
	}

	// Deleting on match keeps an id that appears on two pages from syncing twice.
	var out []catalog.Item
	for _, it := range candidates {
		if _, ok := wanted[it.ID]; ok {
			out = append(out, it)
			delete(wanted, it.ID)
		}
	}

	f.log.Info("filtered candidates", "category", category, "candidates", len(candidates), "to_sync", len(out))
	return out, nil
}

func truncate(items []catalog.Item, n int) []catalog.Item {
	if n <= 0 {
		return nil
	}
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
