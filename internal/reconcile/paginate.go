package reconcile

import (
	"context"
	"log/slog"

	"github.com/vmunix/synctower/internal/catalog"
)

// PagesFor returns how many full pages hold n items.
func PagesFor(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + catalog.PageSize - 1) / catalog.PageSize
}

// Paginator collects pages after the first until a target is covered.
type Paginator struct {
	source Source
	log    *slog.Logger
}

// NewPaginator creates a paginator reading from source.
func NewPaginator(source Source, log *slog.Logger) *Paginator {
	if log == nil {
		log = slog.Default()
	}
	return &Paginator{source: source, log: log}
}

// Fetch requests pages 2 through PagesFor(want)+1 and returns their items in
// page order along with the number of pages that failed. The extra page
// absorbs drift in the catalog's page size. Failed pages are skipped; their
// items are picked up by a later run.
func (p *Paginator) Fetch(ctx context.Context, category catalog.Category, want int) ([]catalog.Item, int) {
	pages := PagesFor(want)
	if pages == 0 {
		return nil, 0
	}

	last := pages + 1
	p.log.Info("fetching additional pages", "category", category, "pages", pages, "from", 2, "to", last)

	var items []catalog.Item
	failed := 0
	for page := 2; page <= last; page++ {
		if ctx.Err() != nil {
			failed += last - page + 1
			p.log.Warn("pagination canceled", "category", category, "page", page, "error", ctx.Err())
			break
		}
		result, err := p.source.FetchPage(ctx, category, page)
		if err != nil {
			failed++
			p.log.Warn("skipping page", "category", category, "page", page, "error", err)
			continue
		}
		items = append(items, result.Items...)
	}
	return items, failed
}
