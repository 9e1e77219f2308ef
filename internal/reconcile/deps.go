// Package reconcile brings the mirror store up to date with the remote catalog.
package reconcile

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . Source,Mirror

import (
	"context"

	"github.com/vmunix/synctower/internal/catalog"
	"github.com/vmunix/synctower/internal/mirror"
)

// Source lists catalog pages. Implemented by *catalog.Client.
type Source interface {
	FetchPage(ctx context.Context, category catalog.Category, page int) (*catalog.Page, error)
}

// Mirror reads and writes the destination store. Implemented by *mirror.Client.
type Mirror interface {
	ReadCounts(ctx context.Context) (*mirror.Counts, error)
	FilterExisting(ctx context.Context, category catalog.Category, ids []int64) ([]int64, error)
	Append(ctx context.Context, category catalog.Category, item catalog.Item) error
}

var (
	_ Source = (*catalog.Client)(nil)
	_ Mirror = (*mirror.Client)(nil)
)
