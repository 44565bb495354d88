package catalog

import (
	"context"
	"time"

	"github.com/stereohaus/beatstore/id"
)

// Sort orders catalog listings. Every sort is descending except SortPriceLow.
type Sort string

const (
	SortRecent    Sort = "recent"
	SortPopular   Sort = "popular"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
)

// ListOpts filters and pages a catalog listing. Hidden and unavailable
// beats are excluded unless IncludeHidden is set; a beat remains
// retrievable by id regardless.
type ListOpts struct {
	Genre         string
	Search        string // case-insensitive substring over name, genre, mood
	Sort          Sort
	Limit         int
	Skip          int
	IncludeHidden bool
}

type Store interface {
	Create(ctx context.Context, b *Beat) error
	Get(ctx context.Context, beatID id.BeatID) (*Beat, error)
	List(ctx context.Context, opts ListOpts) ([]*Beat, int64, error)
	Update(ctx context.Context, b *Beat) error
	Delete(ctx context.Context, beatID id.BeatID) error

	IncrementPlays(ctx context.Context, beatID id.BeatID, delta int64) error
	IncrementSales(ctx context.Context, beatID id.BeatID, delta int64) error
	SetDiscount(ctx context.Context, beatID id.BeatID, percent int) error
	SetLeavingSoon(ctx context.Context, beatID id.BeatID, leaving bool) error
	SetHidden(ctx context.Context, beatID id.BeatID, hidden bool) error
	MarkSoldExclusive(ctx context.Context, beatID id.BeatID, buyerEmail string, soldAt time.Time) error

	ListGenres(ctx context.Context) ([]*Genre, error)
	AddGenre(ctx context.Context, g *Genre) error
	DeleteGenre(ctx context.Context, genreID id.GenreID) error
}
