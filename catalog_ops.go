package beatstore

import (
	"context"

	"github.com/stereohaus/beatstore/blob"
	"github.com/stereohaus/beatstore/catalog"
	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/types"
)

// ──────────────────────────────────────────────────
// Catalog Management
// ──────────────────────────────────────────────────

// CreateBeat adds a beat to the catalog. New beats start available with
// zeroed counters.
func (e *Engine) CreateBeat(ctx context.Context, b *catalog.Beat) error {
	if err := b.Validate(); err != nil {
		return ValidationError{Field: "beat", Message: err.Error()}
	}

	if b.ID.IsNil() {
		b.ID = id.NewBeatID()
	}
	b.Entity = types.NewEntity()
	b.IsAvailable = true
	b.Plays = 0
	b.Sales = 0

	if err := e.store.CreateBeat(ctx, b); err != nil {
		return err
	}

	e.plugins.EmitBeatCreated(ctx, b)
	return nil
}

// GetBeat retrieves a beat by ID. Hidden and unavailable beats remain
// retrievable here; only listings exclude them.
func (e *Engine) GetBeat(ctx context.Context, beatID id.BeatID) (*catalog.Beat, error) {
	return e.store.GetBeat(ctx, beatID)
}

// ListBeats returns the filtered, sorted catalog page and the total match
// count.
func (e *Engine) ListBeats(ctx context.Context, opts catalog.ListOpts) ([]*catalog.Beat, int64, error) {
	return e.store.ListBeats(ctx, opts)
}

// UpdateBeat edits a beat's fields. Availability cannot be restored this
// way once an exclusive sale has retired the beat.
func (e *Engine) UpdateBeat(ctx context.Context, b *catalog.Beat) error {
	if err := b.Validate(); err != nil {
		return ValidationError{Field: "beat", Message: err.Error()}
	}

	old, err := e.store.GetBeat(ctx, b.ID)
	if err != nil {
		return err
	}
	if old.SoldExclusively() {
		// Carry the exclusive state forward untouched.
		b.IsAvailable = false
		b.ExclusiveBuyer = old.ExclusiveBuyer
		b.ExclusiveSoldAt = old.ExclusiveSoldAt
	}
	b.Touch()

	if err := e.store.UpdateBeat(ctx, b); err != nil {
		return err
	}

	e.plugins.EmitBeatUpdated(ctx, old, b)
	return nil
}

// DeleteBeat removes a beat and its stored assets.
func (e *Engine) DeleteBeat(ctx context.Context, beatID id.BeatID) error {
	b, err := e.store.GetBeat(ctx, beatID)
	if err != nil {
		return err
	}

	if err := e.store.DeleteBeat(ctx, beatID); err != nil {
		return err
	}

	if e.blobs != nil {
		assets := []struct {
			kind blob.Kind
			name string
		}{
			{blob.KindPreview, b.PreviewFile},
			{blob.KindCover, b.CoverFile},
			{blob.KindLossless, b.LosslessFile},
			{blob.KindStems, b.StemsFile},
		}
		for _, a := range assets {
			if a.name == "" {
				continue
			}
			if err := e.blobs.Delete(ctx, a.kind, a.name); err != nil {
				e.logger.Warn("failed to delete beat asset",
					"beat_id", beatID.String(),
					"file", a.name,
					"error", err,
				)
			}
		}
	}

	e.plugins.EmitBeatDeleted(ctx, beatID.String())
	return nil
}

// SetDiscount applies a discount percentage to a beat. Zero clears the
// discount; values outside [0,100] are rejected.
func (e *Engine) SetDiscount(ctx context.Context, beatID id.BeatID, percent int) error {
	if percent < 0 || percent > 100 {
		return ValidationError{Field: "discount_percent", Message: "must be in [0,100]"}
	}
	return e.store.SetDiscount(ctx, beatID, percent)
}

// SetLeavingSoon toggles the leaving-soon marker.
func (e *Engine) SetLeavingSoon(ctx context.Context, beatID id.BeatID, leaving bool) error {
	return e.store.SetLeavingSoon(ctx, beatID, leaving)
}

// SetHidden toggles a beat out of (or back into) the public listing.
func (e *Engine) SetHidden(ctx context.Context, beatID id.BeatID, hidden bool) error {
	return e.store.SetHidden(ctx, beatID, hidden)
}

// FinalPrice returns the live discounted price of a beat for a tier.
func (e *Engine) FinalPrice(ctx context.Context, beatID id.BeatID, tier license.Tier) (types.Money, error) {
	b, err := e.store.GetBeat(ctx, beatID)
	if err != nil {
		return types.Money{}, err
	}
	if !tier.Valid() {
		return types.Money{}, ErrInvalidTier
	}
	return b.FinalPrice(tier), nil
}

// ──────────────────────────────────────────────────
// Genres
// ──────────────────────────────────────────────────

// ListGenres returns all genres, name ascending.
func (e *Engine) ListGenres(ctx context.Context) ([]*catalog.Genre, error) {
	return e.store.ListGenres(ctx)
}

// AddGenre creates a genre, deduplicated case-insensitively.
func (e *Engine) AddGenre(ctx context.Context, name string) (*catalog.Genre, error) {
	normalized := catalog.NormalizeGenreName(name)
	if normalized == "" {
		return nil, ValidationError{Field: "name", Message: "genre name is required"}
	}

	g := &catalog.Genre{
		Entity: types.NewEntity(),
		ID:     id.NewGenreID(),
		Name:   normalized,
	}
	if err := e.store.AddGenre(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGenre removes a genre.
func (e *Engine) DeleteGenre(ctx context.Context, genreID id.GenreID) error {
	return e.store.DeleteGenre(ctx, genreID)
}
