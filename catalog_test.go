package beatstore_test

import (
	"context"
	"errors"
	"testing"

	beatstore "github.com/stereohaus/beatstore"
	"github.com/stereohaus/beatstore/catalog"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/types"
)

func TestCreateBeatDefaults(t *testing.T) {
	env := newTestEnv(t)

	b := seedBeat(t, env, "Fresh", func(b *catalog.Beat) {
		b.Plays = 99
		b.Sales = 99
	})

	got, err := env.engine.GetBeat(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetBeat: %v", err)
	}
	if !got.IsAvailable {
		t.Error("new beat not available")
	}
	if got.Plays != 0 || got.Sales != 0 {
		t.Errorf("counters = (%d, %d), want zeroed", got.Plays, got.Sales)
	}
	if got.ID.IsNil() {
		t.Error("beat id not assigned")
	}
}

func TestCreateBeatValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		beat *catalog.Beat
	}{
		{"missing name", &catalog.Beat{PreviewFile: "a.mp3"}},
		{"missing preview", &catalog.Beat{Name: "X"}},
		{"wrong preview extension", &catalog.Beat{Name: "X", PreviewFile: "a.wav"}},
		{"wrong stems extension", &catalog.Beat{Name: "X", PreviewFile: "a.mp3", StemsFile: "s.mp3"}},
		{"discount out of range", &catalog.Beat{Name: "X", PreviewFile: "a.mp3", DiscountPercent: 101}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.engine.CreateBeat(ctx, tt.beat)
			var verr beatstore.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("CreateBeat = %v, want ValidationError", err)
			}
		})
	}
}

func TestListBeatsFiltering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedBeat(t, env, "Trap Anthem", func(b *catalog.Beat) { b.Genre = "Trap"; b.Mood = "Dark" })
	seedBeat(t, env, "Smooth Keys", func(b *catalog.Beat) { b.Genre = "R&B"; b.Mood = "Chill" })
	hidden := seedBeat(t, env, "Vault Only", func(b *catalog.Beat) { b.Genre = "Trap" })
	if err := env.engine.SetHidden(ctx, hidden.ID, true); err != nil {
		t.Fatalf("SetHidden: %v", err)
	}

	t.Run("DefaultExcludesHidden", func(t *testing.T) {
		beats, total, err := env.engine.ListBeats(ctx, catalog.ListOpts{})
		if err != nil {
			t.Fatalf("ListBeats: %v", err)
		}
		if total != 2 || len(beats) != 2 {
			t.Errorf("total = %d, len = %d, want 2", total, len(beats))
		}
	})

	t.Run("IncludeHidden", func(t *testing.T) {
		_, total, err := env.engine.ListBeats(ctx, catalog.ListOpts{IncludeHidden: true})
		if err != nil {
			t.Fatalf("ListBeats: %v", err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
	})

	t.Run("GenreFilter", func(t *testing.T) {
		beats, _, err := env.engine.ListBeats(ctx, catalog.ListOpts{Genre: "Trap"})
		if err != nil {
			t.Fatalf("ListBeats: %v", err)
		}
		if len(beats) != 1 || beats[0].Name != "Trap Anthem" {
			t.Errorf("genre filter = %v", beatNames(beats))
		}
	})

	t.Run("SearchOverMood", func(t *testing.T) {
		beats, _, err := env.engine.ListBeats(ctx, catalog.ListOpts{Search: "chill"})
		if err != nil {
			t.Fatalf("ListBeats: %v", err)
		}
		if len(beats) != 1 || beats[0].Name != "Smooth Keys" {
			t.Errorf("search = %v", beatNames(beats))
		}
	})
}

func TestListBeatsSorting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cheap := seedBeat(t, env, "Cheap", func(b *catalog.Beat) { b.PriceBasic = types.USD(500) })
	seedBeat(t, env, "Dear", func(b *catalog.Beat) { b.PriceBasic = types.USD(5000) })
	if err := env.store.IncrementPlays(ctx, cheap.ID, 10); err != nil {
		t.Fatalf("IncrementPlays: %v", err)
	}

	t.Run("PriceLow", func(t *testing.T) {
		beats, _, err := env.engine.ListBeats(ctx, catalog.ListOpts{Sort: catalog.SortPriceLow})
		if err != nil {
			t.Fatalf("ListBeats: %v", err)
		}
		if beats[0].Name != "Cheap" {
			t.Errorf("order = %v, want Cheap first", beatNames(beats))
		}
	})

	t.Run("PriceHigh", func(t *testing.T) {
		beats, _, err := env.engine.ListBeats(ctx, catalog.ListOpts{Sort: catalog.SortPriceHigh})
		if err != nil {
			t.Fatalf("ListBeats: %v", err)
		}
		if beats[0].Name != "Dear" {
			t.Errorf("order = %v, want Dear first", beatNames(beats))
		}
	})

	t.Run("Popular", func(t *testing.T) {
		beats, _, err := env.engine.ListBeats(ctx, catalog.ListOpts{Sort: catalog.SortPopular})
		if err != nil {
			t.Fatalf("ListBeats: %v", err)
		}
		if beats[0].Name != "Cheap" {
			t.Errorf("order = %v, want the played beat first", beatNames(beats))
		}
	})
}

func TestSetDiscountBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := seedBeat(t, env, "Bounded")

	for _, pct := range []int{-1, 101} {
		err := env.engine.SetDiscount(ctx, b.ID, pct)
		var verr beatstore.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("SetDiscount(%d) = %v, want ValidationError", pct, err)
		}
	}

	if err := env.engine.SetDiscount(ctx, b.ID, 100); err != nil {
		t.Fatalf("SetDiscount(100): %v", err)
	}
	price, err := env.engine.FinalPrice(ctx, b.ID, license.TierBasic)
	if err != nil {
		t.Fatalf("FinalPrice: %v", err)
	}
	if !price.IsZero() {
		t.Errorf("price at 100%% off = %v, want zero", price)
	}

	// Zero clears the discount.
	if err := env.engine.SetDiscount(ctx, b.ID, 0); err != nil {
		t.Fatalf("SetDiscount(0): %v", err)
	}
	price, err = env.engine.FinalPrice(ctx, b.ID, license.TierBasic)
	if err != nil {
		t.Fatalf("FinalPrice: %v", err)
	}
	if !price.Equal(types.USD(1000)) {
		t.Errorf("price after clearing = %v, want $10.00", price)
	}
}

func TestUpdateBeatPreservesExclusiveState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := seedBeat(t, env, "Locked In")
	if err := env.store.MarkSoldExclusive(ctx, b.ID, "owner@example.com", b.CreatedAt); err != nil {
		t.Fatalf("MarkSoldExclusive: %v", err)
	}

	// An edit that tries to restore availability cannot undo the sale.
	edited := *b
	edited.IsAvailable = true
	edited.ExclusiveBuyer = ""
	edited.ExclusiveSoldAt = nil
	edited.Name = "Locked In (v2)"
	if err := env.engine.UpdateBeat(ctx, &edited); err != nil {
		t.Fatalf("UpdateBeat: %v", err)
	}

	got, err := env.engine.GetBeat(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBeat: %v", err)
	}
	if got.IsAvailable {
		t.Error("edit restored availability of an exclusively sold beat")
	}
	if got.ExclusiveBuyer != "owner@example.com" {
		t.Errorf("ExclusiveBuyer = %q, want preserved", got.ExclusiveBuyer)
	}
	if got.Name != "Locked In (v2)" {
		t.Errorf("Name = %q, edit of plain fields should apply", got.Name)
	}
}

func TestGenres(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	g, err := env.engine.AddGenre(ctx, "  lo-fi hip hop ")
	if err != nil {
		t.Fatalf("AddGenre: %v", err)
	}
	if g.Name != "Lo-fi Hip Hop" {
		t.Errorf("normalized name = %q, want %q", g.Name, "Lo-fi Hip Hop")
	}

	// Case-insensitive duplicate.
	if _, err := env.engine.AddGenre(ctx, "LO-FI HIP HOP"); !errors.Is(err, beatstore.ErrGenreExists) {
		t.Errorf("duplicate AddGenre = %v, want ErrGenreExists", err)
	}

	genres, err := env.engine.ListGenres(ctx)
	if err != nil {
		t.Fatalf("ListGenres: %v", err)
	}
	if len(genres) != 1 {
		t.Errorf("genres = %d, want 1", len(genres))
	}

	if err := env.engine.DeleteGenre(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGenre: %v", err)
	}
	genres, _ = env.engine.ListGenres(ctx)
	if len(genres) != 0 {
		t.Errorf("genres after delete = %d, want 0", len(genres))
	}
}

func beatNames(beats []*catalog.Beat) []string {
	names := make([]string, len(beats))
	for i, b := range beats {
		names[i] = b.Name
	}
	return names
}
