package catalog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/types"
)

// Beat is a catalog product. Each beat carries one price per license tier
// and the filenames of its stored assets. Lossless and stems assets are
// optional; a beat without them simply cannot be sold with those
// deliverables fulfilled.
type Beat struct {
	types.Entity
	ID    id.BeatID `json:"id"`
	Name  string    `json:"name"`
	Genre string    `json:"genre"`
	BPM   int       `json:"bpm"`
	Key   string    `json:"key"`
	Mood  string    `json:"mood"`

	PriceBasic     types.Money `json:"price_basic"`
	PricePremium   types.Money `json:"price_premium"`
	PriceExclusive types.Money `json:"price_exclusive"`

	PreviewFile  string `json:"preview_file"`
	CoverFile    string `json:"cover_file"`
	LosslessFile string `json:"lossless_file,omitempty"`
	StemsFile    string `json:"stems_file,omitempty"`

	Plays int64 `json:"plays"`
	Sales int64 `json:"sales"`

	IsAvailable     bool `json:"is_available"`
	IsLeavingSoon   bool `json:"is_leaving_soon"`
	IsHidden        bool `json:"is_hidden"`
	DiscountPercent int  `json:"discount_percent,omitempty"`

	ExclusiveBuyer  string     `json:"exclusive_buyer,omitempty"`
	ExclusiveSoldAt *time.Time `json:"exclusive_sold_at,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// Price returns the undiscounted price for a tier.
func (b *Beat) Price(tier license.Tier) types.Money {
	switch tier {
	case license.TierBasic:
		return b.PriceBasic
	case license.TierPremium:
		return b.PricePremium
	case license.TierExclusive:
		return b.PriceExclusive
	default:
		return types.Money{}
	}
}

// FinalPrice returns the tier price with the beat's live discount applied.
// The discount is always recomputed from the stored record; a client-supplied
// amount is only ever the pre-discount base.
func (b *Beat) FinalPrice(tier license.Tier) types.Money {
	p := b.Price(tier)
	if b.DiscountPercent <= 0 {
		return p
	}
	return p.PercentOff(b.DiscountPercent)
}

// FileFor returns the stored filename for a file class, or "" when the beat
// carries no asset of that class.
func (b *Beat) FileFor(class license.FileClass) string {
	switch class {
	case license.FilePreview:
		return b.PreviewFile
	case license.FileCover:
		return b.CoverFile
	case license.FileLossless:
		return b.LosslessFile
	case license.FileStems:
		return b.StemsFile
	default:
		return ""
	}
}

// SoldExclusively reports whether the beat has been bought under an
// exclusive license. Once true this never reverts.
func (b *Beat) SoldExclusively() bool {
	return b.ExclusiveBuyer != ""
}

// Accepted asset extensions per file class.
var acceptedExtensions = map[license.FileClass][]string{
	license.FilePreview:  {".mp3"},
	license.FileCover:    {".png", ".jpg", ".jpeg", ".webp"},
	license.FileLossless: {".wav"},
	license.FileStems:    {".zip", ".rar"},
}

// ValidateFilename checks an asset filename against the accepted extension
// set for its class.
func ValidateFilename(class license.FileClass, name string) error {
	exts, ok := acceptedExtensions[class]
	if !ok {
		return fmt.Errorf("catalog: file class %q carries no uploadable asset", class)
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return nil
		}
	}
	return fmt.Errorf("catalog: %q is not an accepted %s file (want %s)",
		name, class, strings.Join(exts, ", "))
}

// Validate checks the invariants a beat must satisfy before it is stored.
func (b *Beat) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("catalog: beat name is required")
	}
	if b.PreviewFile == "" {
		return fmt.Errorf("catalog: preview file is required")
	}
	if err := ValidateFilename(license.FilePreview, b.PreviewFile); err != nil {
		return err
	}
	if b.CoverFile != "" {
		if err := ValidateFilename(license.FileCover, b.CoverFile); err != nil {
			return err
		}
	}
	if b.LosslessFile != "" {
		if err := ValidateFilename(license.FileLossless, b.LosslessFile); err != nil {
			return err
		}
	}
	if b.StemsFile != "" {
		if err := ValidateFilename(license.FileStems, b.StemsFile); err != nil {
			return err
		}
	}
	if b.DiscountPercent < 0 || b.DiscountPercent > 100 {
		return fmt.Errorf("catalog: discount percent %d out of range [0,100]", b.DiscountPercent)
	}
	return nil
}

// Genre is a catalog navigation label. Names are stored title-cased and
// deduplicated case-insensitively.
type Genre struct {
	types.Entity
	ID   id.GenreID `json:"id"`
	Name string     `json:"name"`
}

// NormalizeGenreName trims and title-cases a genre name for storage.
func NormalizeGenreName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	words := strings.Fields(strings.ToLower(name))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
