// Package license defines the license tiers a beat can be sold under and
// the file access each tier grants.
package license

import (
	"fmt"
	"strings"
)

// Tier is a license level. Tiers are strictly ordered: a higher tier grants
// everything a lower tier does.
type Tier string

const (
	TierBasic     Tier = "basic"
	TierPremium   Tier = "premium"
	TierExclusive Tier = "exclusive"
)

// Rank returns the ordering position of the tier. Unknown tiers rank zero,
// below every valid tier.
func (t Tier) Rank() int {
	switch t {
	case TierBasic:
		return 1
	case TierPremium:
		return 2
	case TierExclusive:
		return 3
	default:
		return 0
	}
}

func (t Tier) Valid() bool {
	return t.Rank() > 0
}

// AtLeast reports whether t grants everything other does.
func (t Tier) AtLeast(other Tier) bool {
	return t.Rank() >= other.Rank()
}

func (t Tier) String() string {
	return string(t)
}

// DisplayName returns the Spanish-facing tier name used on contracts and
// storefront copy.
func (t Tier) DisplayName() string {
	switch t {
	case TierBasic:
		return "Basica"
	case TierPremium:
		return "Premium"
	case TierExclusive:
		return "Exclusiva"
	default:
		return string(t)
	}
}

// ParseTier accepts canonical tier names plus the Spanish aliases historical
// sale records were written with.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic", "basica", "básica":
		return TierBasic, nil
	case "premium":
		return TierPremium, nil
	case "exclusive", "exclusiva":
		return TierExclusive, nil
	case "":
		return "", fmt.Errorf("license: empty tier")
	default:
		return "", fmt.Errorf("license: unknown tier %q", s)
	}
}

// Tiers lists all valid tiers in ascending order.
func Tiers() []Tier {
	return []Tier{TierBasic, TierPremium, TierExclusive}
}

// BestTier returns the highest-ranked tier in the slice, or "" when the
// slice holds no valid tier.
func BestTier(tiers []Tier) Tier {
	var best Tier
	for _, t := range tiers {
		if t.Rank() > best.Rank() {
			best = t
		}
	}
	return best
}

// FileClass identifies a category of deliverable attached to a beat.
type FileClass string

const (
	FilePreview  FileClass = "preview"  // tagged mp3, public
	FileLossless FileClass = "lossless" // untagged wav master
	FileStems    FileClass = "stems"    // track-out archive
	FileContract FileClass = "contract" // license agreement pdf
	FileCover    FileClass = "cover"    // artwork, public
)

func (c FileClass) Valid() bool {
	switch c {
	case FilePreview, FileLossless, FileStems, FileContract, FileCover:
		return true
	}
	return false
}

// Public reports whether the file class is served without any entitlement.
func (c FileClass) Public() bool {
	return c == FilePreview || c == FileCover
}

// RequiredTier returns the minimum tier needed to download the file class.
// Public classes require no tier and return "".
func (c FileClass) RequiredTier() Tier {
	switch c {
	case FileLossless:
		return TierPremium
	case FileStems:
		return TierExclusive
	default:
		return ""
	}
}

// Grants reports whether owning tier t permits downloading file class c.
// Contracts are handled separately: a buyer may only fetch the contract for
// a tier at or below the one they own, see CoversContract.
func (t Tier) Grants(c FileClass) bool {
	if c.Public() {
		return true
	}
	if c == FileContract {
		return t.Valid()
	}
	req := c.RequiredTier()
	if req == "" {
		return false
	}
	return t.AtLeast(req)
}

// CoversContract reports whether a buyer holding tier t may download the
// contract document for tier contract. Buyers receive the agreements for
// their own tier and every tier beneath it.
func (t Tier) CoversContract(contract Tier) bool {
	return t.Valid() && contract.Valid() && t.AtLeast(contract)
}

// Language selects which localization of a contract to deliver.
type Language string

const (
	LangSpanish Language = "es"
	LangEnglish Language = "en"
)

// ParseLanguage defaults to Spanish for unrecognized values, matching the
// storefront's primary market.
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "eng", "english":
		return LangEnglish
	default:
		return LangSpanish
	}
}

// Suffix returns the short code appended to contract download names.
func (l Language) Suffix() string {
	if l == LangEnglish {
		return "ENG"
	}
	return "ESP"
}
