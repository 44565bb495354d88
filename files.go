package beatstore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/stereohaus/beatstore/blob"
	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
)

// ──────────────────────────────────────────────────
// File gate
// ──────────────────────────────────────────────────

var classKinds = map[license.FileClass]blob.Kind{
	license.FilePreview:  blob.KindPreview,
	license.FileCover:    blob.KindCover,
	license.FileLossless: blob.KindLossless,
	license.FileStems:    blob.KindStems,
}

// FetchFile opens a beat asset for download. Gated classes require
// entitlement; denial is always ErrNotEntitled and is checked before any
// existence lookup, so an unentitled caller learns nothing about what is
// stored. Preview audio and covers are public.
func (e *Engine) FetchFile(ctx context.Context, class license.FileClass, beatID id.BeatID, buyerEmail string) (*blob.Ref, error) {
	if e.blobs == nil {
		return nil, ErrStoreNotReady
	}
	kind, ok := classKinds[class]
	if !ok {
		return nil, ErrInvalidInput
	}

	allowed, err := e.Authorize(ctx, buyerEmail, beatID, class)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotEntitled
	}

	b, err := e.store.GetBeat(ctx, beatID)
	if err != nil {
		return nil, err
	}

	name := b.FileFor(class)
	if name == "" {
		return nil, ErrFileNotFound
	}

	ref, err := e.blobs.Open(ctx, kind, name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return ref, nil
}

// FetchContract opens the license agreement PDF for a tier in the
// requested language and returns it with the client-facing download name.
// A file suffixed for the language is preferred; when none exists, any PDF
// in the tier's contract directory serves as the fallback.
func (e *Engine) FetchContract(ctx context.Context, contractTier license.Tier, lang license.Language, buyerEmail string, beatID id.BeatID) (*blob.Ref, string, error) {
	if e.blobs == nil {
		return nil, "", ErrStoreNotReady
	}
	if !contractTier.Valid() {
		return nil, "", ErrInvalidTier
	}

	allowed, err := e.AuthorizeContract(ctx, buyerEmail, beatID, contractTier)
	if err != nil {
		return nil, "", err
	}
	if !allowed {
		return nil, "", ErrNotEntitled
	}

	kind := blob.ContractKind(contractTier.String())
	files, err := e.blobs.List(ctx, kind)
	if err != nil {
		return nil, "", err
	}

	fileName := pickContractFile(files, lang)
	if fileName == "" {
		return nil, "", ErrFileNotFound
	}

	ref, err := e.blobs.Open(ctx, kind, fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrFileNotFound
		}
		return nil, "", err
	}

	// Beat name for the download filename; fall back to the id if the beat
	// is gone.
	beatName := beatID.String()
	if b, err := e.store.GetBeat(ctx, beatID); err == nil {
		beatName = b.Name
	}

	downloadName := fmt.Sprintf("Contrato_Licencia_%s_%s_%s.pdf",
		contractTier.DisplayName(), beatName, lang.Suffix())

	return ref, downloadName, nil
}

// pickContractFile chooses a PDF matching the language suffix, or the
// first PDF present when no localized file exists.
func pickContractFile(files []string, lang license.Language) string {
	var markers []string
	if lang == license.LangEnglish {
		markers = []string{"_en", "english", "ingles"}
	} else {
		markers = []string{"_es", "español", "spanish"}
	}

	for _, f := range files {
		lower := strings.ToLower(f)
		if !strings.HasSuffix(lower, ".pdf") {
			continue
		}
		for _, m := range markers {
			if strings.Contains(lower, m) {
				return f
			}
		}
	}
	for _, f := range files {
		if strings.HasSuffix(strings.ToLower(f), ".pdf") {
			return f
		}
	}
	return ""
}

// ContractInventory lists the contract PDFs on file per tier and language.
type ContractInventory struct {
	Tier  license.Tier        `json:"tier"`
	Files map[string][]string `json:"files"` // language -> filenames
}

// ListContracts inventories available contract documents across all tiers.
func (e *Engine) ListContracts(ctx context.Context) ([]ContractInventory, error) {
	if e.blobs == nil {
		return nil, ErrStoreNotReady
	}

	var out []ContractInventory
	for _, tier := range license.Tiers() {
		files, err := e.blobs.List(ctx, blob.ContractKind(tier.String()))
		if err != nil {
			return nil, err
		}

		inv := ContractInventory{Tier: tier, Files: map[string][]string{"es": {}, "en": {}, "other": {}}}
		for _, f := range files {
			lower := strings.ToLower(f)
			if !strings.HasSuffix(lower, ".pdf") {
				continue
			}
			switch {
			case strings.Contains(lower, "_es") || strings.Contains(lower, "español") || strings.Contains(lower, "spanish"):
				inv.Files["es"] = append(inv.Files["es"], f)
			case strings.Contains(lower, "_en") || strings.Contains(lower, "english") || strings.Contains(lower, "ingles"):
				inv.Files["en"] = append(inv.Files["en"], f)
			default:
				inv.Files["other"] = append(inv.Files["other"], f)
			}
		}
		out = append(out, inv)
	}
	return out, nil
}
