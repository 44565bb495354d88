package license

import "testing"

func TestTierRankOrdering(t *testing.T) {
	if !(TierBasic.Rank() < TierPremium.Rank() && TierPremium.Rank() < TierExclusive.Rank()) {
		t.Fatal("tiers are not strictly ordered")
	}
	if Tier("gold").Rank() != 0 {
		t.Error("unknown tier should rank zero")
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		input   string
		want    Tier
		wantErr bool
	}{
		{"basic", TierBasic, false},
		{"basica", TierBasic, false},
		{"básica", TierBasic, false},
		{"Premium", TierPremium, false},
		{"exclusive", TierExclusive, false},
		{"Exclusiva", TierExclusive, false},
		{"  exclusiva  ", TierExclusive, false},
		{"", "", true},
		{"gold", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTier(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBestTier(t *testing.T) {
	tests := []struct {
		name  string
		tiers []Tier
		want  Tier
	}{
		{"empty", nil, ""},
		{"single", []Tier{TierBasic}, TierBasic},
		{"mixed", []Tier{TierBasic, TierExclusive, TierPremium}, TierExclusive},
		{"invalid ignored", []Tier{Tier("gold"), TierPremium}, TierPremium},
		{"all invalid", []Tier{Tier("gold")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestTier(tt.tiers); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGrants(t *testing.T) {
	tests := []struct {
		name  string
		tier  Tier
		class FileClass
		want  bool
	}{
		{"basic gets preview", TierBasic, FilePreview, true},
		{"basic gets cover", TierBasic, FileCover, true},
		{"basic denied lossless", TierBasic, FileLossless, false},
		{"basic denied stems", TierBasic, FileStems, false},
		{"premium gets lossless", TierPremium, FileLossless, true},
		{"premium denied stems", TierPremium, FileStems, false},
		{"exclusive gets lossless", TierExclusive, FileLossless, true},
		{"exclusive gets stems", TierExclusive, FileStems, true},
		{"no tier still gets preview", Tier(""), FilePreview, true},
		{"no tier denied lossless", Tier(""), FileLossless, false},
		{"no tier denied contract", Tier(""), FileContract, false},
		{"basic gets own contract", TierBasic, FileContract, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tier.Grants(tt.class); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoversContract(t *testing.T) {
	tests := []struct {
		name     string
		owned    Tier
		contract Tier
		want     bool
	}{
		{"premium covers basic", TierPremium, TierBasic, true},
		{"premium covers premium", TierPremium, TierPremium, true},
		{"premium does not cover exclusive", TierPremium, TierExclusive, false},
		{"exclusive covers everything", TierExclusive, TierBasic, true},
		{"no tier covers nothing", Tier(""), TierBasic, false},
		{"invalid contract never covered", TierExclusive, Tier("gold"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.owned.CoversContract(tt.contract); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  Language
	}{
		{"en", LangEnglish},
		{"English", LangEnglish},
		{"es", LangSpanish},
		{"español", LangSpanish},
		{"", LangSpanish},
		{"fr", LangSpanish},
	}

	for _, tt := range tests {
		if got := ParseLanguage(tt.input); got != tt.want {
			t.Errorf("ParseLanguage(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLanguageSuffix(t *testing.T) {
	if LangSpanish.Suffix() != "ESP" || LangEnglish.Suffix() != "ENG" {
		t.Error("language suffixes mismatch")
	}
}
