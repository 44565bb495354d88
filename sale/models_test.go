package sale

import (
	"testing"

	"github.com/stereohaus/beatstore/license"
)

func TestBestTier(t *testing.T) {
	tests := []struct {
		name   string
		sales  []*Sale
		want   license.Tier
		wantOK bool
	}{
		{
			name:   "no records means no entitlement",
			sales:  nil,
			want:   "",
			wantOK: false,
		},
		{
			name:   "single basic",
			sales:  []*Sale{{Tier: license.TierBasic, Status: StatusSucceeded}},
			want:   license.TierBasic,
			wantOK: true,
		},
		{
			name: "max rank wins",
			sales: []*Sale{
				{Tier: license.TierBasic, Status: StatusSucceeded},
				{Tier: license.TierExclusive, Status: StatusSucceeded},
				{Tier: license.TierPremium, Status: StatusSucceeded},
			},
			want:   license.TierExclusive,
			wantOK: true,
		},
		{
			name: "legacy record with empty status counts",
			sales: []*Sale{
				{Tier: license.TierPremium, Status: ""},
			},
			want:   license.TierPremium,
			wantOK: true,
		},
		{
			name: "non-succeeded status ignored",
			sales: []*Sale{
				{Tier: license.TierExclusive, Status: Status("failed")},
				{Tier: license.TierBasic, Status: StatusSucceeded},
			},
			want:   license.TierBasic,
			wantOK: true,
		},
		{
			name: "only non-succeeded records means no entitlement",
			sales: []*Sale{
				{Tier: license.TierExclusive, Status: Status("failed")},
			},
			want:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestTier(tt.sales)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("BestTier = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBestTierMonotonic(t *testing.T) {
	sales := []*Sale{{Tier: license.TierBasic, Status: StatusSucceeded}}
	before, _ := BestTier(sales)

	sales = append(sales, &Sale{Tier: license.TierPremium, Status: StatusSucceeded})
	after, _ := BestTier(sales)

	if after.Rank() < before.Rank() {
		t.Errorf("adding a higher-tier sale decreased the resolved tier: %q -> %q", before, after)
	}
}
