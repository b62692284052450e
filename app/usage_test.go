package app

import (
	"testing"
	"time"

	"github.com/klove-dev/fadeodds/app/models"
)

func TestDayKeyUTC(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want string
	}{
		{"utc noon", time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC), "2025-03-14"},
		{"utc midnight", time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), "2025-03-14"},
		{
			"west of greenwich late evening",
			time.Date(2025, time.March, 14, 22, 30, 0, 0, time.FixedZone("PDT", -7*3600)),
			"2025-03-15",
		},
		{
			"east of greenwich early morning",
			time.Date(2025, time.March, 15, 1, 30, 0, 0, time.FixedZone("JST", 9*3600)),
			"2025-03-14",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := dayKeyUTC(tc.in); got != tc.want {
				t.Fatalf("dayKeyUTC(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestLimitsForTier(t *testing.T) {
	if got := limitsForTier(models.DefaultTierLimits, models.TierBasic); got.Analyses != 3 || got.Questions != 15 {
		t.Fatalf("basic limits = %+v", got)
	}
	if got := limitsForTier(models.DefaultTierLimits, models.TierUnlimited); got.Analyses != models.UnlimitedQuota {
		t.Fatalf("unlimited limits = %+v", got)
	}
	if got := limitsForTier(models.DefaultTierLimits, models.Tier("platinum")); got != (models.TierLimits{}) {
		t.Fatalf("unknown tier should map to zero quota, got %+v", got)
	}
	if got := limitsForTier(nil, models.TierStandard); got != (models.TierLimits{}) {
		t.Fatalf("nil table should map to zero quota, got %+v", got)
	}
}

func TestQuotaExceeded(t *testing.T) {
	cases := []struct {
		name  string
		used  int
		limit int
		want  bool
	}{
		{"below cap", 2, 3, false},
		{"at cap", 3, 3, true},
		{"above cap", 4, 3, true},
		{"zero cap", 0, 0, true},
		{"unlimited with heavy use", 100000, models.UnlimitedQuota, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := quotaExceeded(tc.used, tc.limit); got != tc.want {
				t.Fatalf("quotaExceeded(%d, %d) = %v, want %v", tc.used, tc.limit, got, tc.want)
			}
		})
	}
}
