package aiscore

import (
	"testing"

	"github.com/dealsphere/dealsphere/internal/constants"
)

func TestFallbackVerdictThresholds(t *testing.T) {
	cases := []struct {
		discount  int
		wantScore float64
		wantType  string
		wantValid bool
	}{
		{discount: 90, wantScore: 9, wantType: constants.DealTypeTop, wantValid: true},
		{discount: 70, wantScore: 9, wantType: constants.DealTypeTop, wantValid: true},
		{discount: 69, wantScore: 7, wantType: constants.DealTypeHot, wantValid: true},
		{discount: 50, wantScore: 7, wantType: constants.DealTypeHot, wantValid: true},
		{discount: 49, wantScore: 6, wantType: constants.DealTypeHot, wantValid: true},
		{discount: 30, wantScore: 6, wantType: constants.DealTypeHot, wantValid: true},
		{discount: 29, wantScore: 5, wantType: constants.DealTypeLatest, wantValid: true},
		{discount: 10, wantScore: 5, wantType: constants.DealTypeLatest, wantValid: true},
		{discount: 9, wantScore: 5, wantType: constants.DealTypeLatest, wantValid: false},
		{discount: 0, wantScore: 5, wantType: constants.DealTypeLatest, wantValid: false},
	}

	for _, tc := range cases {
		verdict := FallbackVerdict(tc.discount, "")
		if verdict.Score != tc.wantScore {
			t.Fatalf("discount %d: score = %v, want %v", tc.discount, verdict.Score, tc.wantScore)
		}
		if verdict.DealType != tc.wantType {
			t.Fatalf("discount %d: deal type = %q, want %q", tc.discount, verdict.DealType, tc.wantType)
		}
		if verdict.IsValid != tc.wantValid {
			t.Fatalf("discount %d: valid = %v, want %v", tc.discount, verdict.IsValid, tc.wantValid)
		}
		if !verdict.Fallback {
			t.Fatalf("discount %d: expected fallback flag", tc.discount)
		}
		if len(verdict.Reasons) == 0 {
			t.Fatalf("discount %d: expected fallback reasons", tc.discount)
		}
	}
}

func TestFallbackVerdictAppendsReason(t *testing.T) {
	verdict := FallbackVerdict(60, "ai scoring unavailable")
	if len(verdict.Reasons) != 2 {
		t.Fatalf("reasons = %v, want rule reason plus context", verdict.Reasons)
	}
	if verdict.Reasons[1] != "ai scoring unavailable" {
		t.Fatalf("context reason = %q", verdict.Reasons[1])
	}
}

func TestClampScore(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{in: -3, want: 0},
		{in: 0, want: 0},
		{in: 7.2, want: 7.2},
		{in: 10, want: 10},
		{in: 14.5, want: 10},
	}
	for _, tc := range cases {
		if got := clampScore(tc.in); got != tc.want {
			t.Fatalf("clampScore(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidDealType(t *testing.T) {
	for _, dealType := range constants.DealTypes {
		if !validDealType(dealType) {
			t.Fatalf("expected %q to be valid", dealType)
		}
	}
	for _, dealType := range []string{"", "TOP", "premium", "latest "} {
		if validDealType(dealType) {
			t.Fatalf("expected %q to be invalid", dealType)
		}
	}
}
