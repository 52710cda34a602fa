package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func validCandidateInput() DealCandidateInput {
	return DealCandidateInput{
		Title:         "Robot Vacuum X200",
		Description:   "Self-emptying robot vacuum",
		OriginalPrice: "100.00",
		SalePrice:     "40.00",
		Store:         "Amazon",
		Category:      "Electronics",
		AffiliateURL:  "https://example.com/deal/x200",
		ImageURL:      "https://example.com/img/x200.jpg",
	}
}

func TestComputeDerivedFieldsAccumulatesErrors(t *testing.T) {
	input := DealCandidateInput{
		Title:         "",
		Description:   "desc",
		OriginalPrice: "not-a-number",
		SalePrice:     "10",
		Store:         "",
		Category:      "Electronics",
		AffiliateURL:  "ftp://example.com/deal",
		ImageURL:      "https://example.com/img.jpg",
	}

	candidate, structuralErrors := ComputeDerivedFields(input)
	if candidate != nil {
		t.Fatalf("expected nil candidate on structural errors")
	}

	want := map[string]bool{
		"MissingField:title":      false,
		"MissingField:store":      false,
		"InvalidPrice":            false,
		"InvalidUrl:affiliateUrl": false,
	}
	for _, code := range structuralErrors {
		if _, ok := want[code]; ok {
			want[code] = true
		} else {
			t.Fatalf("unexpected error code %q", code)
		}
	}
	for code, seen := range want {
		if !seen {
			t.Fatalf("missing expected error code %q in %v", code, structuralErrors)
		}
	}
}

func TestComputeDerivedFieldsOptionalDescriptionAndImage(t *testing.T) {
	input := validCandidateInput()
	input.Description = ""
	input.ImageURL = ""

	candidate, structuralErrors := ComputeDerivedFields(input)
	if len(structuralErrors) != 0 {
		t.Fatalf("description/imageUrl are optional, got errors: %v", structuralErrors)
	}
	if candidate == nil {
		t.Fatalf("expected normalized candidate")
	}
	if candidate.Description != "" || candidate.ImageURL != "" {
		t.Fatalf("optional fields must stay empty, got %q / %q", candidate.Description, candidate.ImageURL)
	}
}

func TestComputeDerivedFieldsRejectsMalformedImageURL(t *testing.T) {
	input := validCandidateInput()
	input.ImageURL = "not-a-url"

	_, structuralErrors := ComputeDerivedFields(input)
	if len(structuralErrors) != 1 || structuralErrors[0] != "InvalidUrl:imageUrl" {
		t.Fatalf("errors = %v, want [InvalidUrl:imageUrl]", structuralErrors)
	}
}

func TestComputeDerivedFieldsSalePriceNotLower(t *testing.T) {
	input := validCandidateInput()
	input.SalePrice = "100.00"

	_, structuralErrors := ComputeDerivedFields(input)
	if len(structuralErrors) != 1 || structuralErrors[0] != "SalePriceNotLower" {
		t.Fatalf("errors = %v, want [SalePriceNotLower]", structuralErrors)
	}
}

func TestComputeDerivedFieldsIgnoresInputDiscount(t *testing.T) {
	input := validCandidateInput()
	input.DiscountPercentage = 5 // 提交值不可信

	candidate, structuralErrors := ComputeDerivedFields(input)
	if len(structuralErrors) != 0 {
		t.Fatalf("unexpected errors: %v", structuralErrors)
	}
	if candidate.DiscountPercentage != 60 {
		t.Fatalf("discount = %d, want recomputed 60", candidate.DiscountPercentage)
	}
}

func TestComputeDerivedFieldsRoundsDiscount(t *testing.T) {
	input := validCandidateInput()
	input.OriginalPrice = "29.99"
	input.SalePrice = "19.99"

	candidate, structuralErrors := ComputeDerivedFields(input)
	if len(structuralErrors) != 0 {
		t.Fatalf("unexpected errors: %v", structuralErrors)
	}
	if candidate.DiscountPercentage != 33 {
		t.Fatalf("discount = %d, want 33", candidate.DiscountPercentage)
	}
}

func TestComputeDiscountPercentageClamps(t *testing.T) {
	hundred := decimal.NewFromInt(100)
	if got := computeDiscountPercentage(decimal.Zero, hundred); got != 0 {
		t.Fatalf("zero original price: discount = %d, want 0", got)
	}
	if got := computeDiscountPercentage(hundred, decimal.NewFromInt(-50)); got != 100 {
		t.Fatalf("negative sale price: discount = %d, want clamped 100", got)
	}
}

func TestComputeDerivedFieldsRejectsNonPositivePrices(t *testing.T) {
	input := validCandidateInput()
	input.OriginalPrice = "0"
	input.SalePrice = "-5"

	_, structuralErrors := ComputeDerivedFields(input)
	if len(structuralErrors) != 1 || structuralErrors[0] != "InvalidPrice" {
		t.Fatalf("errors = %v, want single InvalidPrice", structuralErrors)
	}
}
