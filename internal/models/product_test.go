package models

import "testing"

func TestEffectivePrice(t *testing.T) {
	cases := []struct {
		name          string
		price         float64
		discountPrice float64
		want          float64
	}{
		{"no discount", 999, 0, 999},
		{"discount below list", 999, 799, 799},
		{"discount above list ignored", 999, 1099, 999},
		{"discount equal to list ignored", 999, 999, 999},
	}

	for _, tc := range cases {
		p := Product{Price: tc.price, DiscountPrice: tc.discountPrice}
		if got := p.EffectivePrice(); got != tc.want {
			t.Errorf("%s: EffectivePrice() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRecalculateRating(t *testing.T) {
	p := Product{Reviews: []Review{
		{Rating: 5},
		{Rating: 4},
		{Rating: 3},
	}}

	p.RecalculateRating()
	if p.NumReviews != 3 {
		t.Fatalf("expected 3 reviews, got %d", p.NumReviews)
	}
	if p.Rating != 4 {
		t.Fatalf("expected average rating 4, got %v", p.Rating)
	}

	p.Reviews = nil
	p.RecalculateRating()
	if p.Rating != 0 || p.NumReviews != 0 {
		t.Fatalf("expected rating reset with no reviews, got %v / %d", p.Rating, p.NumReviews)
	}
}

func TestHasSize(t *testing.T) {
	p := Product{Sizes: []string{"M", "L", "Free Size"}}
	if !p.HasSize("Free Size") {
		t.Fatal("expected Free Size to be available")
	}
	if p.HasSize("XXL") {
		t.Fatal("expected XXL to be unavailable")
	}
}
