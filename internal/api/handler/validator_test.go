package handler

import (
	"strings"
	"testing"
)

func TestValidator_Money(t *testing.T) {
	v := NewValidator()
	cases := []struct {
		price string
		ok    bool
	}{
		{"149.90", true},
		{"10", true},
		{"0.01", true},
		{"0", false},
		{"-5.00", false},
		{"9.999", false},
		{"abc", false},
	}
	for _, tc := range cases {
		req := createProductRequest{Title: "Course", Kind: "course", Price: tc.price}
		err := v.Validate(&req)
		if tc.ok && err != nil {
			t.Fatalf("price %q: unexpected error %v", tc.price, err)
		}
		if !tc.ok && (err == nil || !strings.Contains(err.Error(), "price must be a positive amount")) {
			t.Fatalf("price %q: expected a money error, got %v", tc.price, err)
		}
	}
}

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	err := NewValidator().Validate(&placeOrderRequest{
		ProductID:     "p-1",
		PaymentMethod: "pix",
		Billing:       billingRequest{Name: "Ana", Email: "ana@example.com"},
	})
	if err == nil {
		t.Fatalf("expected billing errors")
	}
	if !strings.Contains(err.Error(), "postal_code is required") {
		t.Fatalf("expected json field names in %q", err.Error())
	}
}
