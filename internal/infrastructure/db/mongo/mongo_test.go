package mongo

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

func TestDecimal128RoundTrip(t *testing.T) {
	for _, s := range []string{"0", "164.94", "0.01", "-12.5", "123456789.123456789"} {
		d := decimal.RequireFromString(s)
		got := fromDecimal128(toDecimal128(d))
		if !got.Equal(d) {
			t.Fatalf("round trip of %s yielded %s", s, got)
		}
	}

	if toDecimal128Ptr(nil) != nil || fromDecimal128Ptr(nil) != nil {
		t.Fatalf("nil pointers must stay nil")
	}
}

func TestProductFilter(t *testing.T) {
	f := productFilter(ports.ProductFilter{})
	if f["active"] != true || len(f) != 1 {
		t.Fatalf("default filter must only select active products, got %v", f)
	}

	f = productFilter(ports.ProductFilter{
		ProducerID:      "u-1",
		Kind:            domain.ProductCourse,
		Category:        "dev",
		Search:          "go (advanced)",
		IncludeInactive: true,
	})
	if _, ok := f["active"]; ok {
		t.Fatalf("inactive products requested, active filter must be absent")
	}
	if f["producer_id"] != "u-1" || f["kind"] != "course" || f["category"] != "dev" {
		t.Fatalf("unexpected filter %v", f)
	}
	re, ok := f["title"].(primitive.Regex)
	if !ok || re.Pattern != `go \(advanced\)` || re.Options != "i" {
		t.Fatalf("search must be an escaped case-insensitive regex, got %v", f["title"])
	}
}

func TestCouponKey(t *testing.T) {
	if couponKey("  desconto10 ") != "DESCONTO10" {
		t.Fatalf("coupon codes are keyed upper-case and trimmed")
	}
}

func TestMoneyIsEncodedAsDecimal128(t *testing.T) {
	raw, err := bson.Marshal(couponDoc{Code: "X", Discount: toDecimal128(decimal.RequireFromString("10.50"))})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	v := bson.Raw(raw).Lookup("discount")
	if v.Type != bsontype.Decimal128 {
		t.Fatalf("discount must be encoded as decimal128, got %s", v.Type)
	}
	if got := fromDecimal128(v.Decimal128()); !got.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("unexpected discount %s", got)
	}
}
