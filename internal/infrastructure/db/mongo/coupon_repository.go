package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clikenova/storefront/internal/core/domain"
)

const collectionCoupons = "coupons"

// CouponRepository keys coupons by their upper-cased code.
type CouponRepository struct {
	col *mongo.Collection
}

func NewCouponRepository(db *mongo.Database) *CouponRepository {
	return &CouponRepository{col: db.Collection(collectionCoupons)}
}

type couponDoc struct {
	Code      string               `bson:"_id"`
	Discount  primitive.Decimal128 `bson:"discount"`
	Kind      string               `bson:"kind"`
	Active    bool                 `bson:"active"`
	ExpiresAt *time.Time           `bson:"expires_at,omitempty"`
}

func couponKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*domain.CouponRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc couponDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": couponKey(code)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCouponRejected
		}
		return nil, fmt.Errorf("find coupon: %w", err)
	}

	return &domain.CouponRecord{
		Coupon: domain.Coupon{
			Code:     doc.Code,
			Discount: fromDecimal128(doc.Discount),
			Kind:     domain.DiscountKind(doc.Kind),
		},
		Active:    doc.Active,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

func (r *CouponRepository) Upsert(ctx context.Context, c *domain.CouponRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := couponDoc{
		Code:      couponKey(c.Code),
		Discount:  toDecimal128(c.Discount),
		Kind:      string(c.Kind),
		Active:    c.Active,
		ExpiresAt: c.ExpiresAt,
	}
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.Code}, doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert coupon: %w", err)
	}
	return nil
}
