package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clikenova/storefront/internal/core/domain"
)

const collectionPurchases = "purchases"

type PurchaseRepository struct {
	col *mongo.Collection
}

func NewPurchaseRepository(db *mongo.Database) *PurchaseRepository {
	return &PurchaseRepository{col: db.Collection(collectionPurchases)}
}

type billingDoc struct {
	Name       string `bson:"name"`
	Email      string `bson:"email"`
	TaxID      string `bson:"tax_id,omitempty"`
	Address    string `bson:"address"`
	City       string `bson:"city"`
	PostalCode string `bson:"postal_code"`
	Country    string `bson:"country"`
}

type purchaseDoc struct {
	ID              string               `bson:"_id"`
	UserID          string               `bson:"user_id"`
	ProductID       string               `bson:"product_id"`
	ProductTitle    string               `bson:"product_title,omitempty"`
	PricePaid       primitive.Decimal128 `bson:"price_paid"`
	DiscountApplied primitive.Decimal128 `bson:"discount_applied"`
	CouponCode      string               `bson:"coupon_code,omitempty"`
	ReferralCode    string               `bson:"referral_code,omitempty"`
	Currency        string               `bson:"currency"`
	PaymentMethod   string               `bson:"payment_method,omitempty"`
	Status          string               `bson:"status"`
	Billing         *billingDoc          `bson:"billing,omitempty"`
	PurchasedAt     time.Time            `bson:"purchased_at"`
	PaidAt          *time.Time           `bson:"paid_at,omitempty"`
}

func (d purchaseDoc) toDomain() *domain.Purchase {
	p := &domain.Purchase{
		ID:              d.ID,
		UserID:          d.UserID,
		ProductID:       d.ProductID,
		ProductTitle:    d.ProductTitle,
		PricePaid:       fromDecimal128(d.PricePaid),
		DiscountApplied: fromDecimal128(d.DiscountApplied),
		CouponCode:      d.CouponCode,
		ReferralCode:    d.ReferralCode,
		Currency:        d.Currency,
		PaymentMethod:   d.PaymentMethod,
		Status:          domain.PaymentStatus(d.Status),
		PurchasedAt:     d.PurchasedAt.UTC(),
		PaidAt:          d.PaidAt,
	}
	if b := d.Billing; b != nil {
		p.Billing = &domain.Billing{
			Name:       b.Name,
			Email:      b.Email,
			TaxID:      b.TaxID,
			Address:    b.Address,
			City:       b.City,
			PostalCode: b.PostalCode,
			Country:    b.Country,
		}
	}
	return p
}

// Create inserts a new purchase document.
func (r *PurchaseRepository) Create(ctx context.Context, p *domain.Purchase) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := purchaseDoc{
		ID:              p.ID,
		UserID:          p.UserID,
		ProductID:       p.ProductID,
		ProductTitle:    p.ProductTitle,
		PricePaid:       toDecimal128(p.PricePaid),
		DiscountApplied: toDecimal128(p.DiscountApplied),
		CouponCode:      p.CouponCode,
		ReferralCode:    p.ReferralCode,
		Currency:        p.Currency,
		PaymentMethod:   p.PaymentMethod,
		Status:          string(p.Status),
		PurchasedAt:     p.PurchasedAt.UTC(),
		PaidAt:          p.PaidAt,
	}
	if b := p.Billing; b != nil {
		doc.Billing = &billingDoc{
			Name:       b.Name,
			Email:      b.Email,
			TaxID:      b.TaxID,
			Address:    b.Address,
			City:       b.City,
			PostalCode: b.PostalCode,
			Country:    b.Country,
		}
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// FindByID retrieves a purchase by ID.
// When userID is non-empty, an additional filter by user_id is applied.
func (r *PurchaseRepository) FindByID(ctx context.Context, id, userID string) (*domain.Purchase, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id}
	if userID != "" {
		filter["user_id"] = userID
	}

	var doc purchaseDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("find purchase: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByUser returns the buyer's purchases, newest first.
func (r *PurchaseRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Purchase, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "purchased_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	var docs []purchaseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode purchases: %w", err)
	}

	out := make([]*domain.Purchase, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// HasPurchased ignores canceled and refunded purchases.
func (r *PurchaseRepository) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{
		"user_id":    userID,
		"product_id": productID,
		"status": bson.M{"$nin": bson.A{
			string(domain.PaymentCanceled),
			string(domain.PaymentRefunded),
		}},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return n > 0, nil
}

func (r *PurchaseRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates necessary indexes on the purchases collection.
func (r *PurchaseRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col,
		mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "purchased_at", Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}}},
	)
}
