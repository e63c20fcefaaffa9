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

const (
	collectionAffiliates     = "affiliates"
	collectionAffiliateSales = "affiliate_sales"
)

// AffiliateRepository implements ports.AffiliateRepository.
type AffiliateRepository struct {
	affiliates *mongo.Collection
	sales      *mongo.Collection
}

func NewAffiliateRepository(db *mongo.Database) *AffiliateRepository {
	return &AffiliateRepository{
		affiliates: db.Collection(collectionAffiliates),
		sales:      db.Collection(collectionAffiliateSales),
	}
}

type affiliateDoc struct {
	ID                string               `bson:"_id"`
	UserID            string               `bson:"user_id"`
	ReferralCode      string               `bson:"referral_code"`
	CommissionPercent primitive.Decimal128 `bson:"commission_percent"`
	TotalSales        primitive.Decimal128 `bson:"total_sales"`
	TotalCommissions  primitive.Decimal128 `bson:"total_commissions"`
	Active            bool                 `bson:"active"`
	RegisteredAt      time.Time            `bson:"registered_at"`
}

func (d affiliateDoc) toDomain() *domain.Affiliate {
	return &domain.Affiliate{
		ID:                d.ID,
		UserID:            d.UserID,
		ReferralCode:      d.ReferralCode,
		CommissionPercent: fromDecimal128(d.CommissionPercent),
		TotalSales:        fromDecimal128(d.TotalSales),
		TotalCommissions:  fromDecimal128(d.TotalCommissions),
		Active:            d.Active,
		RegisteredAt:      d.RegisteredAt.UTC(),
	}
}

type saleDoc struct {
	ID                string               `bson:"_id"`
	AffiliateID       string               `bson:"affiliate_id"`
	PurchaseID        string               `bson:"purchase_id"`
	ProductID         string               `bson:"product_id"`
	ProductTitle      string               `bson:"product_title,omitempty"`
	SaleAmount        primitive.Decimal128 `bson:"sale_amount"`
	Commission        primitive.Decimal128 `bson:"commission"`
	CommissionPercent primitive.Decimal128 `bson:"commission_percent"`
	Status            string               `bson:"status"`
	SoldAt            time.Time            `bson:"sold_at"`
}

func (r *AffiliateRepository) Create(ctx context.Context, a *domain.Affiliate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := affiliateDoc{
		ID:                a.ID,
		UserID:            a.UserID,
		ReferralCode:      a.ReferralCode,
		CommissionPercent: toDecimal128(a.CommissionPercent),
		TotalSales:        toDecimal128(a.TotalSales),
		TotalCommissions:  toDecimal128(a.TotalCommissions),
		Active:            a.Active,
		RegisteredAt:      a.RegisteredAt.UTC(),
	}
	if _, err := r.affiliates.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert affiliate: %w", err)
	}
	return nil
}

func (r *AffiliateRepository) FindByUser(ctx context.Context, userID string) (*domain.Affiliate, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *AffiliateRepository) FindByCode(ctx context.Context, code string) (*domain.Affiliate, error) {
	return r.findOne(ctx, bson.M{"referral_code": code})
}

func (r *AffiliateRepository) findOne(ctx context.Context, filter bson.M) (*domain.Affiliate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc affiliateDoc
	if err := r.affiliates.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAffiliateNotFound
		}
		return nil, fmt.Errorf("find affiliate: %w", err)
	}
	return doc.toDomain(), nil
}

// RecordSale inserts the sale and then bumps the affiliate running totals.
// The unique purchase_id index turns a replayed sale into ErrDuplicateSale
// before any total is touched.
func (r *AffiliateRepository) RecordSale(ctx context.Context, s *domain.AffiliateSale) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := saleDoc{
		ID:                s.ID,
		AffiliateID:       s.AffiliateID,
		PurchaseID:        s.PurchaseID,
		ProductID:         s.ProductID,
		ProductTitle:      s.ProductTitle,
		SaleAmount:        toDecimal128(s.SaleAmount),
		Commission:        toDecimal128(s.Commission),
		CommissionPercent: toDecimal128(s.CommissionPercent),
		Status:            string(s.Status),
		SoldAt:            s.SoldAt.UTC(),
	}
	if _, err := r.sales.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateSale
		}
		return fmt.Errorf("insert affiliate sale: %w", err)
	}

	update := bson.M{"$inc": bson.M{
		"total_sales":       doc.SaleAmount,
		"total_commissions": doc.Commission,
	}}
	if _, err := r.affiliates.UpdateOne(ctx, bson.M{"_id": s.AffiliateID}, update); err != nil {
		return fmt.Errorf("update affiliate totals: %w", err)
	}
	return nil
}

// ListSales returns the affiliate's sales, newest first.
func (r *AffiliateRepository) ListSales(ctx context.Context, affiliateID string) ([]domain.AffiliateSale, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sold_at", Value: -1}})
	cur, err := r.sales.Find(ctx, bson.M{"affiliate_id": affiliateID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list affiliate sales: %w", err)
	}
	var docs []saleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode affiliate sales: %w", err)
	}

	out := make([]domain.AffiliateSale, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.AffiliateSale{
			ID:                d.ID,
			AffiliateID:       d.AffiliateID,
			PurchaseID:        d.PurchaseID,
			ProductID:         d.ProductID,
			ProductTitle:      d.ProductTitle,
			SaleAmount:        fromDecimal128(d.SaleAmount),
			Commission:        fromDecimal128(d.Commission),
			CommissionPercent: fromDecimal128(d.CommissionPercent),
			Status:            domain.SaleStatus(d.Status),
			SoldAt:            d.SoldAt.UTC(),
		})
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the affiliate collections.
func (r *AffiliateRepository) EnsureIndexes(ctx context.Context) error {
	if err := createIndexes(ctx, r.affiliates,
		mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "referral_code", Value: 1}}, Options: options.Index().SetUnique(true)},
	); err != nil {
		return err
	}
	return createIndexes(ctx, r.sales,
		mongo.IndexModel{Keys: bson.D{{Key: "purchase_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "affiliate_id", Value: 1}, {Key: "sold_at", Value: -1}}},
	)
}
