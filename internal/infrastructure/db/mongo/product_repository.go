package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

const collectionProducts = "products"

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type productDoc struct {
	ID              string                `bson:"_id"`
	ProducerID      string                `bson:"producer_id"`
	Title           string                `bson:"title"`
	Description     string                `bson:"description,omitempty"`
	LongDescription string                `bson:"long_description,omitempty"`
	Kind            string                `bson:"kind"`
	Price           primitive.Decimal128  `bson:"price"`
	OriginalPrice   *primitive.Decimal128 `bson:"original_price,omitempty"`
	Currency        string                `bson:"currency"`
	Active          bool                  `bson:"active"`
	Featured        bool                  `bson:"featured"`
	ImageURL        string                `bson:"image_url,omitempty"`
	Category        string                `bson:"category,omitempty"`
	Tags            []string              `bson:"tags,omitempty"`
	RatingAverage   float64               `bson:"rating_average"`
	RatingCount     int                   `bson:"rating_count"`
	SalesCount      int                   `bson:"sales_count"`
	CreatedAt       time.Time             `bson:"created_at"`
	UpdatedAt       time.Time             `bson:"updated_at"`
}

func newProductDoc(p *domain.Product) productDoc {
	return productDoc{
		ID:              p.ID,
		ProducerID:      p.ProducerID,
		Title:           p.Title,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Kind:            string(p.Kind),
		Price:           toDecimal128(p.Price),
		OriginalPrice:   toDecimal128Ptr(p.OriginalPrice),
		Currency:        p.Currency,
		Active:          p.Active,
		Featured:        p.Featured,
		ImageURL:        p.ImageURL,
		Category:        p.Category,
		Tags:            p.Tags,
		RatingAverage:   p.RatingAverage,
		RatingCount:     p.RatingCount,
		SalesCount:      p.SalesCount,
		CreatedAt:       p.CreatedAt.UTC(),
		UpdatedAt:       p.UpdatedAt.UTC(),
	}
}

func (d productDoc) toDomain() *domain.Product {
	return &domain.Product{
		ID:              d.ID,
		ProducerID:      d.ProducerID,
		Title:           d.Title,
		Description:     d.Description,
		LongDescription: d.LongDescription,
		Kind:            domain.ProductKind(d.Kind),
		Price:           fromDecimal128(d.Price),
		OriginalPrice:   fromDecimal128Ptr(d.OriginalPrice),
		Currency:        d.Currency,
		Active:          d.Active,
		Featured:        d.Featured,
		ImageURL:        d.ImageURL,
		Category:        d.Category,
		Tags:            d.Tags,
		RatingAverage:   d.RatingAverage,
		RatingCount:     d.RatingCount,
		SalesCount:      d.SalesCount,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, newProductDoc(p)); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Upsert replaces the product document, inserting it when missing.
func (r *ProductRepository) Upsert(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, newProductDoc(p), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "featured", Value: -1},
		{Key: "created_at", Value: -1},
	})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, productFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	out := make([]*domain.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func productFilter(f ports.ProductFilter) bson.M {
	filter := bson.M{}
	if !f.IncludeInactive {
		filter["active"] = true
	}
	if f.ProducerID != "" {
		filter["producer_id"] = f.ProducerID
	}
	if f.Kind != "" {
		filter["kind"] = string(f.Kind)
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}
	return filter
}

func (r *ProductRepository) SetActive(ctx context.Context, id, producerID string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "producer_id": producerID},
		bson.M{"$set": bson.M{"active": active, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) IncrementSales(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"sales_count": 1}})
	if err != nil {
		return fmt.Errorf("increment sales: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates necessary indexes on the products collection.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col,
		mongo.IndexModel{Keys: bson.D{{Key: "producer_id", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "active", Value: 1}, {Key: "featured", Value: -1}, {Key: "created_at", Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}}},
	)
}
