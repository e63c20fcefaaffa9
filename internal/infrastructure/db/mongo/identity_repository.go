package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clikenova/storefront/internal/core/domain"
)

const collectionIdentities = "identities"

// IdentityRepository implements ports.IdentityRepository. The document ID is
// the credential user ID.
type IdentityRepository struct {
	col *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{col: db.Collection(collectionIdentities)}
}

type identityDoc struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Email          string    `bson:"email"`
	Role           string    `bson:"role"`
	Active         bool      `bson:"active"`
	AvatarURL      string    `bson:"avatar_url,omitempty"`
	Phone          string    `bson:"phone,omitempty"`
	RegisteredAt   time.Time `bson:"registered_at"`
	LastActivityAt time.Time `bson:"last_activity_at"`
}

func (d identityDoc) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:             d.ID,
		Name:           d.Name,
		Email:          d.Email,
		Role:           domain.Role(d.Role),
		Active:         d.Active,
		AvatarURL:      d.AvatarURL,
		Phone:          d.Phone,
		RegisteredAt:   d.RegisteredAt.UTC(),
		LastActivityAt: d.LastActivityAt.UTC(),
	}
}

func (r *IdentityRepository) Create(ctx context.Context, i *domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := identityDoc{
		ID:             i.ID,
		Name:           i.Name,
		Email:          i.Email,
		Role:           string(i.Role),
		Active:         i.Active,
		AvatarURL:      i.AvatarURL,
		Phone:          i.Phone,
		RegisteredAt:   i.RegisteredAt.UTC(),
		LastActivityAt: i.LastActivityAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc identityDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *IdentityRepository) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

// List returns identities newest first, optionally filtered by role.
func (r *IdentityRepository) List(ctx context.Context, role domain.Role, limit int) ([]*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if role != "" {
		filter["role"] = string(role)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "registered_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	var docs []identityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode identities: %w", err)
	}

	out := make([]*domain.Identity, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// CountByRole groups the identity collection by role.
func (r *IdentityRepository) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$role"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count identities: %w", err)
	}
	var rows []struct {
		Role string `bson:"_id"`
		N    int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode identity counts: %w", err)
	}

	out := make(map[domain.Role]int64, len(rows))
	for _, row := range rows {
		out[domain.Role(row.Role)] = row.N
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the identities collection.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col,
		mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "role", Value: 1}, {Key: "registered_at", Value: -1}}},
	)
}
