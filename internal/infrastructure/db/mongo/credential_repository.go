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

const collectionCredentials = "credentials"

// CredentialRecord is a stored email/password-hash pair.
type CredentialRecord struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CredentialRepository stores the password hashes owned by the credential
// provider. It is never exposed to the core.
type CredentialRepository struct {
	col *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database) *CredentialRepository {
	return &CredentialRepository{col: db.Collection(collectionCredentials)}
}

type credentialDoc struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash"`
	CreatedAt    int64  `bson:"created_at"`
}

func (r *CredentialRepository) Create(ctx context.Context, c *CredentialRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := credentialDoc{
		ID:           c.UserID,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt.Unix(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// FindByEmail returns domain.ErrInvalidCredentials for unknown emails so that
// callers cannot tell unknown accounts from wrong passwords.
func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*CredentialRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc credentialDoc
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}

	return &CredentialRecord{
		UserID:       doc.ID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    unixToTime(doc.CreatedAt),
	}, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the credentials collection.
func (r *CredentialRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col,
		mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	)
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
