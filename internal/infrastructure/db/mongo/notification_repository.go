package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clikenova/storefront/internal/core/domain"
)

const collectionNotifications = "notifications"

// NotificationRepository implements ports.NotificationRepository. Every
// filter carries owner_id.
type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(collectionNotifications)}
}

type notificationDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	OwnerID   string             `bson:"owner_id"`
	Kind      string             `bson:"kind"`
	Title     string             `bson:"title"`
	Body      string             `bson:"body"`
	Read      bool               `bson:"read"`
	ActionURL string             `bson:"action_url,omitempty"`
	SentAt    time.Time          `bson:"sent_at"`
}

func (d notificationDoc) toDomain() domain.Notification {
	return domain.Notification{
		ID:        d.ID.Hex(),
		OwnerID:   d.OwnerID,
		Kind:      domain.NotificationKind(d.Kind),
		Title:     d.Title,
		Body:      d.Body,
		Read:      d.Read,
		ActionURL: d.ActionURL,
		SentAt:    d.SentAt.UTC(),
	}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := notificationDoc{
		ID:        primitive.NewObjectID(),
		OwnerID:   n.OwnerID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Body:      n.Body,
		Read:      n.Read,
		ActionURL: n.ActionURL,
		// Mongo keeps millisecond precision; truncate so the returned record
		// matches what a later read yields.
		SentAt: n.SentAt.UTC().Truncate(time.Millisecond),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *NotificationRepository) ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "sent_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}

	out := make([]domain.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, ownerID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotificationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "owner_id": ownerID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"owner_id": ownerID}); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the notifications collection.
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col,
		mongo.IndexModel{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "sent_at", Value: -1}}},
	)
}
