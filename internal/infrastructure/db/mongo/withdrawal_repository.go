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

const collectionWithdrawals = "withdrawals"

// WithdrawalRepository implements ports.WithdrawalRepository. Each status
// change is appended to status_history for auditing.
type WithdrawalRepository struct {
	col *mongo.Collection
}

func NewWithdrawalRepository(db *mongo.Database) *WithdrawalRepository {
	return &WithdrawalRepository{col: db.Collection(collectionWithdrawals)}
}

type withdrawalDoc struct {
	ID            string               `bson:"_id"`
	UserID        string               `bson:"user_id"`
	Kind          string               `bson:"kind"`
	Amount        primitive.Decimal128 `bson:"amount"`
	Fee           primitive.Decimal128 `bson:"fee"`
	NetAmount     primitive.Decimal128 `bson:"net_amount"`
	Currency      string               `bson:"currency"`
	PaymentMethod string               `bson:"payment_method,omitempty"`
	Status        string               `bson:"status"`
	Notes         string               `bson:"notes,omitempty"`
	RequestedAt   time.Time            `bson:"requested_at"`
	ProcessedAt   *time.Time           `bson:"processed_at,omitempty"`
	PaidAt        *time.Time           `bson:"paid_at,omitempty"`
}

func (d withdrawalDoc) toDomain() *domain.Withdrawal {
	return &domain.Withdrawal{
		ID:            d.ID,
		UserID:        d.UserID,
		Kind:          domain.WithdrawalKind(d.Kind),
		Amount:        fromDecimal128(d.Amount),
		Fee:           fromDecimal128(d.Fee),
		NetAmount:     fromDecimal128(d.NetAmount),
		Currency:      d.Currency,
		PaymentMethod: d.PaymentMethod,
		Status:        domain.WithdrawalStatus(d.Status),
		Notes:         d.Notes,
		RequestedAt:   d.RequestedAt.UTC(),
		ProcessedAt:   d.ProcessedAt,
		PaidAt:        d.PaidAt,
	}
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := withdrawalDoc{
		ID:            w.ID,
		UserID:        w.UserID,
		Kind:          string(w.Kind),
		Amount:        toDecimal128(w.Amount),
		Fee:           toDecimal128(w.Fee),
		NetAmount:     toDecimal128(w.NetAmount),
		Currency:      w.Currency,
		PaymentMethod: w.PaymentMethod,
		Status:        string(w.Status),
		Notes:         w.Notes,
		RequestedAt:   w.RequestedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

func (r *WithdrawalRepository) FindByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc withdrawalDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("find withdrawal: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Withdrawal, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *WithdrawalRepository) ListByStatus(ctx context.Context, status domain.WithdrawalStatus) ([]*domain.Withdrawal, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}
	return r.list(ctx, filter)
}

func (r *WithdrawalRepository) list(ctx context.Context, filter bson.M) ([]*domain.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	var docs []withdrawalDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode withdrawals: %w", err)
	}

	out := make([]*domain.Withdrawal, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// UpdateStatus atomically moves the withdrawal from one status to another and
// appends a history entry. Only one of two concurrent reviews of the same
// request can match the status filter.
func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, id string, from, to domain.WithdrawalStatus, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	at = at.UTC()
	set := bson.M{"status": string(to)}
	switch to {
	case domain.WithdrawalProcessing, domain.WithdrawalRejected:
		set["processed_at"] = at
	case domain.WithdrawalPaid:
		set["paid_at"] = at
	}

	filter := bson.M{"_id": id, "status": string(from)}
	update := bson.M{
		"$set": set,
		"$push": bson.M{"status_history": bson.M{
			"from": string(from),
			"to":   string(to),
			"at":   at,
		}},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update withdrawal status: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the withdrawals collection.
func (r *WithdrawalRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col,
		mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "requested_at", Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}},
	)
}
