package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
)

// WithdrawalInput is a payout request.
type WithdrawalInput struct {
	UserID        string
	Role          domain.Role
	Amount        decimal.Decimal
	PaymentMethod string
	Notes         string
}

// WithdrawalService handles payout requests by producers and affiliates and
// their review by admins.
type WithdrawalService interface {
	Request(ctx context.Context, in WithdrawalInput) (*domain.Withdrawal, error)
	List(ctx context.Context, userID string) ([]*domain.Withdrawal, error)
	// Balance is what the user can still withdraw.
	Balance(ctx context.Context, userID string, role domain.Role) (decimal.Decimal, error)
	Queue(ctx context.Context, status domain.WithdrawalStatus) ([]*domain.Withdrawal, error)
	Transition(ctx context.Context, id string, to domain.WithdrawalStatus) (*domain.Withdrawal, error)
}
