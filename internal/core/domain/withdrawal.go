package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents the lifecycle state of a payout request.
type WithdrawalStatus string

const (
	WithdrawalPending    WithdrawalStatus = "pending"
	WithdrawalApproved   WithdrawalStatus = "approved"
	WithdrawalProcessing WithdrawalStatus = "processing"
	WithdrawalPaid       WithdrawalStatus = "paid"
	WithdrawalRejected   WithdrawalStatus = "rejected"
)

// validTransitions defines the allowed payout state machine transitions.
var validTransitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalPending:    {WithdrawalApproved, WithdrawalRejected},
	WithdrawalApproved:   {WithdrawalProcessing, WithdrawalRejected},
	WithdrawalProcessing: {WithdrawalPaid, WithdrawalRejected},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s WithdrawalStatus) CanTransitionTo(next WithdrawalStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Outstanding reports whether the request still holds balance.
func (s WithdrawalStatus) Outstanding() bool {
	return s != WithdrawalRejected
}

// WithdrawalKind says which balance a withdrawal draws from.
type WithdrawalKind string

const (
	WithdrawalSales       WithdrawalKind = "sales"
	WithdrawalCommissions WithdrawalKind = "commissions"
)

// Withdrawal is a payout request by a producer or affiliate.
type Withdrawal struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Kind          WithdrawalKind   `json:"kind"`
	Amount        decimal.Decimal  `json:"amount"`
	Fee           decimal.Decimal  `json:"fee"`
	NetAmount     decimal.Decimal  `json:"net_amount"`
	Currency      string           `json:"currency"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Status        WithdrawalStatus `json:"status"`
	Notes         string           `json:"notes,omitempty"`
	RequestedAt   time.Time        `json:"requested_at"`
	ProcessedAt   *time.Time       `json:"processed_at,omitempty"`
	PaidAt        *time.Time       `json:"paid_at,omitempty"`
}
