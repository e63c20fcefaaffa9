package handler

import (
	"time"

	"github.com/clikenova/storefront/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// --- Auth & session ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,oneof=producer student affiliate"`
	Phone    string `json:"phone"    validate:"omitempty,max=32"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type identityResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Active       bool      `json:"active"`
	RegisteredAt time.Time `json:"registered_at"`
}

type authResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	SessionID string           `json:"session_id"`
	User      identityResponse `json:"user"`
	Redirect  string           `json:"redirect"`
}

type sessionResponse struct {
	SessionID string            `json:"session_id"`
	Status    string            `json:"status"`
	User      *identityResponse `json:"user,omitempty"`
	Dashboard string            `json:"dashboard,omitempty"`
	Unread    int               `json:"unread_notifications"`
}

type navigationResponse struct {
	Path     string `json:"path"`
	Outcome  string `json:"outcome"`
	Location string `json:"location,omitempty"`
}

// --- Notifications ---

type createNotificationRequest struct {
	Kind      string `json:"kind"       validate:"required,oneof=success error warning info"`
	Title     string `json:"title"      validate:"required,max=200"`
	Body      string `json:"body"       validate:"max=2000"`
	ActionURL string `json:"action_url" validate:"omitempty,uri"`
}

type notificationListResponse struct {
	Data   []domain.Notification `json:"data"`
	Unread int                   `json:"unread"`
}

type unreadCountResponse struct {
	Unread int `json:"unread"`
}

// --- Catalog ---

type productResponse struct {
	ID            string    `json:"id"`
	ProducerID    string    `json:"producer_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Kind          string    `json:"kind"`
	Price         string    `json:"price"`
	OriginalPrice string    `json:"original_price,omitempty"`
	Currency      string    `json:"currency"`
	Active        bool      `json:"active"`
	Featured      bool      `json:"featured"`
	ImageURL      string    `json:"image_url,omitempty"`
	Category      string    `json:"category,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	RatingAverage float64   `json:"rating_average"`
	RatingCount   int       `json:"rating_count"`
	SalesCount    int       `json:"sales_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type listProductsResponse struct {
	Data []productResponse `json:"data"`
}

// --- Checkout ---

type couponRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type couponResponse struct {
	Code     string `json:"code"`
	Kind     string `json:"kind"`
	Discount string `json:"discount"`
}

type quoteRequest struct {
	ProductID  string `json:"product_id"  validate:"required"`
	CouponCode string `json:"coupon_code" validate:"max=64"`
}

type quoteResponse struct {
	ProductID       string `json:"product_id"`
	ProductTitle    string `json:"product_title"`
	Currency        string `json:"currency"`
	CouponCode      string `json:"coupon_code,omitempty"`
	Subtotal        string `json:"subtotal"`
	Discount        string `json:"discount"`
	DiscountedPrice string `json:"discounted_price"`
	TaxRate         string `json:"tax_rate"`
	Tax             string `json:"tax"`
	Total           string `json:"total"`
}

type billingRequest struct {
	Name       string `json:"name"        validate:"required"`
	Email      string `json:"email"       validate:"required,email"`
	TaxID      string `json:"tax_id"`
	Address    string `json:"address"     validate:"required"`
	City       string `json:"city"        validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country"     validate:"required"`
}

type placeOrderRequest struct {
	ProductID     string         `json:"product_id"     validate:"required"`
	CouponCode    string         `json:"coupon_code"    validate:"max=64"`
	ReferralCode  string         `json:"ref"            validate:"max=32"`
	PaymentMethod string         `json:"payment_method" validate:"required,oneof=card pix boleto transfer"`
	Billing       billingRequest `json:"billing"        validate:"required"`
}

type purchaseResponse struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	ProductTitle    string    `json:"product_title,omitempty"`
	PricePaid       string    `json:"price_paid"`
	DiscountApplied string    `json:"discount_applied"`
	CouponCode      string    `json:"coupon_code,omitempty"`
	ReferralCode    string    `json:"referral_code,omitempty"`
	Currency        string    `json:"currency"`
	PaymentMethod   string    `json:"payment_method,omitempty"`
	Status          string    `json:"status"`
	PurchasedAt     time.Time `json:"purchased_at"`
}

type orderResponse struct {
	Purchase purchaseResponse `json:"purchase"`
	Quote    quoteResponse    `json:"quote"`
	Replayed bool             `json:"replayed"`
}

type listPurchasesResponse struct {
	Data []purchaseResponse `json:"data"`
}

// --- Producer ---

type createProductRequest struct {
	Title         string   `json:"title"          validate:"required,max=200"`
	Description   string   `json:"description"    validate:"max=5000"`
	Kind          string   `json:"kind"           validate:"required,oneof=course ebook digital physical"`
	Price         string   `json:"price"          validate:"required,money"`
	OriginalPrice string   `json:"original_price" validate:"omitempty,money"`
	Category      string   `json:"category"       validate:"max=64"`
	Tags          []string `json:"tags"           validate:"max=20,dive,max=32"`
	ImageURL      string   `json:"image_url"      validate:"omitempty,url"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type producerStatsResponse struct {
	Products   int    `json:"products"`
	TotalSales int    `json:"total_sales"`
	Revenue    string `json:"revenue"`
	Currency   string `json:"currency"`
}

// --- Affiliate ---

type affiliateResponse struct {
	ID                string    `json:"id"`
	ReferralCode      string    `json:"referral_code"`
	CommissionPercent string    `json:"commission_percent"`
	TotalSales        string    `json:"total_sales"`
	TotalCommissions  string    `json:"total_commissions"`
	Active            bool      `json:"active"`
	RegisteredAt      time.Time `json:"registered_at"`
}

type affiliateStatsResponse struct {
	TotalSales         int    `json:"total_sales"`
	PaidCommissions    string `json:"paid_commissions"`
	PendingCommissions string `json:"pending_commissions"`
}

type affiliateSaleResponse struct {
	ID           string    `json:"id"`
	PurchaseID   string    `json:"purchase_id"`
	ProductID    string    `json:"product_id"`
	ProductTitle string    `json:"product_title,omitempty"`
	SaleAmount   string    `json:"sale_amount"`
	Commission   string    `json:"commission"`
	Status       string    `json:"status"`
	SoldAt       time.Time `json:"sold_at"`
}

type listSalesResponse struct {
	Data []affiliateSaleResponse `json:"data"`
}

type referralLinkResponse struct {
	ProductID string `json:"product_id"`
	URL       string `json:"url"`
}

// --- Withdrawals ---

type withdrawalRequest struct {
	Amount        string `json:"amount"         validate:"required,money"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=pix transfer paypal"`
	Notes         string `json:"notes"          validate:"max=500"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required,oneof=approved processing paid rejected"`
}

type withdrawalResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Kind          string     `json:"kind"`
	Amount        string     `json:"amount"`
	Fee           string     `json:"fee"`
	NetAmount     string     `json:"net_amount"`
	Currency      string     `json:"currency"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	RequestedAt   time.Time  `json:"requested_at"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

type listWithdrawalsResponse struct {
	Data []withdrawalResponse `json:"data"`
}

type balanceResponse struct {
	Available string `json:"available"`
}

// --- Admin ---

type overviewResponse struct {
	IdentitiesByRole   map[string]int64 `json:"identities_by_role"`
	TotalIdentities    int64            `json:"total_identities"`
	Products           int64            `json:"products"`
	Purchases          int64            `json:"purchases"`
	PendingWithdrawals int              `json:"pending_withdrawals"`
}

type listIdentitiesResponse struct {
	Data []identityResponse `json:"data"`
}
