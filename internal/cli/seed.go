package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
	"github.com/clikenova/storefront/internal/infrastructure/backend"
	"github.com/clikenova/storefront/internal/infrastructure/coupon"
	mongostore "github.com/clikenova/storefront/internal/infrastructure/db/mongo"
	"github.com/clikenova/storefront/pkg/logger"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	AdminEmail       string
	AdminPassword    string
	ProducerEmail    string
	ProducerPassword string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo accounts, catalog and coupons",
		Long: `Load the demo data set into MongoDB.

Admin accounts cannot be created through the API; seed is the only way to get
one. Running seed twice is safe: accounts are reused and catalog entries are
replaced by ID.

Example:
  storefront seed --admin-password s3cret --producer-password s3cret`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.AdminEmail, "admin-email", "admin@storefront.local", "email of the admin account")
	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", "", "password of the admin account (required)")
	cmd.Flags().StringVar(&opts.ProducerEmail, "producer-email", "producer@storefront.local", "email of the demo producer")
	cmd.Flags().StringVar(&opts.ProducerPassword, "producer-password", "", "password of the demo producer (required)")
	_ = cmd.MarkFlagRequired("admin-password")
	_ = cmd.MarkFlagRequired("producer-password")

	return cmd
}

func runSeed(ctx context.Context, opts *SeedOptions) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log := initLogger(cfg)

	db, disconnect, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer disconnect()

	identities := mongostore.NewIdentityRepository(db)
	credentialRepo := mongostore.NewCredentialRepository(db)
	products := mongostore.NewProductRepository(db)
	courses := mongostore.NewCourseRepository(db)
	coupons := mongostore.NewCouponRepository(db)
	if err := mongostore.EnsureIndexes(ctx, identities, credentialRepo, products, courses); err != nil {
		return err
	}

	// Seeding happens offline, nobody is listening for sign-in events.
	credentials := backend.NewCredentialProvider(credentialRepo, discardEvents{}, 0, logger.Component("credentials"))
	accounts := accountSeeder{credentials: credentials, identities: identities, log: log}

	if _, err := accounts.ensure(ctx, "Administrator", opts.AdminEmail, opts.AdminPassword, domain.RoleAdmin); err != nil {
		return err
	}
	producerID, err := accounts.ensure(ctx, "Demo Producer", opts.ProducerEmail, opts.ProducerPassword, domain.RoleProducer)
	if err != nil {
		return err
	}

	data := demoCatalog(producerID, cfg.Checkout.Currency, time.Now().UTC())
	for _, p := range data.Products {
		if err := products.Upsert(ctx, p); err != nil {
			return err
		}
	}
	for _, o := range data.Outlines {
		if err := courses.SaveOutline(ctx, o); err != nil {
			return err
		}
	}
	for _, c := range data.Coupons {
		if err := coupons.Upsert(ctx, c); err != nil {
			return err
		}
	}

	log.Info().
		Int("products", len(data.Products)).
		Int("courses", len(data.Outlines)).
		Int("coupons", len(data.Coupons)).
		Msg("demo data loaded")
	return nil
}

type accountSeeder struct {
	credentials ports.CredentialProvider
	identities  ports.IdentityRepository
	log         zerolog.Logger
}

// ensure returns the user ID of the account, creating the credential and the
// profile when missing. An existing credential must match password.
func (s accountSeeder) ensure(ctx context.Context, name, email, password string, role domain.Role) (string, error) {
	cred, err := s.credentials.SignUp(ctx, email, password)
	if errors.Is(err, domain.ErrEmailTaken) {
		cred, err = s.credentials.SignIn(ctx, email, password)
	}
	if err != nil {
		return "", fmt.Errorf("seed %s account %s: %w", role, email, err)
	}

	now := time.Now().UTC()
	err = s.identities.Create(ctx, &domain.Identity{
		ID:             cred.UserID,
		Name:           name,
		Email:          email,
		Role:           role,
		Active:         true,
		RegisteredAt:   now,
		LastActivityAt: now,
	})
	if err != nil && !errors.Is(err, domain.ErrEmailTaken) {
		return "", fmt.Errorf("seed %s profile %s: %w", role, email, err)
	}
	s.log.Info().Str("email", email).Str("role", string(role)).Msg("account ready")
	return cred.UserID, nil
}

type discardEvents struct{}

func (discardEvents) Publish(context.Context, ports.AuthEvent) error { return nil }

// catalogSeed is the demo data set.
type catalogSeed struct {
	Products []*domain.Product
	Outlines []*domain.CourseOutline
	Coupons  []*domain.CouponRecord
}

func demoCatalog(producerID, currency string, now time.Time) catalogSeed {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	was := price("199.90")

	goCourse := &domain.Product{
		ID:            "prod-go-fundamentals",
		ProducerID:    producerID,
		Title:         "Go Fundamentals",
		Description:   "From zero to a production HTTP service.",
		Kind:          domain.ProductCourse,
		Price:         price("149.90"),
		OriginalPrice: &was,
		Currency:      currency,
		Active:        true,
		Featured:      true,
		Category:      "programming",
		Tags:          []string{"go", "backend"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	ebook := &domain.Product{
		ID:          "prod-concurrency-ebook",
		ProducerID:  producerID,
		Title:       "Concurrency Patterns in Practice",
		Description: "Channels, contexts and worker pools explained with real services.",
		Kind:        domain.ProductEbook,
		Price:       price("39.90"),
		Currency:    currency,
		Active:      true,
		Category:    "programming",
		Tags:        []string{"go", "concurrency"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	lesson := func(id, moduleID, title string, position, seconds int, preview bool) domain.Video {
		return domain.Video{
			ID:              id,
			ModuleID:        moduleID,
			Title:           title,
			URL:             "https://videos.storefront.local/" + id + ".mp4",
			DurationSeconds: seconds,
			Position:        position,
			Preview:         preview,
			Active:          true,
			UploadedAt:      now,
		}
	}
	outline := &domain.CourseOutline{
		Course: domain.Course{
			ID:           "course-go-fundamentals",
			ProductID:    goCourse.ID,
			Title:        goCourse.Title,
			TotalMinutes: 42,
			Level:        domain.LevelBeginner,
			Certificate:  true,
			CreatedAt:    now,
		},
		Modules: []domain.ModuleOutline{
			{
				Module: domain.Module{ID: "mod-basics", CourseID: "course-go-fundamentals", Title: "Language basics", Position: 1, Active: true, CreatedAt: now},
				Videos: []domain.Video{
					lesson("vid-hello", "mod-basics", "Hello, Go", 1, 420, true),
					lesson("vid-types", "mod-basics", "Types and zero values", 2, 780, false),
				},
			},
			{
				Module: domain.Module{ID: "mod-http", CourseID: "course-go-fundamentals", Title: "Building an API", Position: 2, Active: true, CreatedAt: now},
				Videos: []domain.Video{
					lesson("vid-handlers", "mod-http", "Handlers and routing", 1, 900, false),
					lesson("vid-shutdown", "mod-http", "Graceful shutdown", 2, 420, false),
				},
			},
		},
	}

	return catalogSeed{
		Products: []*domain.Product{goCourse, ebook},
		Outlines: []*domain.CourseOutline{outline},
		Coupons: []*domain.CouponRecord{
			{
				Coupon: domain.Coupon{Code: coupon.DefaultCode, Discount: decimal.NewFromInt(10), Kind: domain.DiscountPercentage},
				Active: true,
			},
			{
				Coupon: domain.Coupon{Code: "BEMVINDO5", Discount: decimal.NewFromInt(5), Kind: domain.DiscountFixed},
				Active: true,
			},
		},
	}
}
