package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"go.mongodb.org/mongo-driver/mongo"

	mongostore "github.com/clikenova/storefront/internal/infrastructure/db/mongo"
	"github.com/clikenova/storefront/internal/pkg/config"
	"github.com/clikenova/storefront/pkg/logger"
)

const serviceName = "storefront"

func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.LoadFrom(ctx, envconfig.OsLookuper())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg *config.Config) zerolog.Logger {
	return logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Console: cfg.IsDevelopment(),
		Service: serviceName,
	})
}

// connectMongo returns the database and a function that disconnects it.
func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Database, func(), error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = client.Disconnect(context.Background()) }, nil
}
