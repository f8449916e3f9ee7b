package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/timebank/backend/internal/config"
	"github.com/timebank/backend/internal/models"
	"github.com/timebank/backend/internal/repository"
)

const graphScope = "https://graph.microsoft.com/.default"

// openGateway connects the backend selected by cfg.StoreMode. The caller closes it.
func openGateway(ctx context.Context, cfg *config.Config, log *slog.Logger) (*repository.Gateway, error) {
	switch cfg.StoreMode {
	case repository.ModeMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryGateway(), nil

	case repository.ModeSharePoint:
		cc := clientcredentials.Config{
			ClientID:     cfg.Graph.ClientID,
			ClientSecret: cfg.Graph.ClientSecret,
			TokenURL:     cfg.Graph.TokenURL(),
			Scopes:       []string{graphScope},
		}
		httpClient := cc.Client(context.Background())
		httpClient.Timeout = 30 * time.Second
		lists, err := repository.NewListClient(httpClient, cfg.Graph.BaseURL, cfg.Graph.SiteID)
		if err != nil {
			return nil, err
		}
		log.Info("using sharepoint list store", "site_id", cfg.Graph.SiteID)
		return repository.NewSharePointGateway(lists), nil

	case repository.ModePostgres:
		pool, err := openPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		g := repository.NewPostgresGateway(pool, pool.Close)
		n, err := repository.SeedBenefits(ctx, g.Benefits, models.DefaultBenefits())
		if err != nil {
			g.Close()
			return nil, err
		}
		log.Info("connected to PostgreSQL", "benefits_seeded", n)
		return g, nil
	}
	return nil, fmt.Errorf("%w: %q", repository.ErrUnknownMode, cfg.StoreMode)
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot reach PostgreSQL (is it running?): %w", err)
	}
	return pool, nil
}
