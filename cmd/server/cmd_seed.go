package main

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ecomlab/sale-recorder/internal/adapter/storage"
	"github.com/ecomlab/sale-recorder/internal/config"
	"github.com/ecomlab/sale-recorder/internal/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the schema and load the demo catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return seed()
	},
}

func seed() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.App.Env, cfg.App.LogLevel)

	ctx := context.Background()
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	store := storage.NewSQLAdapter(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	if err := store.Seed(ctx); err != nil {
		return err
	}
	log.Info().Msg("schema migrated and demo data seeded")

	if cfg.Redis.Enabled && cfg.Redis.StockGate {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		if err := syncStockGate(ctx, store, storage.NewRedisAdapter(rdb)); err != nil {
			return err
		}
		log.Info().Msg("stock gate synced")
	}
	return nil
}

// syncStockGate mirrors committed stock into the Redis gate counters.
func syncStockGate(ctx context.Context, store *storage.SQLAdapter, gate *storage.RedisAdapter) error {
	records, err := store.ListInventory(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := gate.SetStock(ctx, rec.ProductID, rec.Stock); err != nil {
			return err
		}
	}
	return nil
}
