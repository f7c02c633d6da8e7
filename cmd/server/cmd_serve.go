package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ecomlab/sale-recorder/internal/adapter/handler"
	"github.com/ecomlab/sale-recorder/internal/adapter/storage"
	"github.com/ecomlab/sale-recorder/internal/config"
	"github.com/ecomlab/sale-recorder/internal/core/service"
	"github.com/ecomlab/sale-recorder/internal/logger"
	"github.com/ecomlab/sale-recorder/internal/reporting"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.App.Env, cfg.App.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info().Str("driver", cfg.DB.Driver).Msg("connected to database")

	store := storage.NewSQLAdapter(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	var opts []service.Option
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		defer rdb.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Bool("stock_gate", cfg.Redis.StockGate).
			Msg("connected to redis")

		gate := storage.NewRedisAdapter(rdb)
		if cfg.Redis.StockGate {
			if err := syncStockGate(ctx, store, gate); err != nil {
				return err
			}
		}
		opts = append(opts, service.WithAdmissionGate(gate, cfg.Redis.StockGate))
	}

	sales := service.NewSaleService(store, opts...)
	reports := reporting.New(sqlx.NewDb(db, cfg.DB.Driver))
	h := handler.NewHTTPHandler(sales, store, reports, log)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: h.Router(),
	}
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	grpcServer, lis, err := handler.StartGRPC(cfg.GRPC.Addr, log)
	if err != nil {
		return err
	}
	go func() {
		log.Info().Str("addr", cfg.GRPC.Addr).Msg("grpc server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Error().Err(err).Msg("grpc server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info().Msg("http server stopped")

	grpcServer.GracefulStop()
	log.Info().Msg("grpc server stopped")
	return nil
}
