package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/app"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/platform/config"
	pg "github.com/ogurasousui/hr-lifecycle-engine/internal/platform/db/postgres"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/platform/logging"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env は任意。存在しなければ環境変数だけを使う。
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging, os.Stdout)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database pool")
	}
	defer dbPool.Close()

	application := app.New(dbPool, cfg, logger)
	defer application.Close()

	grpcServer := server.New(cfg.Server.ListenAddr, application.Handler, logger)

	if err := grpcServer.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}
