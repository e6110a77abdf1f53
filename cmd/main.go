package main

import (
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/procurement-service/internal/auth"
	"github.com/senyabanana/procurement-service/internal/db"
	"github.com/senyabanana/procurement-service/internal/handlers"
	"github.com/senyabanana/procurement-service/internal/repository"
	"github.com/senyabanana/procurement-service/internal/router"
	"github.com/senyabanana/procurement-service/internal/router/config"
	"github.com/senyabanana/procurement-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	logger := newLogger(cfg)

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	tenderRepo := repository.NewPostgresTenderRepository(dbPool)
	offerRepo := repository.NewPostgresOfferRepository(dbPool)
	awardRepo := repository.NewPostgresAwardRepository(dbPool)

	notifier := services.NewLogNotifier(logger)
	weights := services.EvaluationWeights{
		Price:    cfg.EvalPriceWeight,
		Score:    cfg.EvalScoreWeight,
		MaxScore: cfg.EvalMaxScore,
	}

	tenderService := services.NewTenderService(tenderRepo, notifier, logger)
	offerService := services.NewOfferService(offerRepo, tenderRepo, weights, logger)
	awardService := services.NewAwardService(awardRepo, tenderRepo, offerRepo, cfg.AwardRequireFullAllocation, notifier, logger)

	tenderHandler := handlers.NewTenderHandler(tenderService, logger, 5*time.Second)
	offerHandler := handlers.NewOfferHandler(offerService, logger, 5*time.Second)
	awardHandler := handlers.NewAwardHandler(awardService, logger, 5*time.Second)

	guard := auth.NewMiddleware(cfg.JWTSecret, auth.NewStaticGuard())
	routes := router.InitRoutes(tenderHandler, offerHandler, awardHandler, guard)

	logger.Infof("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
