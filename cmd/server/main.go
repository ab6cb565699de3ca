// Package main initializes and starts the admin API server, setting up
// configuration, logging, the database connection, repositories,
// services, and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/evolution-crm/evoadmin/internal/db"
	"github.com/evolution-crm/evoadmin/internal/logger"
	"github.com/evolution-crm/evoadmin/internal/repository"
	"github.com/evolution-crm/evoadmin/internal/server/handler/http"
	"github.com/evolution-crm/evoadmin/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// Config holds the server configuration, read from EVOADMIN_* variables.
type Config struct {
	Address       string        `envconfig:"ADDRESS" default:":8080"`
	DatabaseDSN   string        `envconfig:"DATABASE_DSN" required:"true"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	CleanInterval time.Duration `envconfig:"CLEAN_INTERVAL" default:"1h"`
	Retention     time.Duration `envconfig:"RETENTION" default:"720h"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("evoadmin", &cfg); err != nil {
		panic(fmt.Sprintf("cannot read configuration: %v", err))
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("cannot init logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	postgresDB, err := db.InitPostgres(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("cannot init database", zap.Error(err))
	}

	db.StartSoftDeleteCleaner(context.Background(), postgresDB,
		cfg.CleanInterval,
		cfg.Retention,
		log,
	)

	userRepo := repository.NewPostgresUserRepository(postgresDB)
	localeRepo := repository.NewPostgresLocaleRepository(postgresDB)

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	localeService := service.NewLocaleService(localeRepo, userRepo)

	authHandler := &http.AuthHandler{AuthService: authService}
	userHandler := http.NewUserHandler(userService)
	localeHandler := http.NewLocaleHandler(localeService)

	router := http.NewRouter(authHandler, userHandler, localeHandler, authService, log)

	server := &nethttp.Server{
		Addr:    cfg.Address,
		Handler: router,
	}

	log.Info("starting HTTP server", zap.String("addr", cfg.Address))
	if err := server.ListenAndServe(); err != nil {
		log.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
