// @title        EC-SETU Portal API
// @version      1.0
// @description  Profile and user administration backend for the EC-SETU portal.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ecsetu/portal/internal/api"
	"github.com/ecsetu/portal/internal/core/service"
	mongodb "github.com/ecsetu/portal/internal/infrastructure/db/mongo"
	"github.com/ecsetu/portal/internal/infrastructure/mail"
	"github.com/ecsetu/portal/internal/pkg/config"
	"github.com/ecsetu/portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "portal-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongodb.Disconnect(client, shutdownTimeout); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}

	mailer := mail.New(mail.Config{
		Host:   cfg.SMTP.Host,
		Port:   cfg.SMTP.Port,
		Secure: cfg.SMTP.Secure,
		From:   cfg.SMTP.Sender(),
		User:   cfg.SMTP.User,
		Pass:   cfg.SMTP.Pass,
	}, logger.Component("mailer"))

	profiles := service.NewProfileService(users, mailer, logger.Component("profile_service"))

	e := api.NewRouter(api.Dependencies{
		Profiles: profiles,
		Mongo:    client,
		Mailer:   mailer,
		Logger:   logger.Component("http"),
	})

	go func() {
		addr := ":" + cfg.Server.Port
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}
