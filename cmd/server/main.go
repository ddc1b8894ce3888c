package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-watchlist/internal/config"
	"github.com/iliyamo/movie-watchlist/internal/database"
	"github.com/iliyamo/movie-watchlist/internal/handler"
	"github.com/iliyamo/movie-watchlist/internal/logger"
	"github.com/iliyamo/movie-watchlist/internal/mailer"
	"github.com/iliyamo/movie-watchlist/internal/queue"
	"github.com/iliyamo/movie-watchlist/internal/repository"
	"github.com/iliyamo/movie-watchlist/internal/router"
	queuepublisher "github.com/iliyamo/movie-watchlist/internal/service"
	"github.com/iliyamo/movie-watchlist/internal/validation"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load()
	log := logger.New("movie-watchlist", cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; response cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	movies := repository.NewMovieRepo(db)
	watchlist := repository.NewWatchlistRepo(db)

	events := queuepublisher.New(cfg.AMQPURL, log)

	// The activation email worker runs alongside the API. Without
	// Mailgun credentials registration still works; emails are skipped.
	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		sender := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		go queue.StartActivationConsumer(cfg.AMQPURL, cfg.BaseURL, sender, log)
	} else {
		log.Warn("mailgun not configured; activation emails disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	router.Register(e, cfg, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, events, log),
		Movies:    handler.NewMovieHandler(movies, log),
		Watchlist: handler.NewWatchlistHandler(watchlist, log),
		Users:     users,
	}, rdb)

	addr := ":" + cfg.Port
	log.WithField("addr", addr).WithField("env", cfg.Env).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
