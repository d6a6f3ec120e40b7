package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"livedocs/internal/api"
	"livedocs/internal/config"
	"livedocs/internal/notify"
	"livedocs/internal/routers"
	"livedocs/internal/session"
	"livedocs/internal/store"
	"livedocs/internal/utils"
)

var (
	listenAndServe = http.ListenAndServe
	exit           = os.Exit
	exitFunc       = defaultExit
)

func defaultExit(err error) {
	log.Printf("server error: %v", err)
	exit(1)
}

func run(ctx context.Context) error {
	logger := utils.NewLogger()
	cfg := config.Load()

	if os.Getenv("JWT_SECRET") == "" {
		logger.Warn("JWT_SECRET not set, identity tokens are rejected and token joins degrade to guests")
	}

	var docs store.DocumentStore
	if cfg.MongoURI != "" {
		ms, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		docs = ms
	} else {
		logger.Warn("MONGO_URI not set, documents will not survive restarts")
		docs = store.NewMemoryStore()
	}

	var notifier session.Notifier
	if cfg.RedisAddr != "" {
		n := notify.NewRedisNotifier(cfg.RedisAddr)
		defer n.Close()
		notifier = n
	}

	hub := session.NewHub(logger, docs, notifier)
	handlers := api.NewHandlers(logger, hub)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
	)
	r.Mount("/", routers.New(handlers, cfg.AllowedOrigin))

	addr := ":" + cfg.Port
	logger.Info("document server listening", "addr", addr)
	return listenAndServe(addr, r)
}

func main() {
	if err := run(context.Background()); err != nil {
		exitFunc(err)
	}
}
