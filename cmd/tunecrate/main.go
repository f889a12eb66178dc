package main

import (
	"context"
	"net/http"

	"tunecrate/internal/auth"
	"tunecrate/internal/logging"
	"tunecrate/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logging.Fatal(err, "load config")
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.SetGlobalLogger(logger)

	db, err := openDatabase(context.Background(), cfg)
	if err != nil {
		logging.Fatal(err, "connect to database")
	}
	defer db.Close()

	dataStore := store.New(db)
	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.TokenTTL)

	if err := bootstrap(context.Background(), cfg, dataStore); err != nil {
		logging.Fatal(err, "bootstrap")
	}

	handler := newHTTPHandler(cfg, dataStore, verifier)

	logging.Info("listening on " + cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logging.Fatal(err, "server error")
	}
}
