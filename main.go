package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/alexbotov/sumup/internal/config"
	"github.com/alexbotov/sumup/internal/sandbox"
	"github.com/alexbotov/sumup/internal/store"
)

func main() {
	cfg := config.Load()
	lg := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := run(cfg, lg); err != nil {
		lg.Error("sandbox stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg *slog.Logger) error {
	st, err := openStore(&cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	tokens, err := sandbox.NewTokenIssuer(&cfg.Auth)
	if err != nil {
		return err
	}

	srv := sandbox.New(st, tokens, sandbox.NewHub(lg), lg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.SetupRouter(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lg.Info("readers sandbox listening",
		slog.String("addr", httpServer.Addr),
		slog.String("store", cfg.Store.Driver))
	return httpServer.ListenAndServe()
}

func openStore(cfg *config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "postgres":
		db, err := store.NewPostgres(cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
