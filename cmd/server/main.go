package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"webforum/internal/auth"
	"webforum/internal/config"
	"webforum/internal/content"
	"webforum/internal/handlers"
	"webforum/internal/profile"
	"webforum/internal/store"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := config.Load()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("create data dir")
	}

	st, err := store.Open(cfg.DBPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer st.Close()

	if err := store.Migrate(st); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	identity := auth.NewService(st, log)

	// the admin account must exist before the first request is served
	ctx := context.Background()
	if err := identity.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("seed administrator")
	}

	sessions := auth.NewSessions(st, cfg.SessionTTL)
	contentSvc := content.New(st, log)

	profiles, err := profile.New(st, cfg.UploadDir, cfg.MaxAvatarBytes, cfg.AvatarMaxEdge, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init profile service")
	}

	h, err := handlers.New(cfg, identity, sessions, contentSvc, profiles, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init handlers")
	}

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("listening")
	if err := http.ListenAndServe(addr, h.Router()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
