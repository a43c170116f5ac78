package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/agora-shop/api/internal/auth"
	"github.com/agora-shop/api/internal/config"
	"github.com/agora-shop/api/internal/router"
	"github.com/agora-shop/api/internal/store"
	"github.com/agora-shop/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Unable to create upload dir %q: %v", cfg.UploadDir, err)
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		log.Fatalf("Unable to set up admin credentials: %v", err)
	}

	queries := store.New(pool)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, queries, pool, hub, verifier)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting server on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}

// newVerifier builds the single-admin credential verifier. A precomputed
// bcrypt hash wins; otherwise the dev password is hashed at startup.
func newVerifier(cfg *config.Config) (auth.CredentialVerifier, error) {
	if cfg.AdminPasswordHash != "" {
		return auth.NewSingleAdminVerifier(cfg.AdminUsername, cfg.AdminPasswordHash), nil
	}
	log.Println("WARNING: ADMIN_PASSWORD_HASH not set, hashing ADMIN_PASSWORD at startup. Set a hash in production!")
	return auth.NewSingleAdminVerifierFromPassword(cfg.AdminUsername, cfg.AdminPassword)
}
