// Command devtoken mints bearer tokens for local development. With -server it
// also opens a game session against a running API and prints the player's
// progress, which is a quick end-to-end check of provisioning and saves.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pictocat/pictocat/internal/auth"
	"github.com/pictocat/pictocat/internal/client"
	"github.com/pictocat/pictocat/internal/config"
	"github.com/pictocat/pictocat/internal/logging"
	"github.com/pictocat/pictocat/internal/session"
)

func main() {
	var (
		userID  string
		email   string
		role    string
		baseURL string
	)
	flag.StringVar(&userID, "user", "", "user id (token subject)")
	flag.StringVar(&email, "email", "", "e-mail claim")
	flag.StringVar(&role, "role", "user", "role placed in app_metadata")
	flag.StringVar(&baseURL, "server", "", "API base URL; when set, open a session and print progress")
	flag.Parse()

	if userID == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	token, err := auth.NewService(cfg.JWTSecret, cfg.WebhookSecret).Sign(userID, email, cfg.TokenTTL, role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)

	if baseURL == "" {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New(cfg.LogLevel)
	s, err := session.Open(ctx, client.New(client.Config{BaseURL: baseURL, Token: token}), session.Options{Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "open session: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	d := s.Snapshot()
	fmt.Fprintf(os.Stderr, "%s level=%d xp=%d/%d coins=%d images=%d/%d phrases=%d\n",
		s.Username(), d.PlayerStats.Level, d.PlayerStats.XP, d.PlayerStats.XPToNextLevel,
		d.Coins, len(d.UnlockedImageIDs), len(s.Catalog()), len(d.Phrases))
}
