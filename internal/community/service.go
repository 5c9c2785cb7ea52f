package community

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pictocat/pictocat/internal/profile"
)

// ErrInvalidPhrase rejects publish requests without a phrase id or text.
var ErrInvalidPhrase = errors.New("phrase id and text are required")

// Service publishes phrases and serves public profiles.
type Service struct {
	repo     Repository
	profiles profile.Repository
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a community service.
func NewService(repo Repository, profiles profile.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, profiles: profiles, logger: logger, now: time.Now}
}

// Publish shares or withdraws one of the caller's phrases.
func (s *Service) Publish(ctx context.Context, userID string, in PublishInput) error {
	if in.Phrase.ID == "" {
		return ErrInvalidPhrase
	}
	if !in.IsPublic {
		if err := s.repo.Unpublish(ctx, userID, in.Phrase.ID); err != nil {
			return err
		}
		s.logger.Info("phrase unpublished", slog.String("user_id", userID), slog.String("phrase_id", in.Phrase.ID))
		return nil
	}

	if strings.TrimSpace(in.Phrase.Text) == "" {
		return ErrInvalidPhrase
	}
	if _, err := s.profiles.FindByID(ctx, userID); err != nil {
		return err
	}
	err := s.repo.Publish(ctx, PublicPhrase{
		UserID:      userID,
		PhraseID:    in.Phrase.ID,
		Text:        in.Phrase.Text,
		ImageURL:    in.Image.URL,
		ImageTheme:  in.Image.Theme,
		PublishedAt: s.now().UTC(),
	})
	if err != nil {
		return err
	}
	s.logger.Info("phrase published", slog.String("user_id", userID), slog.String("phrase_id", in.Phrase.ID))
	return nil
}

// PublicProfile returns a user's handle and shared phrases.
func (s *Service) PublicProfile(ctx context.Context, username string) (PublicProfile, error) {
	p, err := s.profiles.FindByUsername(ctx, username)
	if err != nil {
		return PublicProfile{}, err
	}
	phrases, err := s.repo.ListByUser(ctx, p.ID)
	if err != nil {
		return PublicProfile{}, err
	}
	return PublicProfile{Username: p.Username, IsVerified: p.IsVerified, Phrases: phrases}, nil
}
