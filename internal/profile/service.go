package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pictocat/pictocat/internal/notification"
	"github.com/pictocat/pictocat/internal/userdata"
)

const (
	eventSignup         = "signup"
	maxUsernameBase     = 20
	maxUsernameAttempts = 50
	minSearchLength     = 2
	searchLimit         = 10
)

var (
	// ErrInvalidUsername rejects handles that do not start with @ or are too short.
	ErrInvalidUsername = errors.New("invalid username format")
	// ErrInvalidSignup rejects webhook payloads without a user id or e-mail.
	ErrInvalidSignup = errors.New("user data missing from event")

	usernameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// StarterImages returns the image ids unlocked for every new profile.
type StarterImages func(ctx context.Context) ([]int, error)

// Service manages the profile lifecycle and the stored game document.
type Service struct {
	repo     Repository
	starter  StarterImages
	notifier notification.Notifier
	logger   *slog.Logger
	suffix   func() int
	onSave   func(applied bool)
}

// NewService creates a profile service. starter may be nil, in which case new
// profiles start with no unlocked images.
func NewService(repo Repository, starter StarterImages, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		starter:  starter,
		notifier: notifier,
		logger:   logger,
		suffix:   func() int { return 1000 + rand.IntN(9000) },
	}
}

// Get returns the profile for a user id, or ErrNotFound while it is still
// being provisioned.
func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	p.Data = userdata.Normalize(p.Data)
	return p, nil
}

// Provision handles the identity provider signup webhook. It is idempotent:
// a second delivery for the same user returns the existing profile with
// created=false. Events other than signup are ignored.
func (s *Service) Provision(ctx context.Context, event SignupEvent) (Profile, bool, error) {
	if event.Event != eventSignup {
		return Profile{}, false, nil
	}
	if event.User.ID == "" || event.User.Email == "" {
		return Profile{}, false, ErrInvalidSignup
	}

	existing, err := s.repo.FindByID(ctx, event.User.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Profile{}, false, err
	}

	username, err := s.uniqueUsername(ctx, usernameBase(event.User.Email))
	if err != nil {
		return Profile{}, false, err
	}
	p, err := s.create(ctx, event.User.ID, username, true)
	if errors.Is(err, ErrExists) {
		existing, findErr := s.repo.FindByID(ctx, event.User.ID)
		return existing, false, findErr
	}
	if err != nil {
		return Profile{}, false, err
	}
	return p, true, nil
}

// Create registers a profile with an explicit username such as "@michi".
func (s *Service) Create(ctx context.Context, id, username string) (Profile, error) {
	if !strings.HasPrefix(username, "@") || len(username) < 4 {
		return Profile{}, ErrInvalidUsername
	}
	if _, err := s.repo.FindByID(ctx, id); err == nil {
		return Profile{}, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return Profile{}, err
	}
	taken, err := s.repo.UsernameTaken(ctx, username)
	if err != nil {
		return Profile{}, err
	}
	if taken {
		return Profile{}, ErrUsernameTaken
	}
	return s.create(ctx, id, username, false)
}

// ObserveSaves registers fn to be called after every successful save.
func (s *Service) ObserveSaves(fn func(applied bool)) {
	s.onSave = fn
}

// SaveData overwrites the stored document. The version must grow with every
// write of a session; older versions are acknowledged but not applied.
func (s *Service) SaveData(ctx context.Context, id string, data userdata.UserData, version int64) (SaveResult, error) {
	applied, err := s.repo.SaveData(ctx, id, data, version)
	if err != nil {
		return SaveResult{}, err
	}
	if s.onSave != nil {
		s.onSave(applied)
	}
	if !applied && s.logger != nil {
		s.logger.Info("profile.save ignored stale version",
			slog.String("user_id", id),
			slog.Int64("version", version),
		)
	}
	return SaveResult{Applied: applied, Version: version}, nil
}

// Search finds users by partial username. Queries shorter than two
// characters return nothing.
func (s *Service) Search(ctx context.Context, query string) ([]PublicUser, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchLength {
		return []PublicUser{}, nil
	}
	return s.repo.Search(ctx, query, searchLimit)
}

func (s *Service) create(ctx context.Context, id, username string, verified bool) (Profile, error) {
	var starter []int
	if s.starter != nil {
		ids, err := s.starter(ctx)
		if err != nil {
			return Profile{}, fmt.Errorf("starter images: %w", err)
		}
		starter = ids
	}

	p := Profile{
		ID:         id,
		Username:   username,
		Data:       userdata.Initial(starter),
		Role:       RoleUser,
		IsVerified: verified,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Profile{}, err
	}

	if s.logger != nil {
		s.logger.Info("profile.provision completed",
			slog.String("user_id", p.ID),
			slog.String("username", p.Username),
			slog.Int("starter_images", len(starter)),
		)
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindProfileProvisioned,
			Destination: p.ID,
			Body:        fmt.Sprintf("Welcome %s", p.Username),
		})
	}
	return p, nil
}

func (s *Service) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		taken, err := s.repo.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, s.suffix())
	}
	return "", fmt.Errorf("no free username for %s after %d attempts", base, maxUsernameAttempts)
}

// usernameBase derives "@" plus the sanitised local part of an e-mail.
func usernameBase(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if folded, _, err := transform.String(foldAccents(), local); err == nil {
		local = folded
	}
	local = usernameChars.ReplaceAllString(local, "")
	if len(local) > maxUsernameBase {
		local = local[:maxUsernameBase]
	}
	if local == "" {
		local = "gato"
	}
	return "@" + local
}

// foldAccents strips combining marks so "josé" becomes "jose".
func foldAccents() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
