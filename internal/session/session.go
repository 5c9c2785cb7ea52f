package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pictocat/pictocat/internal/notification"
	"github.com/pictocat/pictocat/internal/profile"
	"github.com/pictocat/pictocat/internal/rewards"
	"github.com/pictocat/pictocat/internal/userdata"
)

// ErrInvalidPhrase rejects custom phrases without text or image.
var ErrInvalidPhrase = errors.New("phrase needs text and an image")

// Options configures a session.
type Options struct {
	Config   Config
	Notifier notification.Notifier
	Logger   *slog.Logger
	// Rand drives envelope draws. Defaults to a time-seeded source.
	Rand rewards.Source
}

// Session is the state of one logged-in user: created by Open at login,
// destroyed by Close at logout.
type Session struct {
	userID   string
	username string
	gateway  Gateway
	catalog  []rewards.Image
	store    *Store
	syncer   *Syncer
	notifier notification.Notifier
	logger   *slog.Logger

	randMu sync.Mutex
	rand   rewards.Source
}

// Open loads the catalog and the profile concurrently, waiting for the
// profile to be provisioned if needed. Load failures are returned and leave
// no session behind.
func Open(ctx context.Context, gateway Gateway, opts Options) (*Session, error) {
	cfg := opts.Config.withDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(logger)
	}
	src := opts.Rand
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var (
		catalog []rewards.Image
		prof    profile.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		images, err := gateway.FetchCatalog(gctx)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		catalog = images
		return nil
	})
	g.Go(func() error {
		p, err := WaitForProfile(gctx, gateway, cfg, logger)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		prof = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger = logger.With(slog.String("user_id", prof.ID))
	store := NewStore()
	store.Load(userdata.Normalize(prof.Data))

	s := &Session{
		userID:   prof.ID,
		username: prof.Username,
		gateway:  gateway,
		catalog:  catalog,
		store:    store,
		syncer:   NewSyncer(gateway, prof.Version, cfg, logger),
		notifier: notifier,
		logger:   logger,
		rand:     src,
	}
	logger.Info("session opened", slog.Int("catalog_size", len(catalog)), slog.Int64("version", prof.Version))
	return s, nil
}

// UserID returns the id of the session owner.
func (s *Session) UserID() string { return s.userID }

// Username returns the public handle of the session owner.
func (s *Session) Username() string { return s.username }

// Catalog returns a copy of the image catalog.
func (s *Session) Catalog() []rewards.Image {
	out := make([]rewards.Image, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// Snapshot returns the current document.
func (s *Session) Snapshot() userdata.UserData {
	d, _ := s.store.Snapshot()
	return d
}

// Flush writes any pending snapshot now.
func (s *Session) Flush(ctx context.Context) error {
	return s.syncer.Flush(ctx)
}

// Close flushes pending changes and stops background work.
func (s *Session) Close() {
	s.syncer.Close()
	s.logger.Info("session closed")
}

// apply runs a transform, schedules a write when it changed anything and
// reports business rejections to the user.
func (s *Session) apply(ctx context.Context, fn Transform) (userdata.UserData, error) {
	next, changed, err := s.store.Update(fn)
	if err != nil {
		if userdata.IsRejection(err) {
			s.notifyRejection(ctx, err)
		}
		return next, err
	}
	if changed {
		s.syncer.Schedule(next)
	}
	return next, nil
}

// SetPhraseImage selects the image shown with a phrase. A nil imageID clears it.
func (s *Session) SetPhraseImage(ctx context.Context, phraseID string, imageID *int) (userdata.UserData, error) {
	return s.apply(ctx, func(d userdata.UserData) (userdata.UserData, error) {
		return userdata.SetPhraseImage(d, phraseID, imageID)
	})
}

// AddPhrase creates a custom phrase with a fresh id.
func (s *Session) AddPhrase(ctx context.Context, text string, imageID *int) (userdata.Phrase, error) {
	text = strings.TrimSpace(text)
	if text == "" || imageID == nil {
		return userdata.Phrase{}, ErrInvalidPhrase
	}
	phrase := userdata.Phrase{
		ID:              "custom_" + uuid.NewString(),
		Text:            text,
		SelectedImageID: userdata.ImageID(*imageID),
		IsCustom:        true,
	}
	_, err := s.apply(ctx, func(d userdata.UserData) (userdata.UserData, error) {
		return userdata.AddPhrase(d, phrase), nil
	})
	if err != nil {
		return userdata.Phrase{}, err
	}
	s.notify(ctx, notification.KindPhrase, fmt.Sprintf("phrase %q added", text))
	return phrase, nil
}

// UpdatePhrase merges the provided fields into a phrase.
func (s *Session) UpdatePhrase(ctx context.Context, phraseID string, update userdata.PhraseUpdate) (userdata.UserData, error) {
	if update.Text != nil {
		text := strings.TrimSpace(*update.Text)
		if text == "" {
			return s.Snapshot(), ErrInvalidPhrase
		}
		update.Text = &text
	}
	next, err := s.apply(ctx, func(d userdata.UserData) (userdata.UserData, error) {
		return userdata.UpdatePhrase(d, phraseID, update)
	})
	if err == nil {
		s.notify(ctx, notification.KindPhrase, "phrase updated")
	}
	return next, err
}

// DeletePhrase removes a custom phrase.
func (s *Session) DeletePhrase(ctx context.Context, phraseID string) (userdata.UserData, error) {
	next, err := s.apply(ctx, func(d userdata.UserData) (userdata.UserData, error) {
		return userdata.DeletePhrase(d, phraseID)
	})
	if err == nil {
		s.notify(ctx, notification.KindPhrase, "phrase deleted")
	}
	return next, err
}

// PublishPhrase shares or withdraws a phrase. The local flag is updated
// right away; the community call is best effort and only logged on failure.
func (s *Session) PublishPhrase(ctx context.Context, phraseID string, public bool) (userdata.UserData, error) {
	next, err := s.apply(ctx, func(d userdata.UserData) (userdata.UserData, error) {
		return userdata.SetPhrasePublic(d, phraseID, public)
	})
	if err != nil {
		return next, err
	}

	phrase, _ := next.FindPhrase(phraseID)
	var image rewards.Image
	if phrase.SelectedImageID != nil {
		image, _ = s.image(*phrase.SelectedImageID)
	}
	if err := s.gateway.PublishPhrase(ctx, phrase, image, public); err != nil {
		s.logger.Warn("publish phrase failed",
			slog.String("phrase_id", phraseID), slog.Bool("public", public), slog.Any("error", err))
	}
	return next, nil
}

// PurchaseEnvelope buys an envelope at the current level price.
func (s *Session) PurchaseEnvelope(ctx context.Context, id rewards.EnvelopeID) (userdata.EnvelopeResult, error) {
	var res userdata.EnvelopeResult
	_, err := s.apply(ctx, func(d userdata.UserData) (userdata.UserData, error) {
		s.randMu.Lock()
		defer s.randMu.Unlock()
		next, r, err := userdata.PurchaseEnvelope(d, id, s.catalog, s.rand)
		res = r
		return next, err
	})
	if err != nil {
		return userdata.EnvelopeResult{}, err
	}
	s.notify(ctx, notification.KindEnvelopeOpened,
		fmt.Sprintf("%s opened: %d new images for %d coins", res.Envelope.Name, len(res.NewImages), res.Cost))
	s.notifyLevelUps(ctx, res.LevelUps)
	return res, nil
}

// PurchaseUpgrade buys a permanent upgrade.
func (s *Session) PurchaseUpgrade(ctx context.Context, id rewards.UpgradeID) (userdata.UpgradeResult, error) {
	var res userdata.UpgradeResult
	_, err := s.apply(ctx, func(d userdata.UserData) (userdata.UserData, error) {
		next, r, err := userdata.PurchaseUpgrade(d, id)
		res = r
		return next, err
	})
	if err != nil {
		return userdata.UpgradeResult{}, err
	}
	s.notify(ctx, notification.KindUpgradePurchased, fmt.Sprintf("%s unlocked", res.Upgrade.Name))
	return res, nil
}

// ApplyGameResult credits a finished mini-game, applying the golden paw
// bonus when it was purchased.
func (s *Session) ApplyGameResult(ctx context.Context, result userdata.GameResult) (userdata.GameReward, error) {
	var reward userdata.GameReward
	_, err := s.apply(ctx, func(d userdata.UserData) (userdata.UserData, error) {
		next, r := userdata.ApplyGameResult(d, result, d.HasUpgrade(rewards.UpgradeGoldenPaw))
		reward = r
		return next, nil
	})
	if err != nil {
		return userdata.GameReward{}, err
	}
	s.notify(ctx, notification.KindGameReward, fmt.Sprintf("+%d coins, +%d xp", reward.Coins, reward.XP))
	s.notifyLevelUps(ctx, reward.LevelUps)
	return reward, nil
}

func (s *Session) image(id int) (rewards.Image, bool) {
	for _, img := range s.catalog {
		if img.ID == id {
			return img, true
		}
	}
	return rewards.Image{}, false
}

func (s *Session) notifyLevelUps(ctx context.Context, levels []int) {
	for _, level := range levels {
		s.notify(ctx, notification.KindLevelUp, fmt.Sprintf("level %d reached", level))
	}
}

func (s *Session) notifyRejection(ctx context.Context, err error) {
	kind := notification.KindPurchaseRejected
	switch {
	case errors.Is(err, userdata.ErrNothingToUnlock):
		kind = notification.KindNothingToUnlock
	case errors.Is(err, userdata.ErrPhraseNotFound), errors.Is(err, userdata.ErrPhraseNotCustom):
		kind = notification.KindPhrase
	}
	s.notify(ctx, kind, err.Error())
}

func (s *Session) notify(ctx context.Context, kind, body string) {
	err := s.notifier.Send(ctx, notification.Message{Kind: kind, Destination: s.userID, Body: body})
	if err != nil {
		s.logger.Warn("notification failed", slog.String("kind", kind), slog.Any("error", err))
	}
}
