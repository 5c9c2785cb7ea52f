package community

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pictocat/pictocat/internal/profile"
	"github.com/pictocat/pictocat/internal/userdata"
)

// Repository stores published phrases.
type Repository interface {
	// Publish upserts the phrase and marks it public in the owner's document.
	Publish(ctx context.Context, phrase PublicPhrase) error
	// Unpublish removes the phrase and clears the flag in the owner's document.
	Unpublish(ctx context.Context, userID, phraseID string) error
	ListByUser(ctx context.Context, userID string) ([]PublicPhrase, error)
}

func markPublic(phraseID string, public bool) profile.DataMutator {
	return func(d userdata.UserData) (userdata.UserData, bool) {
		p, ok := d.FindPhrase(phraseID)
		if !ok || p.IsPublic == public {
			return d, false
		}
		next, err := userdata.SetPhrasePublic(d, phraseID, public)
		return next, err == nil
	}
}

// PostgresRepository writes public_phrases and the users document in one
// transaction.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed community repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Publish implements Repository.
func (r *PostgresRepository) Publish(ctx context.Context, phrase PublicPhrase) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if phrase.ID == "" {
		phrase.ID = uuid.NewString()
	}
	_, err = tx.Exec(ctx, `INSERT INTO public_phrases (id, user_id, phrase_id, text, image_url, image_theme, published_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id, phrase_id) DO UPDATE
        SET text = EXCLUDED.text, image_url = EXCLUDED.image_url, image_theme = EXCLUDED.image_theme`,
		phrase.ID, phrase.UserID, phrase.PhraseID, phrase.Text, phrase.ImageURL, phrase.ImageTheme, phrase.PublishedAt.UTC())
	if err != nil {
		return err
	}
	if err := profile.MutateDataTx(ctx, tx, phrase.UserID, markPublic(phrase.PhraseID, true)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Unpublish implements Repository.
func (r *PostgresRepository) Unpublish(ctx context.Context, userID, phraseID string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM public_phrases WHERE user_id = $1 AND phrase_id = $2`, userID, phraseID); err != nil {
		return err
	}
	if err := profile.MutateDataTx(ctx, tx, userID, markPublic(phraseID, false)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListByUser returns the user's public phrases, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]PublicPhrase, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, phrase_id, text, image_url, image_theme, published_at
        FROM public_phrases WHERE user_id = $1 ORDER BY published_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	phrases := []PublicPhrase{}
	for rows.Next() {
		var (
			p  PublicPhrase
			at time.Time
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.PhraseID, &p.Text, &p.ImageURL, &p.ImageTheme, &at); err != nil {
			return nil, err
		}
		p.PublishedAt = at.UTC()
		phrases = append(phrases, p)
	}
	return phrases, rows.Err()
}
