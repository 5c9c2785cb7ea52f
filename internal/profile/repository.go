package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pictocat/pictocat/internal/userdata"
)

var (
	// ErrNotFound means the profile has not been provisioned yet.
	ErrNotFound = errors.New("profile not found")
	// ErrExists is returned when a profile already exists for the user id.
	ErrExists = errors.New("profile already exists")
	// ErrUsernameTaken is returned when another profile owns the username.
	ErrUsernameTaken = errors.New("username already taken")
)

// DataMutator rewrites a stored document in place. It returns false when
// nothing needs to be written.
type DataMutator func(userdata.UserData) (userdata.UserData, bool)

// Repository persists profiles.
type Repository interface {
	Create(ctx context.Context, p Profile) error
	FindByID(ctx context.Context, id string) (Profile, error)
	FindByUsername(ctx context.Context, username string) (Profile, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	// SaveData overwrites the document when version is newer than the stored
	// one. Stale versions are acknowledged with applied=false.
	SaveData(ctx context.Context, id string, data userdata.UserData, version int64) (bool, error)
	// MutateData edits the stored document without touching its version.
	MutateData(ctx context.Context, id string, fn DataMutator) error
	Search(ctx context.Context, query string, limit int) ([]PublicUser, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed profile repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new profile.
func (r *PostgresRepository) Create(ctx context.Context, p Profile) error {
	payload, err := json.Marshal(p.Data)
	if err != nil {
		return fmt.Errorf("encode user data: %w", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, username, data, role, is_verified, data_version, created_at)
        VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7)`, p.ID, p.Username, string(payload), p.Role, p.IsVerified, p.Version, p.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return ErrUsernameTaken
			}
			return ErrExists
		}
		return err
	}
	return nil
}

const selectProfile = `SELECT id, username, data, role, is_verified, data_version, created_at FROM users`

// FindByID fetches a profile by identity provider subject.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, selectProfile+` WHERE id = $1`, id))
}

// FindByUsername fetches a profile by its public handle.
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, selectProfile+` WHERE username = $1`, username))
}

// UsernameTaken reports whether a profile already uses the username.
func (r *PostgresRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// SaveData replaces the document if version is newer than the stored one.
func (r *PostgresRepository) SaveData(ctx context.Context, id string, data userdata.UserData, version int64) (bool, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("encode user data: %w", err)
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET data = $2::jsonb, data_version = $3
        WHERE id = $1 AND data_version < $3`, id, string(payload), version)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() > 0 {
		return true, nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

// MutateData edits the stored document inside its own transaction.
func (r *PostgresRepository) MutateData(ctx context.Context, id string, fn DataMutator) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := MutateDataTx(ctx, tx, id, fn); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// MutateDataTx locks the user row and rewrites its document within tx. A
// missing profile is not an error.
func MutateDataTx(ctx context.Context, tx pgx.Tx, id string, fn DataMutator) error {
	var raw []byte
	if err := tx.QueryRow(ctx, `SELECT data FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	var data userdata.UserData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("decode user data: %w", err)
	}
	next, changed := fn(data)
	if !changed {
		return nil
	}
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode user data: %w", err)
	}
	_, err = tx.Exec(ctx, `UPDATE users SET data = $2::jsonb WHERE id = $1`, id, string(payload))
	return err
}

// Search returns up to limit profiles whose username contains query, case
// insensitively.
func (r *PostgresRepository) Search(ctx context.Context, query string, limit int) ([]PublicUser, error) {
	rows, err := r.db.Query(ctx, `SELECT username, is_verified FROM users
        WHERE username ILIKE $1 ORDER BY username LIMIT $2`, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []PublicUser{}
	for rows.Next() {
		var u PublicUser
		if err := rows.Scan(&u.Username, &u.IsVerified); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanProfile(row pgx.Row) (Profile, error) {
	var (
		p         Profile
		raw       []byte
		createdAt time.Time
	)
	if err := row.Scan(&p.ID, &p.Username, &raw, &p.Role, &p.IsVerified, &p.Version, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	if err := json.Unmarshal(raw, &p.Data); err != nil {
		return Profile{}, fmt.Errorf("decode user data: %w", err)
	}
	p.CreatedAt = createdAt.UTC()
	return p, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
