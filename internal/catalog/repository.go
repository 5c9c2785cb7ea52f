package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pictocat/pictocat/internal/rewards"
)

// Repository stores the image catalog.
type Repository interface {
	List(ctx context.Context) ([]rewards.Image, error)
	OriginalIDs(ctx context.Context) (map[string]struct{}, error)
	Insert(ctx context.Context, img SeedImage) error
	Count(ctx context.Context) (int, error)
}

// PostgresRepository reads the cats table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a catalog repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns every image ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]rewards.Image, error) {
	rows, err := r.db.Query(ctx, `SELECT id, theme, url FROM cats ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []rewards.Image{}
	for rows.Next() {
		var img rewards.Image
		if err := rows.Scan(&img.ID, &img.Theme, &img.URL); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// OriginalIDs returns the master catalog ids already present.
func (r *PostgresRepository) OriginalIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT original_id FROM cats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// Insert adds one image; rows that already exist are skipped.
func (r *PostgresRepository) Insert(ctx context.Context, img SeedImage) error {
	_, err := r.db.Exec(ctx, `INSERT INTO cats (theme, url, original_id) VALUES ($1, $2, $3)
        ON CONFLICT (original_id) DO NOTHING`, img.Theme, img.URL, img.OriginalID)
	return err
}

// Count returns the number of catalog rows.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cats`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
