package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/places/pkg/place"
)

// PlaceRepository implements place.Repository backed by PostgreSQL (pgx).
// The paired create/delete writes against places and users.place_ids run
// inside one transaction, so the bidirectional relationship is never
// observable half-written.
type PlaceRepository struct {
	pool *pgxpool.Pool
}

func NewPlaceRepository(pool *pgxpool.Pool) (*PlaceRepository, error) {
	r := &PlaceRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PlaceRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS places (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	image_ref TEXT NOT NULL DEFAULT '',
	lat DOUBLE PRECISION NOT NULL,
	lng DOUBLE PRECISION NOT NULL,
	address TEXT NOT NULL,
	creator_id UUID NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_places_creator ON places(creator_id);
`)
	return err
}

func (r *PlaceRepository) Create(ctx context.Context, p place.Place) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
INSERT INTO places (id, title, description, image_ref, lat, lng, address, creator_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, p.ID, p.Title, p.Description, p.ImageRef, p.Location.Lat, p.Location.Lng, p.Address, p.CreatorID, p.CreatedAt)
	if err != nil {
		return err
	}
	// array_append inside a single UPDATE is an atomic read-modify-write
	// of the owner row; concurrent creates for one user serialize on the
	// row lock and neither append is lost.
	cmd, err := tx.Exec(ctx, `
UPDATE users SET place_ids = array_append(place_ids, $1) WHERE id = $2
`, p.ID, p.CreatorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return place.ErrUserNotFound
	}
	return tx.Commit(ctx)
}

func (r *PlaceRepository) GetByID(ctx context.Context, id uuid.UUID) (place.Place, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, title, description, image_ref, lat, lng, address, creator_id, created_at
FROM places WHERE id = $1
`, id)
	return scanPlace(row)
}

func (r *PlaceRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]place.Place, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, title, description, image_ref, lat, lng, address, creator_id, created_at
FROM places WHERE creator_id = $1 ORDER BY created_at
`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var places []place.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

func (r *PlaceRepository) Update(ctx context.Context, p place.Place) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE places SET title = $1, description = $2 WHERE id = $3
`, p.Title, p.Description, p.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return place.ErrNotFound
	}
	return nil
}

func (r *PlaceRepository) Delete(ctx context.Context, p place.Place) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmd, err := tx.Exec(ctx, `DELETE FROM places WHERE id = $1`, p.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return place.ErrNotFound
	}
	_, err = tx.Exec(ctx, `
UPDATE users SET place_ids = array_remove(place_ids, $1) WHERE id = $2
`, p.ID, p.CreatorID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanPlace(row pgx.Row) (place.Place, error) {
	var p place.Place
	var createdAt time.Time
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ImageRef, &p.Location.Lat, &p.Location.Lng, &p.Address, &p.CreatorID, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return place.Place{}, place.ErrNotFound
		}
		return place.Place{}, err
	}
	p.CreatedAt = createdAt.UTC()
	return p, nil
}
