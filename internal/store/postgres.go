package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
	"github.com/MikeSquared-Agency/Vicinity/internal/geo"
)

//go:embed schema.sql
var schema string

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Migrate creates the amenities table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) FetchAmenities(ctx context.Context, category amenity.Category) ([]amenity.Amenity, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT name, category, lat, lon
		FROM amenities WHERE category = $1
		ORDER BY id`, string(category))
	if err != nil {
		return nil, fmt.Errorf("query %s amenities: %w", category, err)
	}
	defer rows.Close()

	list, err := scanAmenities(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s amenities: %w", category, err)
	}
	return amenity.Dedupe(list), nil
}

func (s *PostgresStore) UpsertAmenities(ctx context.Context, list []amenity.Amenity) (int, error) {
	for _, a := range list {
		if err := Validate(a); err != nil {
			return 0, err
		}
	}
	if len(list) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, a := range list {
		batch.Queue(`
			INSERT INTO amenities (category, name, lat, lon)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (category, name, lat, lon) DO NOTHING`,
			string(a.Category), a.Name, a.Lat, a.Lon)
	}

	br := tx.SendBatch(ctx, batch)
	inserted := 0
	for range list {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("insert amenity: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (s *PostgresStore) CountByCategory(ctx context.Context) (map[amenity.Category]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT category, count(*) FROM amenities GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("count amenities: %w", err)
	}
	defer rows.Close()

	counts := make(map[amenity.Category]int)
	for rows.Next() {
		var (
			cat string
			n   int64
		)
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		counts[amenity.Category(cat)] = int(n)
	}
	return counts, rows.Err()
}

func scanAmenities(rows pgx.Rows) ([]amenity.Amenity, error) {
	var list []amenity.Amenity
	for rows.Next() {
		var (
			a        amenity.Amenity
			cat      string
			lat, lon float64
		)
		if err := rows.Scan(&a.Name, &cat, &lat, &lon); err != nil {
			return nil, err
		}
		a.Category = amenity.Category(cat)
		a.Point = geo.NewPoint(lat, lon)
		list = append(list, a)
	}
	return list, rows.Err()
}
