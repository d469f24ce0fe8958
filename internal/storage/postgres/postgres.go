package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/vtarasov/url-shortener/internal/storage"
	"github.com/vtarasov/url-shortener/migrations"
)

// Storage implements MappingStore on top of a pgx connection pool. The
// uniqueness of short codes is enforced by the primary key; a violation
// is reported as storage.ErrCodeExists.
type Storage struct {
	pool *pgxpool.Pool
}

// NewStorage connects to the database, applies pending migrations and
// returns a ready storage.
func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	if dsn == "" {
		return nil, errors.New("database connection string is empty")
	}

	if err := migrate(ctx, dsn); err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Storage{pool: pool}, nil
}

func migrate(ctx context.Context, dsn string) error {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return err
	}

	db := stdlib.OpenDB(*connConfig)
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

// InsertIfAbsent inserts the mapping, relying on the primary key for the
// check-and-set.
func (s *Storage) InsertIfAbsent(ctx context.Context, code, originalURL string) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO urls (short_code, original_url) VALUES ($1, $2)",
		code, originalURL)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrCodeExists
		}
		return fmt.Errorf("error inserting URL into database: %w", err)
	}

	return nil
}

// Get retrieves the original URL for a given short code.
func (s *Storage) Get(ctx context.Context, code string) (string, error) {
	var originalURL string
	err := s.pool.QueryRow(ctx,
		"SELECT original_url FROM urls WHERE short_code = $1", code).Scan(&originalURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("error querying database: %w", err)
	}

	return originalURL, nil
}

// Ping checks database connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
