package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stashdrive/service/internal/errs"
)

// DB is the subset of *pgxpool.Pool used by PostgresStorage.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStorage keeps objects in the "objects" table created by the db
// package migrations. Content is held in a bytea column, so uploads are
// buffered in memory before the insert.
type PostgresStorage struct {
	db         DB
	publicBase string
}

// NewPostgresStorage returns a Storage backed by db.
func NewPostgresStorage(db DB, publicBase string) *PostgresStorage {
	return &PostgresStorage{db: db, publicBase: publicBase}
}

// List returns objects whose key starts with prefix, ordered by key.
func (s *PostgresStorage) List(ctx context.Context, prefix string) ([]Object, error) {
	rows, err := s.db.Query(ctx,
		`SELECT key, size, content_type, etag, metadata, updated_at
		 FROM objects
		 WHERE starts_with(key, $1)
		 ORDER BY key`,
		prefix,
	)
	if err != nil {
		return nil, mapPgError(err, "list objects")
	}
	defer rows.Close()

	var out []Object
	for rows.Next() {
		var o Object
		if err := rows.Scan(&o.Key, &o.Size, &o.ContentType, &o.ETag, &o.Metadata, &o.LastModified); err != nil {
			return nil, mapPgError(err, "scan object")
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "list objects")
	}
	return out, nil
}

// Upload inserts or replaces the object at key.
func (s *PostgresStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if key == "" {
		return errs.New(errs.ErrKindInvalidInput, "object key is empty")
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return errs.Wrap(errs.ErrKindOperationFailed, fmt.Sprintf("read object %q", key), err)
	}
	if size >= 0 && int64(len(content)) != size {
		return errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("object %q: read %d bytes, expected %d", key, len(content), size))
	}
	sum := md5.Sum(content)

	_, err = s.db.Exec(ctx,
		`INSERT INTO objects (key, content, content_type, size, etag, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (key) DO UPDATE
		 SET content = EXCLUDED.content,
		     content_type = EXCLUDED.content_type,
		     size = EXCLUDED.size,
		     etag = EXCLUDED.etag,
		     updated_at = EXCLUDED.updated_at`,
		key, content, contentType, int64(len(content)), hex.EncodeToString(sum[:]),
	)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("put object %q", key))
	}
	return nil
}

// Delete removes the row for key.
func (s *PostgresStorage) Delete(ctx context.Context, key string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM objects WHERE key = $1`, key)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("remove object %q", key))
	}
	if tag.RowsAffected() == 0 {
		return errs.New(errs.ErrKindNotFound, fmt.Sprintf("object %q not found", key))
	}
	return nil
}

// Rename re-keys a single row, replacing any object already at newKey.
func (s *PostgresStorage) Rename(ctx context.Context, oldKey, newKey string) error {
	if oldKey == newKey {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return mapPgError(err, "begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM objects WHERE key = $1`, newKey); err != nil {
		return mapPgError(err, fmt.Sprintf("clear target %q", newKey))
	}

	tag, err := tx.Exec(ctx,
		`UPDATE objects SET key = $2, updated_at = NOW() WHERE key = $1`,
		oldKey, newKey,
	)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("rename %q to %q", oldKey, newKey))
	}
	if tag.RowsAffected() == 0 {
		return errs.New(errs.ErrKindNotFound, fmt.Sprintf("object %q not found", oldKey))
	}

	if err := tx.Commit(ctx); err != nil {
		return mapPgError(err, "commit rename")
	}
	return nil
}

// PublicURL returns the browser-accessible URL for the given key.
func (s *PostgresStorage) PublicURL(key string) string {
	return publicURL(s.publicBase, key)
}

// mapPgError translates pgx errors into *errs.Error.
func mapPgError(err error, msg string) *errs.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505", pgErr.Code == "22021", pgErr.Code == "22001":
			// unique_violation, character_not_in_repertoire, string_data_right_truncation
			return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
		case pgErr.Code == "42501" || pgErr.Code == "28P01":
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case pgErr.Code == "57014":
			return errs.Wrap(errs.ErrKindTimeout, msg, err)
		}
		return errs.Wrap(errs.ErrKindOperationFailed, msg, err)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
