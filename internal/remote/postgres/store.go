// Package postgres implements [remote.DocumentStore] on a single PostgreSQL documents table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/reminisce/internal/remote"
	"github.com/desertthunder/reminisce/internal/remote/postgres/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a [remote.DocumentStore] backed by PostgreSQL through the pgx stdlib driver.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects with the pgx driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", remote.ErrUnreachable, err)
	}
	return db, nil
}

// Migrate brings the documents schema up to date.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to migrate documents schema: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const selectDocuments = `SELECT id, owner_id, ts, data FROM documents`

// List returns documents of a collection. Without ordering, documents are sorted by id.
func (s *Store) List(ctx context.Context, collection string, q remote.Query) ([]remote.Document, error) {
	var sb strings.Builder
	sb.WriteString(selectDocuments)
	sb.WriteString(" WHERE collection = $1")
	args := []any{collection}

	if q.OwnerID != "" {
		args = append(args, q.OwnerID)
		fmt.Fprintf(&sb, " AND owner_id = $%d", len(args))
	}
	if q.OrderByTimestampDesc {
		sb.WriteString(" ORDER BY ts DESC, seq DESC")
	} else {
		sb.WriteString(" ORDER BY id")
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []remote.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
	}
	return docs, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (*remote.Document, error) {
	row := s.db.QueryRowContext(ctx, selectDocuments+" WHERE collection = $1 AND id = $2", collection, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, remote.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return &doc, nil
}

func (s *Store) Set(ctx context.Context, collection string, doc remote.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", remote.ErrInvalidDocument)
	}
	query := `
		INSERT INTO documents (collection, id, owner_id, ts, data, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (collection, id) DO UPDATE
		SET owner_id = EXCLUDED.owner_id, ts = EXCLUDED.ts, data = EXCLUDED.data, updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, collection, doc.ID, doc.OwnerID, doc.Timestamp, string(doc.Data)); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, doc.ID, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = $1 AND id = $2", collection, id); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// DeleteOwned clears every listed collection for ownerID in one transaction.
func (s *Store) DeleteOwned(ctx context.Context, ownerID string, collections ...string) error {
	if ownerID == "" {
		return fmt.Errorf("%w: owner id is empty", remote.ErrInvalidDocument)
	}
	return WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		for _, c := range collections {
			if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE collection = $1 AND owner_id = $2", c, ownerID); err != nil {
				return fmt.Errorf("failed to clear %s: %w", c, err)
			}
		}
		return nil
	})
}

// WithTx runs fn inside a transaction, committing on success and rolling back on error or panic.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (remote.Document, error) {
	var (
		doc  remote.Document
		data []byte
	)
	if err := s.Scan(&doc.ID, &doc.OwnerID, &doc.Timestamp, &data); err != nil {
		return remote.Document{}, err
	}
	doc.Data = data
	return doc, nil
}
