package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/YashDiwan-16/algorand-sub001/internal/sentinel"
)

// Postgres persists ledger simulation state in a key-value table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed key-value store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM ledger_state WHERE key = $1`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get ledger state: %w", err)
	}
	return value, nil
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO ledger_state (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("put ledger state: %w", err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM ledger_state WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete ledger state: %w", err)
	}
	return nil
}

func (p *Postgres) ListPrefix(ctx context.Context, prefix string) (map[string][]byte, error) {
	// grant keys contain `_`, which LIKE treats as a wildcard; the prefix
	// must match literally.
	rows, err := p.db.QueryContext(ctx,
		`SELECT key, value FROM ledger_state WHERE key LIKE $1 || '%' ESCAPE '\'`,
		escapeLikePrefix(prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger state: %w", err)
	}
	defer rows.Close()

	matches := make(map[string][]byte)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan ledger state: %w", err)
		}
		matches[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger state: %w", err)
	}
	return matches, nil
}

// escapeLikePrefix backslash-escapes LIKE metacharacters so a prefix built
// from caller data never over-matches.
func escapeLikePrefix(prefix string) string {
	return likeEscaper.Replace(prefix)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
