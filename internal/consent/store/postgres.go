package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/YashDiwan-16/algorand-sub001/internal/consent/models"
	"github.com/YashDiwan-16/algorand-sub001/internal/sentinel"
)

// PostgresStore persists consent requests in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed consent request store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const consentColumns = `id, request_id, sender, recipient, document_types, reason, status,
	permissions, expiry, granted_at, revoked_at, created_at, documents, ledger_tx_id`

func (s *PostgresStore) Create(ctx context.Context, req *models.Request) error {
	docTypes, docs, perms, err := encodeJSONFields(req)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO consent_requests (` + consentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (request_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		req.ID, req.RequestID, req.Sender, req.Recipient, docTypes, req.Reason,
		string(req.Status), perms, req.Expiry, req.GrantedAt, req.RevokedAt,
		req.CreatedAt, docs, req.LedgerTxID,
	)
	if err != nil {
		return fmt.Errorf("create consent request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create consent request: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrDuplicate
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, idOrRequestID string) (*models.Request, error) {
	// requestId takes precedence over the internal id
	query := `
		SELECT ` + consentColumns + `
		FROM consent_requests
		WHERE request_id = $1 OR id = $1
		ORDER BY (request_id = $1) DESC
		LIMIT 1
	`
	req, err := scanRequest(s.db.QueryRowContext(ctx, query, idOrRequestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find consent request: %w", err)
	}
	return req, nil
}

// Update locks the row, applies merge, and writes the result back inside a
// single transaction so concurrent updates serialize per requestId.
func (s *PostgresStore) Update(ctx context.Context, idOrRequestID string, merge func(models.Request) (models.Request, error)) (*models.Request, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin consent update tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		SELECT ` + consentColumns + `
		FROM consent_requests
		WHERE request_id = $1 OR id = $1
		ORDER BY (request_id = $1) DESC
		LIMIT 1
		FOR UPDATE
	`
	current, err := scanRequest(tx.QueryRowContext(ctx, query, idOrRequestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find consent request for update: %w", err)
	}

	merged, err := merge(*current)
	if err != nil {
		return nil, err
	}

	docTypes, docs, perms, err := encodeJSONFields(&merged)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE consent_requests
		SET document_types = $2, reason = $3, status = $4, permissions = $5,
			expiry = $6, granted_at = $7, revoked_at = $8, documents = $9,
			ledger_tx_id = $10
		WHERE request_id = $1
	`,
		merged.RequestID, docTypes, merged.Reason, string(merged.Status), perms,
		merged.Expiry, merged.GrantedAt, merged.RevokedAt, docs,
		merged.LedgerTxID,
	)
	if err != nil {
		return nil, fmt.Errorf("update consent request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit consent update: %w", err)
	}
	return &merged, nil
}

func (s *PostgresStore) FindByParticipant(ctx context.Context, address string) ([]*models.Request, error) {
	query := `
		SELECT ` + consentColumns + `
		FROM consent_requests
		WHERE sender = $1 OR recipient = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("list consent requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consent request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consent requests: %w", err)
	}
	return requests, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.Request, error) {
	var (
		req      models.Request
		docTypes []byte
		docs     []byte
		perms    []byte
		status   string
	)
	err := row.Scan(
		&req.ID, &req.RequestID, &req.Sender, &req.Recipient, &docTypes,
		&req.Reason, &status, &perms, &req.Expiry, &req.GrantedAt,
		&req.RevokedAt, &req.CreatedAt, &docs, &req.LedgerTxID,
	)
	if err != nil {
		return nil, err
	}
	req.Status = models.Status(status)
	if err := json.Unmarshal(docTypes, &req.DocumentTypes); err != nil {
		return nil, fmt.Errorf("decode document types: %w", err)
	}
	if err := json.Unmarshal(docs, &req.Documents); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	if err := json.Unmarshal(perms, &req.Permissions); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	return &req, nil
}

func encodeJSONFields(req *models.Request) (docTypes, docs, perms []byte, err error) {
	if docTypes, err = json.Marshal(emptyIfNil(req.DocumentTypes)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode document types: %w", err)
	}
	if docs, err = json.Marshal(emptyIfNil(req.Documents)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode documents: %w", err)
	}
	if perms, err = json.Marshal(req.Permissions); err != nil {
		return nil, nil, nil, fmt.Errorf("encode permissions: %w", err)
	}
	return docTypes, docs, perms, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
