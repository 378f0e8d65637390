package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/spenly/backend/internal/models"
)

// TransactionStore persists parsed transactions for the companion app
type TransactionStore interface {
	SaveTransaction(ctx context.Context, rec models.TransactionRecord) (string, error)
	PendingTransactions(ctx context.Context, ownerID string) ([]models.TransactionRecord, error)
	MarkSynced(ctx context.Context, ownerID string, ids []string) (int64, error)
}

// CategoryStore holds each owner's synced category set
type CategoryStore interface {
	Categories(ctx context.Context, ownerID string) ([]models.Category, error)
	ReplaceCategories(ctx context.Context, ownerID string, categories []models.Category) error
}

// PostgresStore implements TransactionStore and CategoryStore
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) SaveTransaction(ctx context.Context, rec models.TransactionRecord) (string, error) {
	if !rec.Amount.IsPositive() {
		return "", ErrNoAmountDetected
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.SyncStatus == "" {
		rec.SyncStatus = models.SyncPending
	}

	var attachment sql.NullString
	if rec.AttachmentReference != "" {
		attachment = sql.NullString{String: rec.AttachmentReference, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_id, amount, currency, vendor, note, category, txn_date, message_kind, attachment_reference, sync_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, rec.ID, rec.OwnerID, rec.Amount.StringFixed(2), rec.Currency, rec.Vendor, rec.Note, rec.Category,
		rec.Date, string(rec.MessageKind), attachment, string(rec.SyncStatus), s.now())
	if err != nil {
		return "", fmt.Errorf("%w: insert transaction: %v", ErrPersistence, err)
	}
	return rec.ID, nil
}

func (s *PostgresStore) PendingTransactions(ctx context.Context, ownerID string) ([]models.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, amount, currency, vendor, note, category, to_char(txn_date, 'YYYY-MM-DD'),
		       message_kind, COALESCE(attachment_reference, ''), sync_status, created_at
		FROM transactions
		WHERE owner_id = $1 AND sync_status = $2
		ORDER BY created_at ASC
	`, ownerID, string(models.SyncPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.TransactionRecord{}
	for rows.Next() {
		var rec models.TransactionRecord
		var amount string
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &amount, &rec.Currency, &rec.Vendor, &rec.Note, &rec.Category,
			&rec.Date, &rec.MessageKind, &rec.AttachmentReference, &rec.SyncStatus, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := rec.Amount.Scan(amount); err != nil {
			return nil, fmt.Errorf("scan amount %q: %w", amount, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) MarkSynced(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET sync_status = $1
		WHERE owner_id = $2 AND id = ANY($3)
	`, string(models.SyncDone), ownerID, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *PostgresStore) Categories(ctx context.Context, ownerID string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_name, category_type, is_custom
		FROM user_categories
		WHERE owner_id = $1
		ORDER BY position ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.Name, &c.Kind, &c.IsCustom); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ReplaceCategories swaps the owner's whole category set in one transaction
func (s *PostgresStore) ReplaceCategories(ctx context.Context, ownerID string, categories []models.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_categories WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO user_categories (owner_id, category_name, category_type, is_custom, position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, category_name, category_type) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range categories {
		if _, err := stmt.ExecContext(ctx, ownerID, c.Name, string(c.Kind), c.IsCustom, i); err != nil {
			return fmt.Errorf("insert category %q: %w", c.Name, err)
		}
	}
	return tx.Commit()
}
