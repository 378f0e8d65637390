package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies which kind of message a transaction was parsed from
type Source string

const (
	SourceText  Source = "text"
	SourceImage Source = "image"
	SourceVoice Source = "voice"
)

// SyncStatus tracks whether the companion app has pulled a record
type SyncStatus string

const (
	SyncPending SyncStatus = "pending_sync"
	SyncDone    SyncStatus = "synced"
)

// DateLayout is the calendar-day format used in prompts, storage and replies
const DateLayout = "2006-01-02"

// ParsedTransaction is the transient result of parsing one message.
// An amount of zero or less means no transaction was found.
type ParsedTransaction struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Vendor   string          `json:"vendor"`
	Note     string          `json:"note"`
	Category string          `json:"category"`
	Date     time.Time       `json:"date"`
	Source   Source          `json:"source"`
}

// HasAmount reports whether the parse found a positive amount
func (p *ParsedTransaction) HasAmount() bool {
	return p != nil && p.Amount.IsPositive()
}

// TransactionRecord is a persisted expense awaiting pickup by the companion app
type TransactionRecord struct {
	ID                  string          `json:"id" db:"id"`
	OwnerID             string          `json:"owner_id" db:"owner_id"`
	Amount              decimal.Decimal `json:"amount" db:"amount"`
	Currency            string          `json:"currency" db:"currency"`
	Vendor              string          `json:"vendor" db:"vendor"`
	Note                string          `json:"note" db:"note"`
	Category            string          `json:"category" db:"category"`
	Date                string          `json:"date" db:"txn_date" example:"2024-05-01"`
	MessageKind         Source          `json:"message_kind" db:"message_kind"`
	AttachmentReference string          `json:"attachment_reference,omitempty" db:"attachment_reference"`
	SyncStatus          SyncStatus      `json:"sync_status" db:"sync_status"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
}

// NewTransactionRecord builds a pending record from a parsed transaction
func NewTransactionRecord(ownerID string, p ParsedTransaction, attachmentRef string) TransactionRecord {
	return TransactionRecord{
		OwnerID:             ownerID,
		Amount:              p.Amount,
		Currency:            p.Currency,
		Vendor:              p.Vendor,
		Note:                p.Note,
		Category:            p.Category,
		Date:                p.Date.Format(DateLayout),
		MessageKind:         p.Source,
		AttachmentReference: attachmentRef,
		SyncStatus:          SyncPending,
	}
}
