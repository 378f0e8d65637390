package models

import "time"

// LinkToken is a one-time code that binds a chat address to an account
type LinkToken struct {
	Code            string     `json:"code" db:"code"`
	OwnerID         string     `json:"owner_id" db:"owner_id"`
	DefaultCurrency string     `json:"default_currency" db:"default_currency" example:"USD"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt          *time.Time `json:"used_at,omitempty" db:"used_at"`
	UsedBy          string     `json:"used_by,omitempty" db:"used_by"`
}

// LinkedIdentity is the binding between an account and a messaging address
type LinkedIdentity struct {
	OwnerID          string    `json:"owner_id" db:"owner_id"`
	MessagingAddress string    `json:"messaging_address" db:"messaging_address" example:"+14155550123"`
	LinkedAt         time.Time `json:"linked_at" db:"linked_at"`
	Currency         string    `json:"currency" db:"currency" example:"USD"`
}

// LinkStatus is the outcome of a verification attempt
type LinkStatus string

const (
	LinkLinked      LinkStatus = "linked"
	LinkInvalid     LinkStatus = "invalid"
	LinkExpired     LinkStatus = "expired"
	LinkAlreadyUsed LinkStatus = "already_used"
	LinkRateLimited LinkStatus = "rate_limited"
	LinkFailed      LinkStatus = "error"
)

// LinkOutcome carries the status and, when linked, the bound account
type LinkOutcome struct {
	Status   LinkStatus `json:"status"`
	OwnerID  string     `json:"owner_id,omitempty"`
	Currency string     `json:"currency,omitempty"`
}
