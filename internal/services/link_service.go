package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"net/url"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/spenly/backend/internal/audit"
	"github.com/spenly/backend/internal/config"
	"github.com/spenly/backend/internal/logger"
	"github.com/spenly/backend/internal/models"
)

var linkLog = logger.Component("link")

// LinkService issues and verifies one-time link codes
type LinkService struct {
	db     *sql.DB
	redis  *redis.Client
	config *config.ChatConfig
	audit  *audit.Logger
	now    func() time.Time
}

func NewLinkService(db *sql.DB, redis *redis.Client, cfg *config.ChatConfig, auditLogger *audit.Logger) *LinkService {
	return &LinkService{
		db:     db,
		redis:  redis,
		config: cfg,
		audit:  auditLogger,
		now:    time.Now,
	}
}

// VerifyAndLink consumes code and binds address to the code's owner. The
// returned outcome is always non-nil; domain failures come back as one of
// the link sentinel errors, anything else wraps ErrPersistence.
func (s *LinkService) VerifyAndLink(ctx context.Context, code, address string) (*models.LinkOutcome, error) {
	outcome, err := s.verifyAndLink(ctx, NormalizeLinkCode(code, s.config.LinkPrefix), address)
	linkOutcomesTotal.WithLabelValues(string(outcome.Status)).Inc()
	if s.audit != nil {
		s.audit.LogLink(outcome.OwnerID, address, string(outcome.Status))
	}
	return outcome, err
}

func (s *LinkService) verifyAndLink(ctx context.Context, code, address string) (*models.LinkOutcome, error) {
	if code == "" {
		return &models.LinkOutcome{Status: models.LinkInvalid}, ErrInvalidLinkCode
	}
	if s.attemptsExceeded(ctx, address) {
		return &models.LinkOutcome{Status: models.LinkRateLimited}, ErrLinkRateLimited
	}
	s.recordAttempt(ctx, address)

	failed := &models.LinkOutcome{Status: models.LinkFailed}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return failed, fmt.Errorf("%w: begin link: %v", ErrPersistence, err)
	}
	defer tx.Rollback()

	var (
		token  models.LinkToken
		usedAt sql.NullTime
	)
	err = tx.QueryRowContext(ctx, `
		SELECT owner_id, default_currency, expires_at, used_at
		FROM link_tokens
		WHERE code = $1
		FOR UPDATE
	`, code).Scan(&token.OwnerID, &token.DefaultCurrency, &token.ExpiresAt, &usedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.LinkOutcome{Status: models.LinkInvalid}, ErrInvalidLinkCode
	}
	if err != nil {
		return failed, fmt.Errorf("%w: lookup link code: %v", ErrPersistence, err)
	}

	if usedAt.Valid {
		return &models.LinkOutcome{Status: models.LinkAlreadyUsed}, ErrLinkCodeAlreadyUsed
	}
	now := s.now()
	if now.After(token.ExpiresAt) {
		return &models.LinkOutcome{Status: models.LinkExpired}, ErrLinkCodeExpired
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE link_tokens
		SET used_at = $1, used_by = $2
		WHERE code = $3 AND used_at IS NULL
	`, now, address, code)
	if err != nil {
		return failed, fmt.Errorf("%w: consume link code: %v", ErrPersistence, err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return &models.LinkOutcome{Status: models.LinkAlreadyUsed}, ErrLinkCodeAlreadyUsed
	}

	currency := NormalizeCurrency(token.DefaultCurrency, s.config.DefaultCurrency)

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM linked_identities
		WHERE messaging_address = $1 AND owner_id <> $2
	`, address, token.OwnerID); err != nil {
		return failed, fmt.Errorf("%w: release address: %v", ErrPersistence, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO linked_identities (owner_id, messaging_address, linked_at, currency)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id) DO UPDATE
		SET messaging_address = EXCLUDED.messaging_address,
		    linked_at = EXCLUDED.linked_at,
		    currency = EXCLUDED.currency
	`, token.OwnerID, address, now, currency); err != nil {
		return failed, fmt.Errorf("%w: upsert identity: %v", ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return failed, fmt.Errorf("%w: commit link: %v", ErrPersistence, err)
	}

	linkLog.Info().Str("owner_id", token.OwnerID).Str("currency", currency).Msg("address linked")
	return &models.LinkOutcome{Status: models.LinkLinked, OwnerID: token.OwnerID, Currency: currency}, nil
}

// IdentityFor returns the identity bound to address, or nil when unlinked
func (s *LinkService) IdentityFor(ctx context.Context, address string) (*models.LinkedIdentity, error) {
	var id models.LinkedIdentity
	err := s.db.QueryRowContext(ctx, `
		SELECT owner_id, messaging_address, linked_at, currency
		FROM linked_identities
		WHERE messaging_address = $1
	`, address).Scan(&id.OwnerID, &id.MessagingAddress, &id.LinkedAt, &id.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lookup identity: %v", ErrPersistence, err)
	}
	return &id, nil
}

// Status returns the owner's linked identity, or nil when unlinked
func (s *LinkService) Status(ctx context.Context, ownerID string) (*models.LinkedIdentity, error) {
	var id models.LinkedIdentity
	err := s.db.QueryRowContext(ctx, `
		SELECT owner_id, messaging_address, linked_at, currency
		FROM linked_identities
		WHERE owner_id = $1
	`, ownerID).Scan(&id.OwnerID, &id.MessagingAddress, &id.LinkedAt, &id.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Unlink removes the owner's identity. It reports whether one existed.
func (s *LinkService) Unlink(ctx context.Context, ownerID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM linked_identities WHERE owner_id = $1`, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 && s.audit != nil {
		s.audit.LogUnlink(ownerID)
	}
	return n > 0, nil
}

// IssuedCode is a freshly generated link code with its delivery helpers
type IssuedCode struct {
	Code      string    `json:"code" example:"link_3f9a1c2e"`
	ExpiresAt time.Time `json:"expiresAt"`
	ExpiresIn int       `json:"expiresIn" example:"600"`
	DeepLink  string    `json:"deepLink,omitempty" example:"https://wa.me/14155238886?text=link_3f9a1c2e"`
	QRCode    string    `json:"qrCode,omitempty"`
}

// IssueCode stores a new code for ownerID. relayNumber, when set, is used
// to build a wa.me deep link and its QR code.
func (s *LinkService) IssueCode(ctx context.Context, ownerID, currency, relayNumber string) (*IssuedCode, error) {
	code := s.generateCode()
	now := s.now()
	expiresAt := now.Add(s.config.LinkCodeTTL)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO link_tokens (code, owner_id, default_currency, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, code, ownerID, NormalizeCurrency(currency, s.config.DefaultCurrency), now, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store link code: %w", err)
	}

	issued := &IssuedCode{
		Code:      s.config.LinkPrefix + code,
		ExpiresAt: expiresAt,
		ExpiresIn: int(s.config.LinkCodeTTL.Seconds()),
	}
	if relayNumber != "" {
		issued.DeepLink = DeepLink(relayNumber, issued.Code)
		qr, err := encodeQR(issued.DeepLink)
		if err != nil {
			linkLog.Warn().Err(err).Msg("qr encoding failed")
		} else {
			issued.QRCode = qr
		}
	}
	return issued, nil
}

func (s *LinkService) generateCode() string {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n := s.config.LinkCodeLength; n > 0 && n < len(code) {
		code = code[:n]
	}
	return code
}

// DeepLink builds a wa.me link that pre-fills text for the relay number
func DeepLink(relayNumber, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, relayNumber)
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(text)
}

func encodeQR(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *LinkService) attemptsExceeded(ctx context.Context, address string) bool {
	if s.redis == nil {
		return false
	}
	count, err := s.redis.Get(ctx, linkAttemptsKey(address)).Int()
	if err != nil && err != redis.Nil {
		linkLog.Warn().Err(err).Msg("rate limit lookup failed")
		return false
	}
	return count >= s.config.MaxLinkAttempts
}

func (s *LinkService) recordAttempt(ctx context.Context, address string) {
	if s.redis == nil {
		return
	}
	key := linkAttemptsKey(address)
	n, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		linkLog.Warn().Err(err).Msg("rate limit increment failed")
		return
	}
	if n == 1 {
		s.redis.Expire(ctx, key, s.config.RateLimitWindow)
	}
}

func linkAttemptsKey(address string) string {
	return fmt.Sprintf("link:attempts:%s", address)
}
