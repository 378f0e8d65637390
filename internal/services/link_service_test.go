package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spenly/backend/internal/config"
	"github.com/spenly/backend/internal/models"
)

const testAddress = "whatsapp:+14155550123"

func newTestLinkService(t *testing.T) (*LinkService, sqlmock.Sqlmock, time.Time) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)
	s := NewLinkService(db, nil, config.LoadChatConfig(), nil)
	s.now = func() time.Time { return now }
	return s, mock, now
}

func TestLinkService_VerifyAndLink(t *testing.T) {
	ctx := context.Background()
	tokenColumns := []string{"owner_id", "default_currency", "expires_at", "used_at"}

	t.Run("valid code links the address", func(t *testing.T) {
		s, mock, now := newTestLinkService(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id, default_currency, expires_at, used_at FROM link_tokens").
			WithArgs("ab12").
			WillReturnRows(sqlmock.NewRows(tokenColumns).AddRow("owner-1", "INR", now.Add(5*time.Minute), nil))
		mock.ExpectExec("UPDATE link_tokens SET used_at").
			WithArgs(now, testAddress, "ab12").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM linked_identities").
			WithArgs(testAddress, "owner-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO linked_identities").
			WithArgs("owner-1", testAddress, now, "INR").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		outcome, err := s.VerifyAndLink(ctx, "link_ab12", testAddress)

		assert.NoError(t, err)
		assert.Equal(t, &models.LinkOutcome{Status: models.LinkLinked, OwnerID: "owner-1", Currency: "INR"}, outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown code", func(t *testing.T) {
		s, mock, _ := newTestLinkService(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id").WithArgs("zz99").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		outcome, err := s.VerifyAndLink(ctx, "LINK_ZZ99", testAddress)

		assert.ErrorIs(t, err, ErrInvalidLinkCode)
		assert.Equal(t, models.LinkInvalid, outcome.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("used code", func(t *testing.T) {
		s, mock, now := newTestLinkService(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id").WithArgs("ab12").
			WillReturnRows(sqlmock.NewRows(tokenColumns).AddRow("owner-1", "USD", now.Add(time.Minute), now.Add(-time.Minute)))
		mock.ExpectRollback()

		outcome, err := s.VerifyAndLink(ctx, "link_ab12", testAddress)

		assert.ErrorIs(t, err, ErrLinkCodeAlreadyUsed)
		assert.Equal(t, models.LinkAlreadyUsed, outcome.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("used check wins over expiry", func(t *testing.T) {
		s, mock, now := newTestLinkService(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id").WithArgs("ab12").
			WillReturnRows(sqlmock.NewRows(tokenColumns).AddRow("owner-1", "USD", now.Add(-time.Hour), now.Add(-2*time.Hour)))
		mock.ExpectRollback()

		_, err := s.VerifyAndLink(ctx, "link_ab12", testAddress)
		assert.ErrorIs(t, err, ErrLinkCodeAlreadyUsed)
	})

	t.Run("expired code leaves identity untouched", func(t *testing.T) {
		s, mock, now := newTestLinkService(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id").WithArgs("ab12").
			WillReturnRows(sqlmock.NewRows(tokenColumns).AddRow("owner-1", "USD", now.Add(-time.Second), nil))
		mock.ExpectRollback()

		outcome, err := s.VerifyAndLink(ctx, "link_ab12", testAddress)

		assert.ErrorIs(t, err, ErrLinkCodeExpired)
		assert.Equal(t, models.LinkExpired, outcome.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost race on consume", func(t *testing.T) {
		s, mock, now := newTestLinkService(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id").WithArgs("ab12").
			WillReturnRows(sqlmock.NewRows(tokenColumns).AddRow("owner-1", "USD", now.Add(time.Minute), nil))
		mock.ExpectExec("UPDATE link_tokens").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		outcome, err := s.VerifyAndLink(ctx, "link_ab12", testAddress)

		assert.ErrorIs(t, err, ErrLinkCodeAlreadyUsed)
		assert.Equal(t, models.LinkAlreadyUsed, outcome.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database failure", func(t *testing.T) {
		s, mock, _ := newTestLinkService(t)

		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		outcome, err := s.VerifyAndLink(ctx, "link_ab12", testAddress)
		assert.ErrorIs(t, err, ErrPersistence)
		assert.Equal(t, models.LinkFailed, outcome.Status)
	})

	t.Run("empty code", func(t *testing.T) {
		s, mock, _ := newTestLinkService(t)

		_, err := s.VerifyAndLink(ctx, "link_", testAddress)
		assert.ErrorIs(t, err, ErrInvalidLinkCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLinkService_RateLimit(t *testing.T) {
	ctx := context.Background()
	key := "link:attempts:" + testAddress

	t.Run("too many attempts", func(t *testing.T) {
		s, mock, _ := newTestLinkService(t)
		redisClient, redisMock := redismock.NewClientMock()
		s.redis = redisClient

		redisMock.ExpectGet(key).SetVal("10")

		outcome, err := s.VerifyAndLink(ctx, "link_ab12", testAddress)

		assert.ErrorIs(t, err, ErrLinkRateLimited)
		assert.Equal(t, models.LinkRateLimited, outcome.Status)
		assert.NoError(t, redisMock.ExpectationsWereMet())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first attempt starts the window", func(t *testing.T) {
		s, mock, _ := newTestLinkService(t)
		redisClient, redisMock := redismock.NewClientMock()
		s.redis = redisClient

		redisMock.ExpectGet(key).RedisNil()
		redisMock.ExpectIncr(key).SetVal(1)
		redisMock.ExpectExpire(key, time.Hour).SetVal(true)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_id").WithArgs("ab12").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := s.VerifyAndLink(ctx, "link_ab12", testAddress)

		assert.ErrorIs(t, err, ErrInvalidLinkCode)
		assert.NoError(t, redisMock.ExpectationsWereMet())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLinkService_IssueCode(t *testing.T) {
	s, mock, now := newTestLinkService(t)

	mock.ExpectExec("INSERT INTO link_tokens").
		WithArgs(sqlmock.AnyArg(), "owner-1", "EUR", now, now.Add(10*time.Minute)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	issued, err := s.IssueCode(context.Background(), "owner-1", "eur", "whatsapp:+14155238886")

	require.NoError(t, err)
	assert.Regexp(t, `^link_[0-9a-f]{8}$`, issued.Code)
	assert.Equal(t, 600, issued.ExpiresIn)
	assert.Equal(t, "https://wa.me/14155238886?text="+issued.Code, issued.DeepLink)
	assert.NotEmpty(t, issued.QRCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkService_IdentityFor(t *testing.T) {
	columns := []string{"owner_id", "messaging_address", "linked_at", "currency"}

	t.Run("linked", func(t *testing.T) {
		s, mock, now := newTestLinkService(t)
		mock.ExpectQuery("SELECT owner_id, messaging_address, linked_at, currency FROM linked_identities").
			WithArgs(testAddress).
			WillReturnRows(sqlmock.NewRows(columns).AddRow("owner-1", testAddress, now, "USD"))

		id, err := s.IdentityFor(context.Background(), testAddress)

		require.NoError(t, err)
		assert.Equal(t, "owner-1", id.OwnerID)
	})

	t.Run("unlinked", func(t *testing.T) {
		s, mock, _ := newTestLinkService(t)
		mock.ExpectQuery("SELECT owner_id").WithArgs(testAddress).WillReturnError(sql.ErrNoRows)

		id, err := s.IdentityFor(context.Background(), testAddress)

		assert.NoError(t, err)
		assert.Nil(t, id)
	})
}

func TestLinkService_Unlink(t *testing.T) {
	s, mock, _ := newTestLinkService(t)
	mock.ExpectExec("DELETE FROM linked_identities WHERE owner_id").
		WithArgs("owner-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	removed, err := s.Unlink(context.Background(), "owner-1")

	assert.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
