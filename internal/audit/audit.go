// Package audit writes one structured record per account-affecting event.
package audit

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/spenly/backend/internal/logger"
)

type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Address   string    `json:"address,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

type Logger struct {
	log zerolog.Logger
	now func() time.Time
}

func NewLogger() *Logger {
	return &Logger{log: logger.Component("audit"), now: time.Now}
}

// NewLoggerWithWriter writes JSON audit lines to w
func NewLoggerWithWriter(w io.Writer) *Logger {
	return &Logger{log: logger.NewWithWriter(w), now: time.Now}
}

func (a *Logger) LogLink(ownerID, address, status string) {
	a.write(Event{
		EventType: "LINK",
		OwnerID:   ownerID,
		Address:   MaskAddress(address),
		Status:    status,
	})
}

func (a *Logger) LogUnlink(ownerID string) {
	a.write(Event{EventType: "UNLINK", OwnerID: ownerID, Status: "SUCCESS"})
}

func (a *Logger) LogTransaction(ownerID, transactionID, amount, currency, source string) {
	a.write(Event{
		EventType: "TRANSACTION",
		OwnerID:   ownerID,
		Reference: transactionID,
		Status:    "PENDING_SYNC",
		Details: map[string]string{
			"amount":   amount,
			"currency": currency,
			"source":   source,
		},
	})
}

func (a *Logger) LogSync(ownerID string, count int64) {
	a.write(Event{
		EventType: "SYNC",
		OwnerID:   ownerID,
		Status:    "SUCCESS",
		Details:   map[string]int64{"synced": count},
	})
}

func (a *Logger) LogError(ownerID, reference string, err error) {
	a.write(Event{
		EventType: "ERROR",
		OwnerID:   ownerID,
		Reference: reference,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) write(event Event) {
	event.Timestamp = a.now().UTC()
	a.log.Info().Str("audit", "true").Interface("event", event).Msg("AUDIT")
}

// MaskAddress keeps the last four digits of a phone-style address
func MaskAddress(address string) string {
	if len(address) <= 4 {
		return address
	}
	masked := make([]byte, len(address))
	for i := range address {
		if i < len(address)-4 && address[i] >= '0' && address[i] <= '9' {
			masked[i] = '*'
		} else {
			masked[i] = address[i]
		}
	}
	return string(masked)
}
