package services

import "errors"

var (
	ErrInvalidLinkCode     = errors.New("invalid link code")
	ErrLinkCodeExpired     = errors.New("link code expired")
	ErrLinkCodeAlreadyUsed = errors.New("link code already used")
	ErrLinkRateLimited     = errors.New("link attempts rate limited")
	ErrNotLinked           = errors.New("messaging address not linked")
	ErrExtractionFailed    = errors.New("transaction extraction failed")
	ErrNoAmountDetected    = errors.New("no amount detected")
	ErrPersistence         = errors.New("persistence failed")
	ErrReceiptUnreadable   = errors.New("receipt unreadable")
	ErrVoiceUnreadable     = errors.New("voice note unreadable")
	ErrUnsupportedMedia    = errors.New("unsupported media type")
	ErrUnexpectedAnswer    = errors.New("unexpected oracle answer")
)
