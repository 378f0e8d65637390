package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spenly/backend/internal/models"
	"github.com/spenly/backend/internal/oracle"
)

const (
	replyLinked            = "✅ Account linked! Send me expenses like 'Pizza $15' or a photo of a receipt."
	replyInvalidCode       = "❌ Invalid or expired linking code."
	replyExpiredCode       = "❌ This linking code has expired. Generate a new one in the app."
	replyUsedCode          = "❌ This linking code has already been used."
	replyRateLimited       = "⏳ Too many linking attempts. Please wait a while and try again."
	replyNotLinked         = "👋 Welcome! Link your account first: open the app, go to Settings → WhatsApp and send the code shown there (it looks like link_ab12cd34)."
	replyHelp              = "👋 Hi! Send me expenses like 'Pizza $15' or '300 for groceries', or a photo of a receipt."
	replyNoAmount          = "🤔 I couldn't find an amount in that message. Try something like 'Coffee $4.50'."
	replySaveFailed        = "❌ Error saving transaction. Please try again."
	replyLinkFailed        = "❌ Couldn't link your account right now. Please send the code again in a moment."
	replyUnavailable       = "⚠️ Something went wrong on our side. Please try again in a moment."
	replyReceiptUnreadable = "❌ Couldn't read that receipt. Try a clearer photo or type the expense, e.g. 'Lunch $12'."
	replyVoiceUnreadable   = "❌ Couldn't understand that voice note. Please type the expense instead."
	replyUnsupportedMedia  = "📎 I can read receipt photos and voice notes. Other attachments aren't supported."
	replyProcessingReceipt = "📸 Processing receipt..."
)

// ReplyForError maps a pipeline error onto the message shown to the user
func ReplyForError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidLinkCode):
		return replyInvalidCode
	case errors.Is(err, ErrLinkCodeExpired):
		return replyExpiredCode
	case errors.Is(err, ErrLinkCodeAlreadyUsed):
		return replyUsedCode
	case errors.Is(err, ErrLinkRateLimited):
		return replyRateLimited
	case errors.Is(err, ErrNotLinked):
		return replyNotLinked
	case errors.Is(err, ErrNoAmountDetected):
		return replyNoAmount
	case errors.Is(err, ErrReceiptUnreadable), errors.Is(err, ErrExtractionFailed):
		return replyReceiptUnreadable
	case errors.Is(err, ErrVoiceUnreadable):
		return replyVoiceUnreadable
	case errors.Is(err, ErrUnsupportedMedia):
		return replyUnsupportedMedia
	default:
		return replySaveFailed
	}
}

// LinkReply renders a verification outcome
func LinkReply(outcome *models.LinkOutcome, err error) string {
	if err == nil && outcome != nil && outcome.Status == models.LinkLinked {
		return replyLinked
	}
	if errors.Is(err, ErrPersistence) {
		return replyLinkFailed
	}
	return ReplyForError(err)
}

// FormatConfirmation renders a saved transaction
func FormatConfirmation(p models.ParsedTransaction) string {
	var b strings.Builder
	if p.Source == models.SourceImage {
		b.WriteString("✅ Receipt processed:\n")
	} else {
		b.WriteString("✅ Transaction added:\n")
	}
	fmt.Fprintf(&b, "%s\n", p.Vendor)
	fmt.Fprintf(&b, "%s\n", p.Category)
	fmt.Fprintf(&b, "%s%s\n", SymbolForCurrency(p.Currency), p.Amount.StringFixed(2))
	fmt.Fprintf(&b, "📅 %s", p.Date.Format(models.DateLayout))
	if p.Note != "" && !strings.EqualFold(p.Note, p.Vendor) {
		fmt.Fprintf(&b, "\n📝 %s", p.Note)
	}
	return b.String()
}

// ReplyComposer writes conversational replies to greetings and questions
type ReplyComposer interface {
	ComposeReply(ctx context.Context, text string, intent models.Intent) (string, error)
}

// ComposeReply asks the oracle for a short friendly answer
func (c *AIClient) ComposeReply(ctx context.Context, text string, intent models.Intent) (string, error) {
	system := `You are the WhatsApp assistant of an expense tracking app. Users log expenses by sending
messages like "Pizza $15" or "300 for groceries yesterday", or by sending a photo of a receipt.
Expenses sync to the app automatically. Reply in at most three short sentences, friendly, with at
most one emoji. Never invent features, balances or totals.`

	answer, err := c.completer.Complete(ctx, oracle.Request{
		System:      system,
		Prompt:      fmt.Sprintf("The user sent a %s: %q", intent, text),
		Temperature: 0.7,
		MaxTokens:   150,
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}
