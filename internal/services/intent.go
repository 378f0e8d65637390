package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/spenly/backend/internal/config"
	"github.com/spenly/backend/internal/models"
	"github.com/spenly/backend/internal/oracle"
)

var (
	greetingWords = map[string]bool{
		"hi": true, "hii": true, "hello": true, "hey": true, "heya": true, "hiya": true,
		"hola": true, "yo": true, "sup": true, "start": true, "thanks": true, "thank you": true,
		"good morning": true, "good afternoon": true, "good evening": true,
	}
	interrogatives = map[string]bool{
		"what": true, "how": true, "why": true, "when": true, "where": true, "who": true,
		"which": true, "can": true, "could": true, "do": true, "does": true, "is": true,
		"are": true, "help": true,
	}
	menuSelection = regexp.MustCompile(`^[1-9]$`)
)

// IntentDetector is the oracle side of classification
type IntentDetector interface {
	DetectIntent(ctx context.Context, text string, isLinked bool) (models.Intent, error)
}

// IntentClassifier decides what a text message is for
type IntentClassifier struct {
	detector IntentDetector
	prefix   string
	timeout  time.Duration
}

func NewIntentClassifier(detector IntentDetector, cfg *config.ChatConfig) *IntentClassifier {
	return &IntentClassifier{
		detector: detector,
		prefix:   cfg.LinkPrefix,
		timeout:  cfg.OracleTimeout,
	}
}

// Classify never fails: link codes are recognised locally, everything else
// goes to the detector and falls back to HeuristicIntent.
func (c *IntentClassifier) Classify(ctx context.Context, text string, isLinked bool) models.Intent {
	if IsLinkCode(text, c.prefix) {
		return models.IntentLink
	}

	var primary func(context.Context) (models.Intent, error)
	if c.detector != nil {
		primary = func(ctx context.Context) (models.Intent, error) {
			return c.detector.DetectIntent(ctx, text, isLinked)
		}
	}
	return withFallback(ctx, "intent", c.timeout, primary, func() models.Intent {
		return HeuristicIntent(text)
	})
}

// bareText lower-cases text and trims surrounding punctuation and space
func bareText(text string) string {
	return strings.TrimFunc(strings.ToLower(text), func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSpace(r) })
}

// IsLinkCode reports whether text is exactly prefix followed by a code,
// ignoring surrounding punctuation
func IsLinkCode(text, prefix string) bool {
	t := bareText(text)
	if !strings.HasPrefix(t, prefix) {
		return false
	}
	code := t[len(prefix):]
	if code == "" {
		return false
	}
	for _, r := range code {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			return false
		}
	}
	return true
}

// NormalizeLinkCode lower-cases text and strips punctuation and the prefix
func NormalizeLinkCode(text, prefix string) string {
	return strings.TrimPrefix(bareText(text), prefix)
}

// HeuristicIntent classifies without any external service
func HeuristicIntent(text string) models.Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	bare := bareText(t)

	switch {
	case greetingWords[bare]:
		return models.IntentGreeting
	case strings.Contains(t, "?"):
		return models.IntentQuestion
	case menuSelection.MatchString(bare):
		return models.IntentQuestion
	}

	if fields := strings.Fields(bare); len(fields) > 0 && interrogatives[fields[0]] {
		return models.IntentQuestion
	}
	if strings.IndexFunc(t, unicode.IsDigit) >= 0 {
		return models.IntentTransaction
	}
	return models.IntentQuestion
}

// DetectIntent asks the oracle for greeting, question or transaction.
// Any other answer, including "link", is ErrUnexpectedAnswer.
func (c *AIClient) DetectIntent(ctx context.Context, text string, isLinked bool) (models.Intent, error) {
	state := "not linked"
	if isLinked {
		state = "linked"
	}
	prompt := fmt.Sprintf(`Classify the user's WhatsApp message to an expense tracking bot. Their account is %s.
Answer with exactly one word:
- transaction: reports money spent, e.g. "Pizza $15", "300 for groceries", "uber 12 yesterday"
- greeting: says hello or thanks, e.g. "hi", "hello", "thanks!"
- question: asks something about the bot, e.g. "how does this work?", "what can you do"
- link: an account linking code, e.g. "link_ab12cd34"

Message: %q`, state, text)

	answer, err := c.completer.Complete(ctx, oracle.Request{
		Prompt:      prompt,
		Temperature: 0.1,
		MaxTokens:   10,
	})
	if err != nil {
		return "", err
	}

	word := strings.ToLower(strings.TrimFunc(answer, func(r rune) bool { return !unicode.IsLetter(r) }))
	switch models.Intent(word) {
	case models.IntentGreeting, models.IntentQuestion, models.IntentTransaction:
		return models.Intent(word), nil
	}
	return "", fmt.Errorf("%w: intent %q", ErrUnexpectedAnswer, answer)
}
