package services

import (
	"context"
	"strings"
	"time"

	"github.com/spenly/backend/internal/audit"
	"github.com/spenly/backend/internal/config"
	"github.com/spenly/backend/internal/logger"
	"github.com/spenly/backend/internal/models"
)

// Linker verifies link codes and looks up bound identities
type Linker interface {
	VerifyAndLink(ctx context.Context, code, address string) (*models.LinkOutcome, error)
	IdentityFor(ctx context.Context, address string) (*models.LinkedIdentity, error)
}

// AssemblerDeps wires the pipeline. Only Linker and Transactions are
// required; every other nil dependency disables its feature.
type AssemblerDeps struct {
	Linker       Linker
	Transactions TransactionStore
	Categories   CategoryStore
	Classifier   *IntentClassifier
	Extractor    TransactionExtractor
	Resolver     *CategoryResolver
	Composer     ReplyComposer
	Media        MediaFetcher
	Transcriber  Transcriber
	Archiver     ReceiptArchiver
	Notifier     Notifier
	Audit        *audit.Logger
	Config       *config.ChatConfig
	Now          func() time.Time
}

// TransactionAssembler turns one inbound message into exactly one reply
type TransactionAssembler struct {
	AssemblerDeps
}

func NewTransactionAssembler(deps AssemblerDeps) *TransactionAssembler {
	if deps.Config == nil {
		deps.Config = config.LoadChatConfig()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Classifier == nil {
		deps.Classifier = NewIntentClassifier(nil, deps.Config)
	}
	if deps.Resolver == nil {
		deps.Resolver = NewCategoryResolver(nil, deps.Config.OracleTimeout)
	}
	return &TransactionAssembler{AssemblerDeps: deps}
}

// HandleMessage never fails: every error path ends in a reply
func (a *TransactionAssembler) HandleMessage(ctx context.Context, msg models.InboundMessage) models.Reply {
	l := logger.FromContext(ctx).With().Str("component", "assembler").Str("message_id", msg.ID).Logger()
	ctx = logger.WithContext(ctx, l)

	text := strings.TrimSpace(msg.Text)

	if IsLinkCode(text, a.Config.LinkPrefix) {
		outcome, err := a.Linker.VerifyAndLink(ctx, text, msg.From)
		if err != nil {
			l.Info().Err(err).Msg("link attempt rejected")
		}
		status := models.LinkFailed
		if outcome != nil {
			status = outcome.Status
		}
		messagesTotal.WithLabelValues("link", string(status)).Inc()
		return models.Reply{Text: LinkReply(outcome, err)}
	}

	identity, err := a.Linker.IdentityFor(ctx, msg.From)
	if err != nil {
		l.Error().Err(err).Msg("identity lookup failed")
		messagesTotal.WithLabelValues("lookup", "error").Inc()
		return models.Reply{Text: replyUnavailable}
	}
	if identity == nil {
		messagesTotal.WithLabelValues("unlinked", "prompted").Inc()
		return models.Reply{Text: ReplyForError(ErrNotLinked)}
	}

	switch {
	case msg.Attachment.IsImage():
		return a.handleReceipt(ctx, identity, msg)
	case msg.Attachment.IsAudio():
		return a.handleVoice(ctx, identity, msg)
	case msg.Attachment != nil:
		messagesTotal.WithLabelValues("attachment", "unsupported").Inc()
		return models.Reply{Text: ReplyForError(ErrUnsupportedMedia)}
	}

	if text == "" {
		return models.Reply{Text: replyHelp}
	}

	switch intent := a.Classifier.Classify(ctx, text, true); intent {
	case models.IntentTransaction:
		return a.handleText(ctx, identity, text, models.SourceText, "")
	default:
		return a.converse(ctx, text, intent)
	}
}

func (a *TransactionAssembler) converse(ctx context.Context, text string, intent models.Intent) models.Reply {
	var primary func(context.Context) (string, error)
	if a.Composer != nil {
		primary = func(ctx context.Context) (string, error) {
			return a.Composer.ComposeReply(ctx, text, intent)
		}
	}
	reply := withFallback(ctx, "reply", a.Config.OracleTimeout, primary, func() string { return replyHelp })
	messagesTotal.WithLabelValues(string(intent), "replied").Inc()
	return models.Reply{Text: reply}
}

func (a *TransactionAssembler) handleText(ctx context.Context, identity *models.LinkedIdentity, text string, source models.Source, attachmentRef string) models.Reply {
	today := a.Now()
	in := ExtractionInput{Source: models.SourceText, Text: text, DefaultCurrency: identity.Currency, Today: today}

	var primary func(context.Context) (models.ParsedTransaction, error)
	if a.Extractor != nil {
		primary = func(ctx context.Context) (models.ParsedTransaction, error) {
			p, err := a.Extractor.Extract(ctx, in)
			if err != nil {
				return models.ParsedTransaction{}, err
			}
			return *p, nil
		}
	}
	parsed := withFallback(ctx, "extract_text", a.Config.OracleTimeout, primary, func() models.ParsedTransaction {
		return ParseFallback(text, identity.Currency, today)
	})
	parsed.Source = source

	return a.record(ctx, identity, parsed, attachmentRef)
}

func (a *TransactionAssembler) handleReceipt(ctx context.Context, identity *models.LinkedIdentity, msg models.InboundMessage) models.Reply {
	l := logger.FromContext(ctx)

	if a.Extractor == nil || a.Media == nil {
		messagesTotal.WithLabelValues("image", "unsupported").Inc()
		return models.Reply{Text: ReplyForError(ErrReceiptUnreadable)}
	}
	a.notify(ctx, msg.From, replyProcessingReceipt)

	media, err := a.Media.Fetch(ctx, msg.Attachment.URL, msg.Attachment.ContentType)
	if err != nil {
		l.Warn().Err(err).Msg("receipt download failed")
		messagesTotal.WithLabelValues("image", "fetch_failed").Inc()
		return models.Reply{Text: ReplyForError(ErrReceiptUnreadable)}
	}

	ref := msg.Attachment.URL
	if a.Archiver != nil {
		if uri, err := a.Archiver.Archive(ctx, identity.OwnerID, media); err != nil {
			l.Warn().Err(err).Msg("receipt archive failed, keeping relay url")
		} else {
			ref = uri
		}
	}

	visionCtx, cancel := context.WithTimeout(ctx, a.Config.VisionTimeout)
	defer cancel()

	parsed, err := a.Extractor.Extract(visionCtx, ExtractionInput{
		Source:          models.SourceImage,
		Text:            strings.TrimSpace(msg.Text),
		Media:           media,
		DefaultCurrency: identity.Currency,
		Today:           a.Now(),
	})
	if err != nil {
		oracleCallsTotal.WithLabelValues("extract_image", "failed").Inc()
		l.Warn().Err(err).Msg("receipt extraction failed")
		messagesTotal.WithLabelValues("image", "unreadable").Inc()
		return models.Reply{Text: ReplyForError(ErrReceiptUnreadable)}
	}
	oracleCallsTotal.WithLabelValues("extract_image", "ok").Inc()

	return a.record(ctx, identity, *parsed, ref)
}

func (a *TransactionAssembler) handleVoice(ctx context.Context, identity *models.LinkedIdentity, msg models.InboundMessage) models.Reply {
	l := logger.FromContext(ctx)

	if a.Transcriber == nil || a.Media == nil {
		messagesTotal.WithLabelValues("voice", "unsupported").Inc()
		return models.Reply{Text: ReplyForError(ErrUnsupportedMedia)}
	}

	media, err := a.Media.Fetch(ctx, msg.Attachment.URL, msg.Attachment.ContentType)
	if err != nil {
		l.Warn().Err(err).Msg("voice note download failed")
		messagesTotal.WithLabelValues("voice", "fetch_failed").Inc()
		return models.Reply{Text: ReplyForError(ErrVoiceUnreadable)}
	}

	transcript, err := a.Transcriber.Transcribe(ctx, media)
	if err != nil || strings.TrimSpace(transcript) == "" {
		l.Warn().Err(err).Msg("voice note transcription failed")
		messagesTotal.WithLabelValues("voice", "unreadable").Inc()
		return models.Reply{Text: ReplyForError(ErrVoiceUnreadable)}
	}
	l.Debug().Str("transcript", transcript).Msg("voice note transcribed")

	return a.handleText(ctx, identity, transcript, models.SourceVoice, msg.Attachment.URL)
}

// record enforces the positive-amount rule, resolves the category and persists
func (a *TransactionAssembler) record(ctx context.Context, identity *models.LinkedIdentity, parsed models.ParsedTransaction, attachmentRef string) models.Reply {
	l := logger.FromContext(ctx)
	path := string(parsed.Source)

	if !parsed.HasAmount() {
		messagesTotal.WithLabelValues(path, "no_amount").Inc()
		return models.Reply{Text: ReplyForError(ErrNoAmountDetected)}
	}

	var categories []models.Category
	if a.Categories != nil {
		var err error
		if categories, err = a.Categories.Categories(ctx, identity.OwnerID); err != nil {
			l.Warn().Err(err).Msg("category lookup failed, using defaults")
			categories = nil
		}
	}
	parsed.Category = a.Resolver.Resolve(ctx, parsed.Vendor, parsed.Note, parsed.Category, categories)

	rec := models.NewTransactionRecord(identity.OwnerID, parsed, attachmentRef)
	id, err := a.Transactions.SaveTransaction(ctx, rec)
	if err != nil {
		l.Error().Err(err).Str("owner_id", identity.OwnerID).Msg("saving transaction failed")
		if a.Audit != nil {
			a.Audit.LogError(identity.OwnerID, "", err)
		}
		messagesTotal.WithLabelValues(path, "save_failed").Inc()
		return models.Reply{Text: ReplyForError(ErrPersistence)}
	}

	if a.Audit != nil {
		a.Audit.LogTransaction(identity.OwnerID, id, parsed.Amount.StringFixed(2), parsed.Currency, path)
	}
	messagesTotal.WithLabelValues(path, "saved").Inc()
	l.Info().Str("transaction_id", id).Str("category", parsed.Category).Msg("transaction recorded")

	return models.Reply{Text: FormatConfirmation(parsed)}
}

func (a *TransactionAssembler) notify(ctx context.Context, to, text string) {
	if a.Notifier == nil {
		return
	}
	if err := a.Notifier.Notify(ctx, to, text); err != nil {
		l := logger.FromContext(ctx)
		l.Warn().Err(err).Msg("interim notification failed")
	}
}
