package handlers

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/spenly/backend/internal/config"
	"github.com/spenly/backend/internal/logger"
	"github.com/spenly/backend/internal/models"
	"github.com/spenly/backend/internal/services"
)

const dedupKeyPrefix = "chat:dedup:"

const relayUnavailableMessage = "WhatsApp relay is not configured: set TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_WHATSAPP_NUMBER"

var errRelayConfigMissing = errors.New("relay config missing")

// MessageHandler turns an inbound chat message into its reply
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg models.InboundMessage) models.Reply
}

// SignatureValidator checks relay webhook signatures
type SignatureValidator interface {
	ValidSignature(url string, params map[string]string, signature string) bool
}

type WebhookHandler struct {
	assembler MessageHandler
	notifier  services.Notifier
	signer    SignatureValidator
	redis     *redis.Client
	relay     *config.RelayConfig
	relayErr  error
	dedupTTL  time.Duration
}

// NewWebhookHandler builds the webhook endpoint. Unless relay disables
// signature validation, requests are refused with 503 while relay
// credentials are incomplete or no signer is available.
func NewWebhookHandler(assembler MessageHandler, notifier services.Notifier, signer SignatureValidator, redis *redis.Client, relay *config.RelayConfig, dedupTTL time.Duration) *WebhookHandler {
	h := &WebhookHandler{
		assembler: assembler,
		notifier:  notifier,
		signer:    signer,
		redis:     redis,
		relay:     relay,
		dedupTTL:  dedupTTL,
	}
	switch {
	case relay == nil:
		h.relayErr = errRelayConfigMissing
	case relay.ValidateHooks:
		h.relayErr = relay.Validate()
	}
	return h
}

// verifySignatures reports whether inbound requests must carry a valid signature
func (h *WebhookHandler) verifySignatures() bool {
	return h.relay == nil || h.relay.ValidateHooks
}

type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// Receive handles an inbound WhatsApp message
// @Summary WhatsApp webhook
// @Description Receives relay form posts, runs the intake pipeline and replies to the sender
// @Tags Webhook
// @Accept x-www-form-urlencoded
// @Produce xml
// @Param From formData string true "Sender address, e.g. whatsapp:+14155550123"
// @Param Body formData string false "Message text"
// @Param NumMedia formData int false "Number of attachments"
// @Param MediaUrl0 formData string false "First attachment URL"
// @Param MediaContentType0 formData string false "First attachment MIME type"
// @Param MessageSid formData string false "Relay message id"
// @Success 200 {string} string "TwiML response"
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /whatsapp/webhook [post]
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	l := logger.FromContext(r.Context())

	if h.verifySignatures() && (h.relayErr != nil || h.signer == nil) {
		l.Error().Err(h.relayErr).Msg("webhook refused, relay not configured")
		services.SendErrorResponse(w, relayUnavailableMessage, http.StatusServiceUnavailable, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		services.SendErrorResponse(w, "Invalid form body", http.StatusBadRequest, nil)
		return
	}

	if h.verifySignatures() {
		if !h.signer.ValidSignature(h.callbackURL(r), formParams(r), r.Header.Get("X-Twilio-Signature")) {
			l.Warn().Str("remote", r.RemoteAddr).Msg("webhook signature rejected")
			services.SendErrorResponse(w, "Invalid signature", http.StatusForbidden, nil)
			return
		}
	}

	from := services.BareAddress(r.PostFormValue("From"))
	if from == "" {
		services.SendErrorResponse(w, "From is required", http.StatusBadRequest, nil)
		return
	}

	sid := r.PostFormValue("MessageSid")
	if h.duplicate(r.Context(), sid) {
		l.Info().Str("message_sid", sid).Msg("duplicate delivery ignored")
		writeTwiML(w, "")
		return
	}

	msg := models.InboundMessage{
		ID:   sid,
		From: from,
		Text: r.PostFormValue("Body"),
	}
	if n, _ := strconv.Atoi(r.PostFormValue("NumMedia")); n > 0 {
		msg.Attachment = &models.Attachment{
			URL:         r.PostFormValue("MediaUrl0"),
			ContentType: r.PostFormValue("MediaContentType0"),
		}
	}

	reply := h.assembler.HandleMessage(r.Context(), msg)

	if h.notifier != nil {
		err := h.notifier.Notify(r.Context(), from, reply.Text)
		if err == nil {
			writeTwiML(w, "")
			return
		}
		l.Warn().Err(err).Msg("reply send failed, answering inline")
	}
	writeTwiML(w, reply.Text)
}

// duplicate claims sid in Redis and reports whether it was already seen
func (h *WebhookHandler) duplicate(ctx context.Context, sid string) bool {
	if h.redis == nil || sid == "" {
		return false
	}
	fresh, err := h.redis.SetNX(ctx, dedupKeyPrefix+sid, 1, h.dedupTTL).Result()
	if err != nil {
		l := logger.FromContext(ctx)
		l.Warn().Err(err).Msg("dedup check failed")
		return false
	}
	return !fresh
}

func (h *WebhookHandler) callbackURL(r *http.Request) string {
	if h.relay.PublicURL != "" {
		return h.relay.PublicURL + r.URL.RequestURI()
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func formParams(r *http.Request) map[string]string {
	params := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}

func writeTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	xml.NewEncoder(w).Encode(twiml{Message: message})
}
