package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/spenly/backend/internal/config"
	"github.com/spenly/backend/internal/logger"
)

const whatsappPrefix = "whatsapp:"

var relayLog = logger.Component("relay")

// Notifier sends a chat message to an address
type Notifier interface {
	Notify(ctx context.Context, to, text string) error
}

// TwilioRelay sends WhatsApp messages and validates webhook signatures
type TwilioRelay struct {
	client    *twilio.RestClient
	from      string
	validator twilioclient.RequestValidator
}

func NewTwilioRelay(cfg *config.RelayConfig) *TwilioRelay {
	return &TwilioRelay{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		from:      WhatsAppAddress(cfg.FromNumber),
		validator: twilioclient.NewRequestValidator(cfg.AuthToken),
	}
}

// Notify sends text to the given WhatsApp address. The REST client has no
// context support; ctx is only checked before sending.
func (r *TwilioRelay) Notify(ctx context.Context, to, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(WhatsAppAddress(to))
	params.SetFrom(r.from)
	params.SetBody(text)

	resp, err := r.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	if resp.Sid != nil {
		relayLog.Debug().Str("sid", *resp.Sid).Msg("message sent")
	}
	return nil
}

// ValidSignature checks the X-Twilio-Signature of a form webhook
func (r *TwilioRelay) ValidSignature(url string, params map[string]string, signature string) bool {
	return r.validator.Validate(url, params, signature)
}

// WhatsAppAddress adds the channel prefix when missing
func WhatsAppAddress(number string) string {
	if strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	return whatsappPrefix + number
}

// BareAddress strips the channel prefix from a relay address
func BareAddress(address string) string {
	return strings.TrimPrefix(strings.TrimSpace(address), whatsappPrefix)
}
