package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spenly/backend/internal/models"
	"github.com/spenly/backend/internal/oracle"
)

const (
	textExtractionTokens  = 200
	imageExtractionTokens = 300
	extractionTemperature = 0.1
)

// Media is a downloaded attachment
type Media struct {
	ContentType string
	Data        []byte
}

// ExtractionInput is everything the extractor needs for one message
type ExtractionInput struct {
	Source          models.Source
	Text            string
	Media           *Media
	DefaultCurrency string
	Today           time.Time
}

// TransactionExtractor turns a message into a candidate transaction
type TransactionExtractor interface {
	Extract(ctx context.Context, in ExtractionInput) (*models.ParsedTransaction, error)
}

// AIClient asks a hosted completion service to classify, extract,
// categorize and converse.
type AIClient struct {
	completer oracle.Completer
}

func NewAIClient(completer oracle.Completer) *AIClient {
	return &AIClient{completer: completer}
}

type extractionPayload struct {
	Amount   json.RawMessage `json:"amount"`
	Vendor   string          `json:"vendor"`
	Note     string          `json:"note"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Currency string          `json:"currency"`
}

// Extract returns ErrExtractionFailed (wrapped) for transport errors,
// non-JSON answers and answers without a positive amount.
func (c *AIClient) Extract(ctx context.Context, in ExtractionInput) (*models.ParsedTransaction, error) {
	req := oracle.Request{
		System:      "You extract expense transactions from chat messages and receipt photos. You answer with JSON only.",
		Prompt:      buildExtractionPrompt(in),
		Temperature: extractionTemperature,
		MaxTokens:   textExtractionTokens,
		JSON:        true,
	}
	if in.Source == models.SourceImage {
		if in.Media == nil || len(in.Media.Data) == 0 {
			return nil, fmt.Errorf("%w: no image data", ErrExtractionFailed)
		}
		req.Image = &oracle.Image{MIMEType: in.Media.ContentType, Data: in.Media.Data}
		req.MaxTokens = imageExtractionTokens
	}

	raw, err := c.completer.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return parseExtraction(raw, in)
}

func buildExtractionPrompt(in ExtractionInput) string {
	var b strings.Builder
	if in.Source == models.SourceImage {
		b.WriteString("Read the attached receipt and extract the total amount paid.\n")
	} else {
		fmt.Fprintf(&b, "Extract the expense from this message: %q\n", in.Text)
	}
	b.WriteString("\nReturn ONLY a JSON object with these fields:\n")
	b.WriteString("- \"amount\": number, total spent, greater than 0\n")
	b.WriteString("- \"vendor\": string, merchant or item name\n")
	b.WriteString("- \"note\": string, short description (may be empty)\n")
	fmt.Fprintf(&b, "- \"category\": one of %s\n", strings.Join(quoteAll(DefaultCategories()), ", "))
	fmt.Fprintf(&b, "- \"date\": string, YYYY-MM-DD; today is %s, resolve words like yesterday against it\n", in.Today.Format(models.DateLayout))
	fmt.Fprintf(&b, "- \"currency\": 3-letter code; symbols %s map to %s; default %s\n",
		strings.Join(CurrencySymbols(), " "), currencyCodes(), NormalizeCurrency(in.DefaultCurrency, "USD"))
	b.WriteString("\nIf there is no amount, use 0. Do NOT wrap the JSON in code fences.")
	return b.String()
}

func parseExtraction(raw string, in ExtractionInput) (*models.ParsedTransaction, error) {
	var payload extractionPayload
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrExtractionFailed, err)
	}

	amount, ok := coerceAmount(payload.Amount)
	if !ok || !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, ErrNoAmountDetected)
	}

	date := truncateDay(in.Today)
	if d, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(payload.Date), in.Today.Location()); err == nil {
		date = d
	}

	vendor := strings.TrimSpace(payload.Vendor)
	if vendor == "" {
		vendor = genericVendor
	}

	return &models.ParsedTransaction{
		Amount:   amount.Round(2),
		Currency: NormalizeCurrency(payload.Currency, in.DefaultCurrency),
		Vendor:   vendor,
		Note:     strings.TrimSpace(payload.Note),
		Category: strings.TrimSpace(payload.Category),
		Date:     date,
		Source:   in.Source,
	}, nil
}

// coerceAmount accepts a JSON number or a numeric string such as "$1,250.00"
func coerceAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, false
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		d, err := decimal.NewFromString(num.String())
		return d, err == nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return decimal.Zero, false
	}
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, false
	}
	return parseAmount(m[2])
}

// cleanModelJSON strips Markdown fences and keeps the first JSON object
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	if start := strings.Index(s, "{"); start != -1 {
		var obj json.RawMessage
		if err := json.NewDecoder(strings.NewReader(s[start:])).Decode(&obj); err == nil {
			return string(obj)
		}
		s = s[start:]
	}
	return strings.TrimSpace(s)
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

func currencyCodes() string {
	codes := make([]string, len(currencies))
	for i, c := range currencies {
		codes[i] = c.Code
	}
	return strings.Join(codes, " ")
}
