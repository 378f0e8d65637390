package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ChatConfig holds the knobs of the chat intake pipeline
type ChatConfig struct {
	LinkCodeTTL       time.Duration
	LinkCodeLength    int
	LinkPrefix        string
	MaxLinkAttempts   int
	RateLimitWindow   time.Duration
	DefaultCurrency   string
	OracleTimeout     time.Duration
	VisionTimeout     time.Duration
	MediaFetchTimeout time.Duration
	MaxMediaBytes     int64
	DedupTTL          time.Duration
	SpeechLanguage    string
}

func LoadChatConfig() *ChatConfig {
	return &ChatConfig{
		LinkCodeTTL:       getEnvAsDuration("CHAT_LINK_CODE_TTL", 10*time.Minute),
		LinkCodeLength:    getEnvAsInt("CHAT_LINK_CODE_LENGTH", 8),
		LinkPrefix:        strings.ToLower(getEnv("CHAT_LINK_PREFIX", "link_")),
		MaxLinkAttempts:   getEnvAsInt("CHAT_MAX_LINK_ATTEMPTS", 10),
		RateLimitWindow:   getEnvAsDuration("CHAT_RATE_LIMIT_WINDOW", 1*time.Hour),
		DefaultCurrency:   strings.ToUpper(getEnv("CHAT_DEFAULT_CURRENCY", "USD")),
		OracleTimeout:     getEnvAsDuration("CHAT_ORACLE_TIMEOUT", 10*time.Second),
		VisionTimeout:     getEnvAsDuration("CHAT_VISION_TIMEOUT", 30*time.Second),
		MediaFetchTimeout: getEnvAsDuration("CHAT_MEDIA_FETCH_TIMEOUT", 15*time.Second),
		MaxMediaBytes:     int64(getEnvAsInt("CHAT_MAX_MEDIA_BYTES", 10*1024*1024)),
		DedupTTL:          getEnvAsDuration("CHAT_DEDUP_TTL", 24*time.Hour),
		SpeechLanguage:    getEnv("CHAT_SPEECH_LANGUAGE", "en-US"),
	}
}

// AIConfig selects and authenticates the hosted completion service
type AIConfig struct {
	Provider string
	Model    string
	APIKey   string
}

// LoadAIConfig reads ai.* keys bound by the server entrypoint
func LoadAIConfig() *AIConfig {
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.model", "")

	return &AIConfig{
		Provider: strings.ToLower(viper.GetString("ai.provider")),
		Model:    viper.GetString("ai.model"),
		APIKey:   viper.GetString("ai.api_key"),
	}
}

// RelayConfig holds the messaging relay credentials
type RelayConfig struct {
	AccountSID    string `validate:"required"`
	AuthToken     string `validate:"required"`
	FromNumber    string `validate:"required"`
	PublicURL     string `validate:"omitempty,url"`
	ValidateHooks bool
}

func LoadRelayConfig() *RelayConfig {
	viper.SetDefault("twilio.validate_signature", true)

	return &RelayConfig{
		AccountSID:    viper.GetString("twilio.account_sid"),
		AuthToken:     viper.GetString("twilio.auth_token"),
		FromNumber:    viper.GetString("twilio.whatsapp_number"),
		PublicURL:     strings.TrimRight(viper.GetString("twilio.public_url"), "/"),
		ValidateHooks: viper.GetBool("twilio.validate_signature"),
	}
}

// Validate reports missing relay credentials
func (c *RelayConfig) Validate() error {
	return validator.New().Struct(c)
}

// BareNumber returns the relay sender number without the channel prefix
func (c *RelayConfig) BareNumber() string {
	return strings.TrimPrefix(c.FromNumber, "whatsapp:")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
