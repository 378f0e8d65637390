package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spenly/backend/internal/config"
)

func TestRelayMediaFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/receipt":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png-bytes"))
		case "/large":
			w.Write([]byte(strings.Repeat("x", 64)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	fetcher := NewRelayMediaFetcher("AC123", "secret", 32, 5*time.Second)

	t.Run("downloads with credentials", func(t *testing.T) {
		media, err := fetcher.Fetch(ctx, server.URL+"/receipt", "image/jpeg")

		require.NoError(t, err)
		assert.Equal(t, "image/png", media.ContentType)
		assert.Equal(t, []byte("png-bytes"), media.Data)
	})

	t.Run("rejects oversized media", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, server.URL+"/large", "image/jpeg")

		assert.ErrorContains(t, err, "exceeds 32 bytes")
	})

	t.Run("non-2xx status", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, server.URL+"/missing", "image/jpeg")

		assert.ErrorContains(t, err, "status 404")
	})

	t.Run("wrong credentials", func(t *testing.T) {
		_, err := NewRelayMediaFetcher("AC123", "wrong", 32, time.Second).Fetch(ctx, server.URL+"/receipt", "")

		assert.ErrorContains(t, err, "status 401")
	})
}

func TestReceiptObjectName(t *testing.T) {
	at := time.Date(2024, time.May, 10, 23, 0, 0, 0, time.UTC)

	name := receiptObjectName("owner-1", "image/jpeg", at)
	assert.True(t, strings.HasPrefix(name, "receipts/owner-1/2024/05/10/"), name)
	assert.True(t, strings.HasSuffix(name, ".jpg"), name)

	assert.True(t, strings.HasSuffix(receiptObjectName("owner-1", "application/x-unknown-thing", at), ".bin"))
	assert.NotEqual(t, name, receiptObjectName("owner-1", "image/jpeg", at))
}

func TestEncodingForContentType(t *testing.T) {
	enc, rate, err := encodingForContentType("audio/ogg; codecs=opus")
	require.NoError(t, err)
	assert.Equal(t, speechpb.RecognitionConfig_OGG_OPUS, enc)
	assert.Equal(t, int32(16000), rate)

	enc, rate, err = encodingForContentType("audio/amr")
	require.NoError(t, err)
	assert.Equal(t, speechpb.RecognitionConfig_AMR, enc)
	assert.Equal(t, int32(8000), rate)

	_, _, err = encodingForContentType("audio/mpeg")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestRelayAddresses(t *testing.T) {
	assert.Equal(t, "whatsapp:+14155550123", WhatsAppAddress("+14155550123"))
	assert.Equal(t, "whatsapp:+14155550123", WhatsAppAddress("whatsapp:+14155550123"))
	assert.Equal(t, "+14155550123", BareAddress(" whatsapp:+14155550123 "))
	assert.Equal(t, "+14155550123", BareAddress("+14155550123"))
}

func TestTwilioRelay_ValidSignature(t *testing.T) {
	relay := NewTwilioRelay(&config.RelayConfig{AccountSID: "AC123", AuthToken: "12345", FromNumber: "+14155238886"})

	assert.False(t, relay.ValidSignature("https://example.com/webhook", map[string]string{"Body": "hi"}, "bogus"))
}
