package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/spenly/backend/internal/logger"
)

// Transcriber turns a voice note into text
type Transcriber interface {
	Transcribe(ctx context.Context, media *Media) (string, error)
}

// SpeechTranscriber uses Google Cloud Speech-to-Text
type SpeechTranscriber struct {
	client   *speech.Client
	language string
	timeout  time.Duration
}

// NewSpeechTranscriber returns nil when no speech client can be created, so
// voice notes are answered with the unsupported-media reply.
func NewSpeechTranscriber(ctx context.Context, language string) *SpeechTranscriber {
	client, err := speech.NewClient(ctx)
	if err != nil {
		l := logger.Component("voice")
		l.Warn().Err(err).Msg("speech client unavailable, voice notes disabled")
		return nil
	}
	return &SpeechTranscriber{client: client, language: language, timeout: 30 * time.Second}
}

func (s *SpeechTranscriber) Transcribe(ctx context.Context, media *Media) (string, error) {
	if media == nil || len(media.Data) == 0 {
		return "", errors.New("audio data is empty")
	}

	encoding, sampleRate, err := encodingForContentType(media.ContentType)
	if err != nil {
		return "", err
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encoding,
			SampleRateHertz:            sampleRate,
			LanguageCode:               s.language,
			EnableAutomaticPunctuation: true,
			Model:                      "latest_short",
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: media.Data},
		},
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Recognize(timeoutCtx, req)
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript.WriteString(result.Alternatives[0].Transcript)
			transcript.WriteString(" ")
		}
	}

	text := strings.TrimSpace(transcript.String())
	if text == "" {
		return "", errors.New("no transcription results")
	}
	return text, nil
}

func (s *SpeechTranscriber) Close() error {
	if s != nil && s.client != nil {
		return s.client.Close()
	}
	return nil
}

// encodingForContentType maps relay voice-note MIME types onto recognizer
// settings. WhatsApp voice notes arrive as audio/ogg (Opus, 16 kHz).
func encodingForContentType(contentType string) (speechpb.RecognitionConfig_AudioEncoding, int32, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch ct {
	case "audio/ogg", "audio/opus":
		return speechpb.RecognitionConfig_OGG_OPUS, 16000, nil
	case "audio/amr":
		return speechpb.RecognitionConfig_AMR, 8000, nil
	case "audio/amr-wb":
		return speechpb.RecognitionConfig_AMR_WB, 16000, nil
	case "audio/webm":
		return speechpb.RecognitionConfig_WEBM_OPUS, 48000, nil
	case "audio/flac", "audio/x-flac":
		return speechpb.RecognitionConfig_FLAC, 0, nil
	case "audio/wav", "audio/x-wav", "audio/l16":
		return speechpb.RecognitionConfig_LINEAR16, 16000, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, 0, fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
	}
}
