package models

import "strings"

// Intent is what the user meant by a text message
type Intent string

const (
	IntentLink        Intent = "link"
	IntentGreeting    Intent = "greeting"
	IntentQuestion    Intent = "question"
	IntentTransaction Intent = "transaction"
)

// Attachment is a single media item delivered with an inbound message
type Attachment struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

func (a *Attachment) IsImage() bool {
	return a != nil && strings.HasPrefix(strings.ToLower(a.ContentType), "image/")
}

func (a *Attachment) IsAudio() bool {
	return a != nil && strings.HasPrefix(strings.ToLower(a.ContentType), "audio/")
}

// InboundMessage is one message as delivered by the relay
type InboundMessage struct {
	ID         string      `json:"id"`
	From       string      `json:"from"`
	Text       string      `json:"text"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Reply is the text sent back to the sender
type Reply struct {
	Text string `json:"text"`
}
