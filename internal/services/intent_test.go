package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/spenly/backend/internal/config"
	"github.com/spenly/backend/internal/models"
)

func TestHeuristicIntent(t *testing.T) {
	tests := map[string]models.Intent{
		"hi":                     models.IntentGreeting,
		"Hello!":                 models.IntentGreeting,
		"good morning":           models.IntentGreeting,
		"how does this work?":    models.IntentQuestion,
		"what can you do":        models.IntentQuestion,
		"2":                      models.IntentQuestion,
		"can I log 5 things":     models.IntentQuestion,
		"Pizza $15":              models.IntentTransaction,
		"300 for groceries":      models.IntentTransaction,
		"uber to the airport 23": models.IntentTransaction,
		"pizza":                  models.IntentQuestion,
		"":                       models.IntentQuestion,
	}
	for text, want := range tests {
		assert.Equal(t, want, HeuristicIntent(text), text)
	}
}

func TestIsLinkCode(t *testing.T) {
	assert.True(t, IsLinkCode("link_ab12", "link_"))
	assert.True(t, IsLinkCode("  LINK_AB12-CD ", "link_"))
	assert.False(t, IsLinkCode("link_", "link_"))
	assert.False(t, IsLinkCode("link_ab 12", "link_"))
	assert.False(t, IsLinkCode("please link_ab12", "link_"))
	assert.Equal(t, "ab12", NormalizeLinkCode(" LINK_AB12 ", "link_"))
}

func TestIsLinkCode_SurroundingPunctuation(t *testing.T) {
	for _, text := range []string{"link_ab12.", "Link_AB12!", "\"link_ab12\"", "link_ab12 ."} {
		assert.True(t, IsLinkCode(text, "link_"), text)
		assert.Equal(t, "ab12", NormalizeLinkCode(text, "link_"), text)
	}
	assert.False(t, IsLinkCode("link_.", "link_"))
	assert.False(t, IsLinkCode("link_ab.12", "link_"))
}

func TestIntentClassifier_Classify(t *testing.T) {
	cfg := config.LoadChatConfig()

	t.Run("link code skips the oracle", func(t *testing.T) {
		completer := new(MockCompleter)
		c := NewIntentClassifier(NewAIClient(completer), cfg)

		assert.Equal(t, models.IntentLink, c.Classify(context.Background(), "link_ab12", false))
		completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("oracle answer is used", func(t *testing.T) {
		completer := new(MockCompleter)
		completer.On("Complete", mock.Anything, mock.Anything).Return(" Transaction.\n", nil)
		c := NewIntentClassifier(NewAIClient(completer), cfg)

		assert.Equal(t, models.IntentTransaction, c.Classify(context.Background(), "spent a tenner on lunch", true))
	})

	t.Run("oracle failure falls back to heuristics", func(t *testing.T) {
		completer := new(MockCompleter)
		completer.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("timeout"))
		c := NewIntentClassifier(NewAIClient(completer), cfg)

		assert.Equal(t, models.IntentGreeting, c.Classify(context.Background(), "hey", true))
	})

	t.Run("oracle link answer without pattern falls back", func(t *testing.T) {
		completer := new(MockCompleter)
		completer.On("Complete", mock.Anything, mock.Anything).Return("link", nil)
		c := NewIntentClassifier(NewAIClient(completer), cfg)

		assert.Equal(t, models.IntentTransaction, c.Classify(context.Background(), "coffee 4", true))
	})

	t.Run("no detector", func(t *testing.T) {
		c := NewIntentClassifier(nil, cfg)
		assert.Equal(t, models.IntentQuestion, c.Classify(context.Background(), "why?", true))
	})
}
