package study

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/explainer/internal/cache"
	"github.com/google/uuid"
)

// Cache stores serialized content between generations of one session.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
}

// GenerateOption configures a call to Generate.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	now   func() time.Time
	cache Cache
}

// WithClock overrides the clock used to stamp GeneratedAt.
func WithClock(now func() time.Time) GenerateOption {
	return func(o *generateOptions) {
		o.now = now
	}
}

// WithCache reuses content generated earlier in the session for identical
// input. A hit returns the cached content unchanged, ID and timestamp
// included.
func WithCache(c Cache) GenerateOption {
	return func(o *generateOptions) {
		o.cache = c
	}
}

// Generate validates the input and builds the study content for it.
func Generate(in RawInput, opts ...GenerateOption) (*GeneratedContent, error) {
	o := generateOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	key := cache.Key(in.Topic, in.Explanation, in.FlashcardCount)
	if o.cache != nil {
		if data, ok := o.cache.Get(key); ok {
			var content GeneratedContent
			if err := json.Unmarshal(data, &content); err == nil {
				log.Debug("reusing cached content", "topic", in.Topic, "id", content.ID)
				return &content, nil
			}
			log.Warn("ignoring unreadable cached content", "topic", in.Topic)
		}
	}

	analysis := Synthesize(in.Explanation, in.FlashcardCount)
	content := &GeneratedContent{
		ID:          uuid.New(),
		Topic:       in.Topic,
		Summary:     analysis.Summary,
		KeyPoints:   analysis.KeyPoints,
		Flashcards:  analysis.Flashcards,
		Quiz:        analysis.Quiz,
		Script:      Script(in.Topic, analysis.Summary),
		GeneratedAt: o.now(),
	}

	log.Debug("generated content",
		"id", content.ID,
		"topic", content.Topic,
		"key_points", len(content.KeyPoints),
		"flashcards", len(content.Flashcards),
		"quiz", len(content.Quiz))

	if o.cache != nil {
		data, err := json.Marshal(content)
		if err != nil {
			return nil, fmt.Errorf("failed to encode content: %w", err)
		}
		if err := o.cache.Put(key, data); err != nil {
			log.Warn("failed to cache content", "topic", in.Topic, "error", err)
		}
	}

	return content, nil
}
