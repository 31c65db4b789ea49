// Package events publishes notifications about storage changes (uploads and
// deletions) to a message broker. Publishing is best-effort: a broker
// failure is logged by the caller and never fails the request that
// triggered it.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Channels the server publishes to.
const (
	ChannelImageUploaded = "image.uploaded"
	ChannelImageDeleted  = "image.deleted"
)

// ImageEvent is the payload published on upload and delete.
type ImageEvent struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalname,omitempty"`
	Size         int64     `json:"size,omitempty"`
	MimeType     string    `json:"mimetype,omitempty"`
	UserID       int       `json:"user_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Publisher wraps a backend with a stable API.
type Publisher struct {
	backend Backend
}

// NewPublisher constructs a Publisher for the provided backend.
func NewPublisher(backend Backend) *Publisher {
	return &Publisher{backend: backend}
}

// PublishImageEvent marshals the event and sends it to the named channel.
func (p *Publisher) PublishImageEvent(ctx context.Context, channel string, event ImageEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return p.backend.Publish(ctx, channel, data, map[string]string{"content-type": "application/json"})
}

// Subscribe consumes messages from the named channel.
func (p *Publisher) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return p.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	return p.backend.Close()
}
