// Package nop provides a no-op event stream publisher, used when no event
// stream backend is configured.
package nop

import (
	"context"

	"github.com/papercomputeco/folio/pkg/eventstream"
)

// Publisher discards all events.
type Publisher struct{}

// NewPublisher creates a no-op publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) PublishDocument(context.Context, *eventstream.DocumentSyncedEvent) error {
	return nil
}

func (p *Publisher) Close() error {
	return nil
}

var _ eventstream.Publisher = (*Publisher)(nil)
