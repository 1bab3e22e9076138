// Package deliver pushes report messages to subscribed sessions through
// pluggable destinations.
package deliver

import (
	"context"
	"errors"
	"fmt"
)

// Message is one report delivery: an image when rendering succeeded, text
// plus the cached (already mosaicked) cover files otherwise.
type Message struct {
	Reason     string   `json:"reason"`
	Text       string   `json:"text,omitempty"`
	ImagePath  string   `json:"image_path,omitempty"`
	CoverPaths []string `json:"cover_paths,omitempty"`
}

// Deliverer sends a message to one session on a specific destination.
type Deliverer interface {
	Name() string
	Send(ctx context.Context, session string, msg *Message) error
}

// Manager broadcasts a message across every configured deliverer.
type Manager struct {
	deliverers []Deliverer
}

// NewManager creates a delivery manager.
func NewManager(deliverers []Deliverer) *Manager {
	return &Manager{deliverers: deliverers}
}

// HasDeliverers reports whether at least one destination is configured.
func (m *Manager) HasDeliverers() bool {
	return len(m.deliverers) > 0
}

// Send pushes msg to session on every deliverer, joining per-destination
// failures so one broken destination never hides the others.
func (m *Manager) Send(ctx context.Context, session string, msg *Message) error {
	var errs []error
	for _, d := range m.deliverers {
		if err := d.Send(ctx, session, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))
		}
	}
	return errors.Join(errs...)
}
