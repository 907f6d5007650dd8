// Package notification handles sending notifications to external services.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/containrrr/shoutrrr"
	"github.com/rust-it-cr/log-collector/internal/config"
)

// Summary describes one completed extraction.
type Summary struct {
	Source      string
	Destination string
	Window      string // Empty when no time filter was active
	Files       int
	LinesTotal  int
	LinesKept   int
	Duration    time.Duration
}

// Notifier handles sending notifications via Shoutrrr
type Notifier struct {
	enabled     bool
	shoutrrrURL string
	send        func(url, message string) error
}

// NewNotifier initializes a Shoutrrr-based notification client from config.
func NewNotifier(cfg *config.Config) (*Notifier, error) {
	if cfg == nil || !cfg.Notification.Enabled {
		return &Notifier{enabled: false}, nil
	}

	url := strings.TrimSpace(cfg.Notification.ShoutrrURL)
	if url == "" {
		return &Notifier{enabled: false}, fmt.Errorf("notification enabled but shoutrrr_url not configured: provide URL in format 'service://credentials' (e.g., slack://token@channel, discord://token@webhookid)")
	}

	return &Notifier{
		enabled:     true,
		shoutrrrURL: url,
		send:        func(url, message string) error { return shoutrrr.Send(url, message) },
	}, nil
}

// FormatSummary renders the notification text for s.
func FormatSummary(s Summary) string {
	var sb strings.Builder
	sb.WriteString("📦 logc extraction complete\n")
	sb.WriteString(fmt.Sprintf("🗂️  Source: %s\n", s.Source))
	sb.WriteString(fmt.Sprintf("📄 Destination: %s\n", s.Destination))
	if s.Window != "" {
		sb.WriteString(fmt.Sprintf("🕒 Window: %s\n", s.Window))
	}
	sb.WriteString(fmt.Sprintf("📊 Files: %d, lines kept: %d of %d\n", s.Files, s.LinesKept, s.LinesTotal))
	if s.Duration > 0 {
		sb.WriteString(fmt.Sprintf("⏱️  Took %s\n", s.Duration.Round(time.Millisecond)))
	}
	return sb.String()
}

// SendExtractionSummary delivers the result of an extraction via the configured channel.
func (n *Notifier) SendExtractionSummary(s Summary) error {
	if !n.enabled {
		return nil // Notifications disabled
	}

	if err := n.send(n.shoutrrrURL, FormatSummary(s)); err != nil {
		// Extract service type from URL (e.g., "slack://..." -> "slack")
		serviceType := "unknown"
		if idx := strings.Index(n.shoutrrrURL, "://"); idx > 0 {
			serviceType = n.shoutrrrURL[:idx]
		}
		return fmt.Errorf("notification failed to send via %s (destination: %s): %w", serviceType, s.Destination, err)
	}

	return nil
}

// IsEnabled reports whether notifications are configured and active.
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}
