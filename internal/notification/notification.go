package notification

import (
	"context"
	"log/slog"
)

const (
	// KindLevelUp is sent once per level gained.
	KindLevelUp = "level_up"
	// KindEnvelopeOpened reports the images unlocked by an envelope.
	KindEnvelopeOpened = "envelope_opened"
	// KindNothingToUnlock reports an envelope refused because the album is complete.
	KindNothingToUnlock = "nothing_to_unlock"
	// KindUpgradePurchased reports a new permanent upgrade.
	KindUpgradePurchased = "upgrade_purchased"
	// KindGameReward reports coins and XP credited after a mini-game.
	KindGameReward = "game_reward"
	// KindPurchaseRejected reports any other refused purchase.
	KindPurchaseRejected = "purchase_rejected"
	// KindPhrase reports phrase edits.
	KindPhrase = "phrase"
	// KindProfileProvisioned is emitted server-side when a signup creates a profile.
	KindProfileProvisioned = "profile_provisioned"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to the user interface or downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}

// Recorder keeps every message in memory. Useful for tests and for UIs that
// drain toasts on their own schedule.
type Recorder struct {
	messages chan Message
}

// NewRecorder builds a recorder buffering up to size messages; extra
// messages are dropped.
func NewRecorder(size int) *Recorder {
	return &Recorder{messages: make(chan Message, size)}
}

// Send buffers the message.
func (r *Recorder) Send(_ context.Context, message Message) error {
	select {
	case r.messages <- message:
	default:
	}
	return nil
}

// Drain returns and clears the buffered messages.
func (r *Recorder) Drain() []Message {
	var out []Message
	for {
		select {
		case m := <-r.messages:
			out = append(out, m)
		default:
			return out
		}
	}
}
