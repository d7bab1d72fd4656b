package notification

import (
	"context"
	"log/slog"
	"sync"
)

// Notification kinds shown to the person driving the console.
const (
	KindSuccess = "success"
	KindError   = "error"
	KindInfo    = "info"
)

// Message describes a single transient notification.
type Message struct {
	Kind string `json:"kind"`
	Body string `json:"body"`
}

// Notifier delivers notifications to whatever renders them.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// Success is shorthand for sending a success message and ignoring delivery errors.
func Success(ctx context.Context, n Notifier, body string) {
	if n != nil {
		_ = n.Send(ctx, Message{Kind: KindSuccess, Body: body})
	}
}

// Error is shorthand for sending an error message and ignoring delivery errors.
func Error(ctx context.Context, n Notifier, body string) {
	if n != nil {
		_ = n.Send(ctx, Message{Kind: KindError, Body: body})
	}
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(ctx context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.InfoContext(ctx, "notification", "kind", message.Kind, "body", message.Body)
	return nil
}

// Inbox buffers notifications until a reader drains them. The console hands
// one inbox to each browser session and flushes it with every response.
type Inbox struct {
	mu       sync.Mutex
	limit    int
	messages []Message
	forward  Notifier
}

// NewInbox builds an inbox keeping at most limit messages; older ones are
// dropped. Messages are also handed to forward when it is non-nil.
func NewInbox(limit int, forward ...Notifier) *Inbox {
	if limit <= 0 {
		limit = 20
	}
	b := &Inbox{limit: limit}
	if len(forward) > 0 {
		b.forward = Fanout(forward)
	}
	return b
}

// Send appends the message.
func (b *Inbox) Send(ctx context.Context, message Message) error {
	b.mu.Lock()
	b.messages = append(b.messages, message)
	if over := len(b.messages) - b.limit; over > 0 {
		b.messages = append([]Message(nil), b.messages[over:]...)
	}
	b.mu.Unlock()
	if b.forward != nil {
		return b.forward.Send(ctx, message)
	}
	return nil
}

// Drain returns buffered messages in arrival order and empties the inbox.
func (b *Inbox) Drain() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.messages
	b.messages = nil
	if out == nil {
		return []Message{}
	}
	return out
}

// Fanout sends every message to each notifier in turn and returns the first error.
type Fanout []Notifier

// Send delivers the message to all notifiers.
func (f Fanout) Send(ctx context.Context, message Message) error {
	var first error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, message); err != nil && first == nil {
			first = err
		}
	}
	return first
}
