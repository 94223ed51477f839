// ABOUTME: User-visible success and failure notifications
// ABOUTME: One-way messages the core emits after mutations; nothing reads them back
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Notifier receives human-readable outcome messages.
type Notifier interface {
	Success(ctx context.Context, message string)
	Failure(ctx context.Context, message string, err error)
}

type nop struct{}

func (nop) Success(context.Context, string)        {}
func (nop) Failure(context.Context, string, error) {}

// Nop discards notifications.
var Nop Notifier = nop{}

// LogNotifier writes notifications to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notify")}
}

func (n *LogNotifier) Success(_ context.Context, message string) {
	n.logger.Info(message)
}

func (n *LogNotifier) Failure(_ context.Context, message string, err error) {
	n.logger.Warn(message, zap.Error(err))
}

// Console prints notifications for a terminal user.
type Console struct {
	out io.Writer
	mu  sync.Mutex
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Success(_ context.Context, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, "✓ %s\n", message)
}

func (c *Console) Failure(_ context.Context, message string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		_, _ = fmt.Fprintf(c.out, "✗ %s: %v\n", message, err)
		return
	}
	_, _ = fmt.Fprintf(c.out, "✗ %s\n", message)
}

// Message is one recorded notification.
type Message struct {
	OK   bool
	Text string
	Err  error
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Success(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{OK: true, Text: message})
}

func (r *Recorder) Failure(_ context.Context, message string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Text: message, Err: err})
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Multi forwards to several notifiers.
func Multi(notifiers ...Notifier) Notifier {
	return multi(notifiers)
}

type multi []Notifier

func (m multi) Success(ctx context.Context, message string) {
	for _, n := range m {
		n.Success(ctx, message)
	}
}

func (m multi) Failure(ctx context.Context, message string, err error) {
	for _, n := range m {
		n.Failure(ctx, message, err)
	}
}
