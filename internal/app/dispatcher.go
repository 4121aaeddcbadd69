package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/yourusername/xmd-bot/internal/domain"
	"github.com/yourusername/xmd-bot/internal/infrastructure"
	"github.com/yourusername/xmd-bot/pkg/logger"
	"go.uber.org/zap"
)

// Command is a chat command triggered by "<prefix><alias> [argument]"
type Command interface {
	Name() string
	Aliases() []string
	Handle(ctx context.Context, msg *domain.InboundMessage) error
}

// Dispatcher routes inbound messages to commands, one goroutine per message
type Dispatcher struct {
	prefix    string
	commands  map[string]Command
	messenger domain.Messenger
	metrics   *infrastructure.Metrics
	events    *logger.MultiLogger
	logger    *zap.Logger
	wg        sync.WaitGroup
	mu        sync.RWMutex
}

// NewDispatcher creates a dispatcher. events may be nil.
func NewDispatcher(prefix string, messenger domain.Messenger, metrics *infrastructure.Metrics, events *logger.MultiLogger, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		prefix:    prefix,
		commands:  make(map[string]Command),
		messenger: messenger,
		metrics:   metrics,
		events:    events,
		logger:    log,
	}
}

// Register adds cmd under each of its aliases
func (d *Dispatcher) Register(cmd Command) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, alias := range cmd.Aliases() {
		d.commands[strings.ToLower(alias)] = cmd
	}
}

// Aliases returns the registered trigger words, sorted
func (d *Dispatcher) Aliases() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	aliases := lo.Keys(d.commands)
	sort.Strings(aliases)
	return aliases
}

// Match returns the command addressed by msg, if any
func (d *Dispatcher) Match(msg *domain.InboundMessage) (Command, bool) {
	if msg == nil || msg.FromMe {
		return nil, false
	}
	token := msg.Command()
	if !strings.HasPrefix(token, d.prefix) {
		return nil, false
	}
	name := strings.ToLower(strings.TrimPrefix(token, d.prefix))
	if name == "" {
		return nil, false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	cmd, ok := d.commands[name]
	return cmd, ok
}

// Dispatch handles msg asynchronously when it addresses a command
func (d *Dispatcher) Dispatch(ctx context.Context, msg *domain.InboundMessage) {
	cmd, ok := d.Match(msg)
	if !ok {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx, cmd, msg)
	}()
}

// Wait blocks until all in-flight commands return
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// run executes cmd, turning a panic into an error reply
func (d *Dispatcher) run(ctx context.Context, cmd Command, msg *domain.InboundMessage) {
	start := time.Now()
	fields := []zap.Field{
		zap.String("command", cmd.Name()),
		zap.String("chat", msg.ChatID),
		zap.String("sender", msg.SenderID),
		zap.String("message_id", msg.MessageID),
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Command panicked", append(fields, zap.Any("panic", r))...)
			d.events.LogAppError("command panic", append(fields,
				zap.Any("panic", r),
				zap.Stack("stack"))...)
			d.metrics.ObserveCommand(cmd.Name(), "panic")

			text := fmt.Sprintf("❌ Error: %v", r)
			if err := d.messenger.Send(ctx, msg.ChatID, domain.TextPayload{Text: text}, msg); err != nil {
				d.logger.Error("Failed to send panic reply", zap.Error(err))
			}
		}
	}()

	d.events.LogCommandEvent("command received", append(fields, zap.String("argument", msg.Argument()))...)

	err := cmd.Handle(ctx, msg)
	duration := time.Since(start)
	if err != nil {
		d.logger.Warn("Command failed", append(fields, zap.Duration("duration", duration), zap.Error(err))...)
		d.events.LogAppError("command failed", append(fields, zap.Error(err))...)
		return
	}

	d.logger.Debug("Command completed", append(fields, zap.Duration("duration", duration))...)
	d.events.LogCommandEvent("command completed", append(fields, zap.Duration("duration", duration))...)
}
