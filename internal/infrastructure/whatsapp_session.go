package infrastructure

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"

	"github.com/yourusername/xmd-bot/internal/domain"
)

// EventHandler receives inbound WhatsApp messages
type EventHandler func(msg *domain.InboundMessage)

// WhatsAppSession owns the session store and the connected client
type WhatsAppSession struct {
	container *sqlstore.Container
	client    *whatsmeow.Client
	config    *domain.BotConfig
	qrOut     io.Writer
	logger    *zap.Logger
}

// OpenWhatsAppSession opens the session store and creates a client for the
// first stored device, or a new device if none is paired yet
func OpenWhatsAppSession(ctx context.Context, store *domain.StoreConfig, bot *domain.BotConfig, qrOut io.Writer, waLogger waLog.Logger, logger *zap.Logger) (*WhatsAppSession, error) {
	container, err := sqlstore.New(ctx, store.SessionDialect, store.SessionDSN, waLogger.Sub("Database"))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load device: %w", err)
	}

	client := whatsmeow.NewClient(device, waLogger.Sub("Client"))
	return &WhatsAppSession{
		container: container,
		client:    client,
		config:    bot,
		qrOut:     qrOut,
		logger:    logger,
	}, nil
}

// Client returns the underlying whatsmeow client
func (s *WhatsAppSession) Client() *whatsmeow.Client {
	return s.client
}

// IsConnected reports whether the client is connected and logged in
func (s *WhatsAppSession) IsConnected() bool {
	return s.client.IsConnected() && s.client.IsLoggedIn()
}

// OnMessage registers handler for every inbound message event
func (s *WhatsAppSession) OnMessage(handler EventHandler) {
	s.client.AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Message:
			handler(InboundFromEvent(v))
		case *events.Connected:
			s.logger.Info("WhatsApp connected")
		case *events.LoggedOut:
			s.logger.Warn("WhatsApp session logged out", zap.String("reason", v.Reason.String()))
		}
	})
}

// Connect connects the client, pairing it first when no session is stored
func (s *WhatsAppSession) Connect(ctx context.Context) error {
	if s.client.Store.ID != nil {
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		s.logger.Info("Logged in", zap.String("user", s.client.Store.ID.User))
		return nil
	}

	if s.config.PairPhone != "" {
		return s.pairWithPhone(ctx)
	}
	return s.pairWithQR(ctx)
}

func (s *WhatsAppSession) pairWithQR(ctx context.Context) error {
	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			s.logger.Info("Scan the QR code to log in")
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, s.qrOut)
		case "success":
			s.logger.Info("QR pairing succeeded")
			return nil
		default:
			s.logger.Info("QR channel event", zap.String("event", evt.Event))
		}
	}
	if !s.client.IsLoggedIn() {
		return fmt.Errorf("QR pairing did not complete")
	}
	return nil
}

func (s *WhatsAppSession) pairWithPhone(ctx context.Context) error {
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	// the pairing request is rejected until the websocket handshake settles
	select {
	case <-time.After(3 * time.Second):
	case <-ctx.Done():
		return ctx.Err()
	}

	phone := strings.TrimPrefix(s.config.PairPhone, "+")
	code, err := s.client.PairPhone(ctx, phone, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
	if err != nil {
		return fmt.Errorf("failed to request pairing code: %w", err)
	}
	s.logger.Info("Enter the pairing code on your phone", zap.String("code", code))
	return nil
}

// Close disconnects the client and closes the session store
func (s *WhatsAppSession) Close() error {
	s.client.Disconnect()
	return s.container.Close()
}
