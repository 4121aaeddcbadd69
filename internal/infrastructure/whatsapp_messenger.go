package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/yourusername/xmd-bot/internal/domain"
)

// maxMediaBytes caps downloaded media before it is uploaded to WhatsApp
const maxMediaBytes = 100 << 20

// WhatsAppMessenger implements domain.Messenger on a whatsmeow client
type WhatsAppMessenger struct {
	client       *whatsmeow.Client
	httpClient   *http.Client
	userAgent    string
	mediaTimeout time.Duration
	logger       *zap.Logger
}

// NewWhatsAppMessenger creates a messenger for client
func NewWhatsAppMessenger(client *whatsmeow.Client, userAgent string, mediaTimeout time.Duration, logger *zap.Logger) *WhatsAppMessenger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppMessenger{
		client:       client,
		httpClient:   &http.Client{},
		userAgent:    userAgent,
		mediaTimeout: mediaTimeout,
		logger:       logger,
	}
}

// Send delivers payload to chatID, quoting the inbound message when given
func (m *WhatsAppMessenger) Send(ctx context.Context, chatID string, payload domain.Payload, quoted *domain.InboundMessage) error {
	chat, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}

	var msg *waE2E.Message
	switch p := payload.(type) {
	case domain.TextPayload:
		msg = m.buildText(p, quoted)
	case domain.ReactPayload:
		msg, err = m.buildReaction(chat, p, quoted)
	case domain.VideoPayload:
		msg, err = m.buildVideo(ctx, p, quoted)
		if err != nil {
			return &domain.DeliveryError{Kind: domain.DeliveryVideo, Err: err}
		}
	case domain.DocumentPayload:
		msg, err = m.buildDocument(ctx, p, quoted)
		if err != nil {
			return &domain.DeliveryError{Kind: domain.DeliveryDocument, Err: err}
		}
	default:
		return fmt.Errorf("unsupported payload kind: %s", payload.Kind())
	}
	if err != nil {
		return err
	}

	if _, err := m.client.SendMessage(ctx, chat, msg); err != nil {
		switch payload.Kind() {
		case domain.PayloadVideo:
			return &domain.DeliveryError{Kind: domain.DeliveryVideo, Err: err}
		case domain.PayloadDocument:
			return &domain.DeliveryError{Kind: domain.DeliveryDocument, Err: err}
		}
		return fmt.Errorf("failed to send %s: %w", payload.Kind(), err)
	}
	return nil
}

func (m *WhatsAppMessenger) buildText(p domain.TextPayload, quoted *domain.InboundMessage) *waE2E.Message {
	if quoted == nil {
		return &waE2E.Message{Conversation: proto.String(p.Text)}
	}
	return &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text:        proto.String(p.Text),
			ContextInfo: contextInfo(quoted),
		},
	}
}

func (m *WhatsAppMessenger) buildReaction(chat types.JID, p domain.ReactPayload, quoted *domain.InboundMessage) (*waE2E.Message, error) {
	if quoted == nil {
		return nil, fmt.Errorf("reaction requires a quoted message")
	}
	sender, err := types.ParseJID(quoted.SenderID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender id %q: %w", quoted.SenderID, err)
	}
	return m.client.BuildReaction(chat, sender, types.MessageID(quoted.MessageID), p.Emoji), nil
}

func (m *WhatsAppMessenger) buildVideo(ctx context.Context, p domain.VideoPayload, quoted *domain.InboundMessage) (*waE2E.Message, error) {
	data, err := m.fetchMedia(ctx, p.URL)
	if err != nil {
		return nil, err
	}
	up, err := m.client.Upload(ctx, data, whatsmeow.MediaVideo)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	return &waE2E.Message{
		VideoMessage: &waE2E.VideoMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			Mimetype:      proto.String(p.Mimetype),
			FileSHA256:    up.FileSHA256,
			FileEncSHA256: up.FileEncSHA256,
			FileLength:    proto.Uint64(uint64(len(data))),
			Caption:       proto.String(p.Caption),
			ContextInfo:   contextInfo(quoted),
		},
	}, nil
}

func (m *WhatsAppMessenger) buildDocument(ctx context.Context, p domain.DocumentPayload, quoted *domain.InboundMessage) (*waE2E.Message, error) {
	data, err := m.fetchMedia(ctx, p.URL)
	if err != nil {
		return nil, err
	}
	up, err := m.client.Upload(ctx, data, whatsmeow.MediaDocument)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	return &waE2E.Message{
		DocumentMessage: &waE2E.DocumentMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			Mimetype:      proto.String(p.Mimetype),
			FileName:      proto.String(p.FileName),
			FileSHA256:    up.FileSHA256,
			FileEncSHA256: up.FileEncSHA256,
			FileLength:    proto.Uint64(uint64(len(data))),
			Caption:       proto.String(p.Caption),
			ContextInfo:   contextInfo(quoted),
		},
	}, nil
}

// fetchMedia downloads the media body that is uploaded to WhatsApp
func (m *WhatsAppMessenger) fetchMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	if m.mediaTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.mediaTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build media request: %w", err)
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read media: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("media is empty")
	}
	if len(data) > maxMediaBytes {
		return nil, fmt.Errorf("media exceeds %d bytes", maxMediaBytes)
	}

	m.logger.Debug("Media fetched", zap.String("url", mediaURL), zap.Int("bytes", len(data)))
	return data, nil
}

// contextInfo quotes the inbound message in a reply
func contextInfo(quoted *domain.InboundMessage) *waE2E.ContextInfo {
	if quoted == nil {
		return nil
	}
	info := &waE2E.ContextInfo{
		StanzaID:    proto.String(quoted.MessageID),
		Participant: proto.String(quoted.SenderID),
	}
	if raw, ok := quoted.Raw.(*waE2E.Message); ok {
		info.QuotedMessage = raw
	}
	return info
}

// InboundFromEvent converts a whatsmeow message event to the domain view
func InboundFromEvent(evt *events.Message) *domain.InboundMessage {
	msg := &domain.InboundMessage{
		ChatID:    evt.Info.Chat.String(),
		SenderID:  evt.Info.Sender.String(),
		MessageID: string(evt.Info.ID),
		FromMe:    evt.Info.IsFromMe,
		Raw:       evt.Message,
	}
	if evt.Message != nil {
		msg.Conversation = evt.Message.GetConversation()
		msg.ExtendedText = evt.Message.GetExtendedTextMessage().GetText()
	}
	return msg
}
