package domain

import (
	"context"
	"strings"
)

// InboundMessage is the transport-neutral view of a received chat message
type InboundMessage struct {
	ChatID       string
	SenderID     string
	MessageID    string
	FromMe       bool
	Conversation string
	ExtendedText string
	Raw          any // transport message, used by the messenger for quoting
}

// Body returns the plain-text body, falling back to the extended text
func (m *InboundMessage) Body() string {
	if m.Conversation != "" {
		return m.Conversation
	}
	return m.ExtendedText
}

// Command returns the first whitespace-separated token of the body
func (m *InboundMessage) Command() string {
	fields := strings.Fields(m.Body())
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Argument returns the body without its first token, trimmed
func (m *InboundMessage) Argument() string {
	fields := strings.Fields(m.Body())
	if len(fields) < 2 {
		return ""
	}
	return strings.Join(fields[1:], " ")
}

// PayloadKind identifies an outbound payload shape
type PayloadKind string

const (
	PayloadText     PayloadKind = "text"
	PayloadReact    PayloadKind = "react"
	PayloadVideo    PayloadKind = "video"
	PayloadDocument PayloadKind = "document"
)

// Payload is one of the four outbound message shapes
type Payload interface {
	Kind() PayloadKind
}

// TextPayload is a plain text reply
type TextPayload struct {
	Text string
}

// ReactPayload is an emoji reaction on the quoted message
type ReactPayload struct {
	Emoji string
}

// VideoPayload sends the media at URL as a playable video
type VideoPayload struct {
	URL      string
	Mimetype string
	Caption  string
}

// DocumentPayload sends the media at URL as a file attachment
type DocumentPayload struct {
	URL      string
	Mimetype string
	FileName string
	Caption  string
}

func (TextPayload) Kind() PayloadKind     { return PayloadText }
func (ReactPayload) Kind() PayloadKind    { return PayloadReact }
func (VideoPayload) Kind() PayloadKind    { return PayloadVideo }
func (DocumentPayload) Kind() PayloadKind { return PayloadDocument }

// Messenger sends payloads to a chat. quoted may be nil.
type Messenger interface {
	Send(ctx context.Context, chatID string, payload Payload, quoted *InboundMessage) error
}
