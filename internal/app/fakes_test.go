package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yourusername/xmd-bot/internal/domain"
)

// sentMessage is one payload recorded by fakeMessenger
type sentMessage struct {
	ChatID  string
	Payload domain.Payload
	Quoted  *domain.InboundMessage
}

// fakeMessenger records payloads and fails the payload kinds listed in fail
type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[domain.PayloadKind]error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{fail: make(map[domain.PayloadKind]error)}
}

func (m *fakeMessenger) Send(ctx context.Context, chatID string, payload domain.Payload, quoted *domain.InboundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Payload: payload, Quoted: quoted})
	if err, ok := m.fail[payload.Kind()]; ok {
		if payload.Kind() == domain.PayloadVideo {
			return &domain.DeliveryError{Kind: domain.DeliveryVideo, Err: err}
		}
		if payload.Kind() == domain.PayloadDocument {
			return &domain.DeliveryError{Kind: domain.DeliveryDocument, Err: err}
		}
		return err
	}
	return nil
}

func (m *fakeMessenger) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *fakeMessenger) kinds() []domain.PayloadKind {
	var kinds []domain.PayloadKind
	for _, s := range m.messages() {
		kinds = append(kinds, s.Payload.Kind())
	}
	return kinds
}

func (m *fakeMessenger) texts() []string {
	var texts []string
	for _, s := range m.messages() {
		if p, ok := s.Payload.(domain.TextPayload); ok {
			texts = append(texts, p.Text)
		}
	}
	return texts
}

// fakeProvider answers with the body or error stored under its request URL
type fakeProvider struct {
	name  string
	field string
}

func (p fakeProvider) Name() string { return p.name }

func (p fakeProvider) BuildRequest(resolvedURL string) string {
	return "https://" + p.name + ".test/?url=" + resolvedURL
}

func (p fakeProvider) ParseResponse(body any) (string, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := obj[p.field].(string)
	return s, ok && s != ""
}

// fakeFetcher maps request URLs to bodies or errors and records calls
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string]any
	errs   map[string]error
	calls  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{bodies: make(map[string]any), errs: make(map[string]error)}
}

func (f *fakeFetcher) GetJSON(ctx context.Context, rawURL string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rawURL)
	if err, ok := f.errs[rawURL]; ok {
		return nil, err
	}
	if body, ok := f.bodies[rawURL]; ok {
		return body, nil
	}
	return nil, errors.New("connection refused")
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeRedirects maps raw URLs to final URLs and counts calls
type fakeRedirects struct {
	mu    sync.Mutex
	final map[string]string
	calls int
}

func (r *fakeRedirects) Resolve(ctx context.Context, rawURL string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if final, ok := r.final[rawURL]; ok {
		return final
	}
	return rawURL
}

// fakeHost returns fixed host metrics
type fakeHost struct {
	uptime time.Duration
	mem    domain.MemoryStats
	err    error
}

func (h fakeHost) Uptime() time.Duration { return h.uptime }

func (h fakeHost) Memory() (domain.MemoryStats, error) { return h.mem, h.err }

// fakeLocator returns a fixed location or error
type fakeLocator struct {
	location *domain.LocationInfo
	err      error
	calls    int
	mu       sync.Mutex
}

func (l *fakeLocator) Locate(ctx context.Context) (*domain.LocationInfo, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.location, l.err
}

// fakeHistory is an in-memory download repository
type fakeHistory struct {
	mu      sync.Mutex
	records []*domain.DownloadRecord
}

func (h *fakeHistory) Create(record *domain.DownloadRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return nil
}

func (h *fakeHistory) Update(record *domain.DownloadRecord) error { return nil }

func (h *fakeHistory) FindByID(id string) (*domain.DownloadRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (h *fakeHistory) FindRecent(status domain.DownloadStatus, limit int) ([]*domain.DownloadRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*domain.DownloadRecord
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		if status == "" || h.records[i].Status == status {
			out = append(out, h.records[i])
		}
	}
	return out, nil
}

func (h *fakeHistory) GetStats() (*domain.DownloadStats, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &domain.DownloadStats{Total: int64(len(h.records)), ByProvider: map[string]int64{}}, nil
}

func (h *fakeHistory) last() *domain.DownloadRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) == 0 {
		return nil
	}
	return h.records[len(h.records)-1]
}

func newTestMessage(body string) *domain.InboundMessage {
	return &domain.InboundMessage{
		ChatID:       "123@s.whatsapp.net",
		SenderID:     "456@s.whatsapp.net",
		MessageID:    "MSG1",
		Conversation: body,
	}
}
