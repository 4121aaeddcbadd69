package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/xmd-bot/internal/domain"
)

const testVideoURL = "https://facebook.com/video/123"

type facebookFixture struct {
	cmd       *FacebookCommand
	messenger *fakeMessenger
	fetcher   *fakeFetcher
	redirects *fakeRedirects
	history   *fakeHistory
	providers []domain.Provider
}

func newFacebookFixture() *facebookFixture {
	f := &facebookFixture{
		messenger: newFakeMessenger(),
		fetcher:   newFakeFetcher(),
		redirects: &fakeRedirects{},
		history:   &fakeHistory{},
		providers: newFakeProviders(),
	}
	resolver := NewDownloadResolver(f.redirects, f.fetcher, f.providers, nil, nil)
	bot := &domain.BotConfig{Name: "404-XMD", Prefix: "."}
	f.cmd = NewFacebookCommand(resolver, f.messenger, f.history, bot, nil, nil)
	f.cmd.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return f
}

func (f *facebookFixture) serve(providerIdx int, body map[string]any) {
	f.fetcher.bodies[f.providers[providerIdx].BuildRequest(testVideoURL)] = body
}

func TestFacebookCommand_MissingURL(t *testing.T) {
	f := newFacebookFixture()

	require.NoError(t, f.cmd.Handle(context.Background(), newTestMessage(".fb")))

	assert.Equal(t, []string{"Please provide a Facebook video URL.\nExample: .fb https://www.facebook.com/..."}, f.messenger.texts())
	assert.Equal(t, 0, f.fetcher.callCount())
	assert.Equal(t, domain.StatusRejected, f.history.last().Status)
}

func TestFacebookCommand_UnsupportedURL(t *testing.T) {
	f := newFacebookFixture()

	require.NoError(t, f.cmd.Handle(context.Background(), newTestMessage(".fb not-a-url")))

	assert.Equal(t, []domain.PayloadKind{domain.PayloadText}, f.messenger.kinds())
	assert.Equal(t, "That doesn't look like a Facebook video link.\nSupported domains: facebook.com, fb.watch, fb.com", f.messenger.texts()[0])
	assert.Equal(t, 0, f.redirects.calls)
	assert.Equal(t, 0, f.fetcher.callCount())
}

func TestFacebookCommand_DeliversVideo(t *testing.T) {
	f := newFacebookFixture()
	f.serve(0, map[string]any{"url": "https://cdn.example/v.mp4", "title": "Cats"})

	msg := newTestMessage(".fb " + testVideoURL)
	require.NoError(t, f.cmd.Handle(context.Background(), msg))

	sent := f.messenger.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, domain.ReactPayload{Emoji: "🔄"}, sent[0].Payload)

	video, ok := sent[1].Payload.(domain.VideoPayload)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example/v.mp4", video.URL)
	assert.Equal(t, "video/mp4", video.Mimetype)
	assert.Equal(t, "📱 *Facebook Video*\n\n📝 *Title:* Cats\n\n⬇️ *Downloaded by 404-XMD*", video.Caption)
	assert.Same(t, msg, sent[1].Quoted)

	record := f.history.last()
	assert.Equal(t, domain.StatusDelivered, record.Status)
	assert.Equal(t, "first", record.Provider)
	assert.Equal(t, testVideoURL, record.RequestURL)
}

func TestFacebookCommand_FallsBackToDocument(t *testing.T) {
	f := newFacebookFixture()
	f.serve(1, map[string]any{"url": "https://cdn.example/v.mp4"})
	f.messenger.fail[domain.PayloadVideo] = errors.New("media rejected")

	require.NoError(t, f.cmd.Handle(context.Background(), newTestMessage(".fb "+testVideoURL)))

	assert.Equal(t, []domain.PayloadKind{domain.PayloadReact, domain.PayloadVideo, domain.PayloadDocument}, f.messenger.kinds())
	doc, ok := f.messenger.messages()[2].Payload.(domain.DocumentPayload)
	require.True(t, ok)
	assert.Equal(t, "facebook_video_1700000000123.mp4", doc.FileName)
	assert.Equal(t, "video/mp4", doc.Mimetype)
	assert.Contains(t, doc.Caption, "*Title:* Facebook Video")
	assert.Equal(t, domain.StatusDeliveredAsDocument, f.history.last().Status)
}

func TestFacebookCommand_DocumentFailureRepliesWithError(t *testing.T) {
	f := newFacebookFixture()
	f.serve(0, map[string]any{"url": "https://cdn.example/v.mp4"})
	f.messenger.fail[domain.PayloadVideo] = errors.New("media rejected")
	f.messenger.fail[domain.PayloadDocument] = errors.New("upload failed")

	err := f.cmd.Handle(context.Background(), newTestMessage(".fb "+testVideoURL))

	var deliveryErr *domain.DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, domain.DeliveryDocument, deliveryErr.Kind)

	texts := f.messenger.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "❌ Error: failed to deliver document: upload failed")
	assert.Contains(t, texts[0], "• Using the command: .fb2 [url] (alternative method)")
	assert.Equal(t, domain.StatusFailed, f.history.last().Status)
}

func TestFacebookCommand_ExhaustionSendsNoMedia(t *testing.T) {
	f := newFacebookFixture()
	for _, p := range f.providers {
		f.fetcher.errs[p.BuildRequest(testVideoURL)] = context.DeadlineExceeded
	}

	require.NoError(t, f.cmd.Handle(context.Background(), newTestMessage(".fb "+testVideoURL)))

	assert.Equal(t, []domain.PayloadKind{domain.PayloadReact, domain.PayloadText}, f.messenger.kinds())
	text := f.messenger.texts()[0]
	assert.Contains(t, text, "❌ Failed to download video.")
	assert.Contains(t, text, "• Video is private/restricted")
	assert.Contains(t, text, "Try using: .fb2 [alternative method]")
	assert.Equal(t, domain.StatusExhausted, f.history.last().Status)
}

func TestFacebookCommand_WithoutHistory(t *testing.T) {
	f := newFacebookFixture()
	f.cmd.history = nil

	assert.NoError(t, f.cmd.Handle(context.Background(), newTestMessage(".fb")))
}
