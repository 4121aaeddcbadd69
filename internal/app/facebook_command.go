package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/xmd-bot/internal/domain"
	"github.com/yourusername/xmd-bot/internal/infrastructure"
	"go.uber.org/zap"
)

const videoMimetype = "video/mp4"

// FacebookCommand downloads a Facebook video and sends it to the chat
type FacebookCommand struct {
	resolver  *DownloadResolver
	messenger domain.Messenger
	history   domain.DownloadRepository
	bot       *domain.BotConfig
	metrics   *infrastructure.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewFacebookCommand creates the facebook command. A nil history disables
// download records.
func NewFacebookCommand(
	resolver *DownloadResolver,
	messenger domain.Messenger,
	history domain.DownloadRepository,
	bot *domain.BotConfig,
	metrics *infrastructure.Metrics,
	logger *zap.Logger,
) *FacebookCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacebookCommand{
		resolver:  resolver,
		messenger: messenger,
		history:   history,
		bot:       bot,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Name returns the command name
func (c *FacebookCommand) Name() string {
	return "facebook"
}

// Aliases returns the words that trigger the command
func (c *FacebookCommand) Aliases() []string {
	return []string{"fb", "facebook"}
}

// Handle runs the command for msg. Every outcome is answered in the chat;
// the returned error is for logging only.
func (c *FacebookCommand) Handle(ctx context.Context, msg *domain.InboundMessage) error {
	rawURL := msg.Argument()
	record := domain.NewDownloadRecord(msg, rawURL)
	defer c.saveRecord(record)

	req := domain.DownloadRequest{RawURL: rawURL}
	if err := req.Validate(); err != nil {
		record.MarkRejected(err)
		c.metrics.ObserveCommand(c.Name(), string(domain.StatusRejected))
		return c.reply(ctx, msg, c.rejectionText(err))
	}

	if err := c.messenger.Send(ctx, msg.ChatID, domain.ReactPayload{Emoji: "🔄"}, msg); err != nil {
		c.logger.Warn("Failed to send reaction", zap.Error(err))
	}

	resolved := c.resolver.FollowRedirects(ctx, req.RawURL)
	media, err := c.resolver.Query(ctx, resolved.FinalURL)
	if err != nil {
		if errors.Is(err, domain.ErrProvidersExhausted) {
			record.MarkExhausted()
			c.metrics.ObserveCommand(c.Name(), string(domain.StatusExhausted))
			return c.reply(ctx, msg, c.exhaustedText())
		}
		return c.fail(ctx, msg, record, err)
	}
	record.MarkResolved(resolved.FinalURL, media)

	asDocument, err := c.deliver(ctx, msg, media)
	if err != nil {
		return c.fail(ctx, msg, record, err)
	}

	record.MarkDelivered(asDocument)
	c.metrics.ObserveCommand(c.Name(), string(record.Status))
	c.logger.Info("Facebook video delivered",
		zap.String("chat", msg.ChatID),
		zap.String("provider", media.Provider),
		zap.Bool("as_document", asDocument))
	return nil
}

// deliver sends media as a video, then as a document if the video is rejected
func (c *FacebookCommand) deliver(ctx context.Context, msg *domain.InboundMessage, media *domain.MediaResult) (bool, error) {
	caption := c.caption(media.Title)

	err := c.messenger.Send(ctx, msg.ChatID, domain.VideoPayload{
		URL:      media.URL,
		Mimetype: videoMimetype,
		Caption:  caption,
	}, msg)
	if err == nil {
		return false, nil
	}

	c.logger.Warn("Video delivery failed, sending as document", zap.Error(err))
	c.metrics.ObserveDeliveryFallback()

	err = c.messenger.Send(ctx, msg.ChatID, domain.DocumentPayload{
		URL:      media.URL,
		Mimetype: videoMimetype,
		FileName: fmt.Sprintf("facebook_video_%d.mp4", c.now().UnixMilli()),
		Caption:  caption,
	}, msg)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *FacebookCommand) fail(ctx context.Context, msg *domain.InboundMessage, record *domain.DownloadRecord, err error) error {
	record.MarkFailed(err)
	c.metrics.ObserveCommand(c.Name(), string(domain.StatusFailed))
	if replyErr := c.reply(ctx, msg, c.errorText(err)); replyErr != nil {
		return errors.Join(err, replyErr)
	}
	return err
}

func (c *FacebookCommand) reply(ctx context.Context, msg *domain.InboundMessage, text string) error {
	return c.messenger.Send(ctx, msg.ChatID, domain.TextPayload{Text: text}, msg)
}

func (c *FacebookCommand) saveRecord(record *domain.DownloadRecord) {
	if c.history == nil {
		return
	}
	if err := c.history.Create(record); err != nil {
		c.logger.Warn("Failed to save download record", zap.String("id", record.ID), zap.Error(err))
	}
}

func (c *FacebookCommand) rejectionText(err error) string {
	if errors.Is(err, domain.ErrMissingURL) {
		return fmt.Sprintf("Please provide a Facebook video URL.\nExample: %sfb https://www.facebook.com/...", c.bot.Prefix)
	}
	return "That doesn't look like a Facebook video link.\nSupported domains: facebook.com, fb.watch, fb.com"
}

func (c *FacebookCommand) exhaustedText() string {
	return "❌ Failed to download video.\n\n" +
		"Possible reasons:\n" +
		"• Video is private/restricted\n" +
		"• Link is invalid\n" +
		"• Video may be a reel/short\n" +
		"• APIs are temporarily down\n\n" +
		fmt.Sprintf("Try using: %sfb2 [alternative method]", c.bot.Prefix)
}

func (c *FacebookCommand) errorText(err error) string {
	return fmt.Sprintf("❌ Error: %s\n\n", err.Error()) +
		"Try:\n" +
		"• Using a direct Facebook video link\n" +
		"• Checking if video is public\n" +
		fmt.Sprintf("• Using the command: %sfb2 [url] (alternative method)", c.bot.Prefix)
}

func (c *FacebookCommand) caption(title string) string {
	if title == "" {
		return fmt.Sprintf("⬇️ *Downloaded by %s*", c.bot.Name)
	}
	return fmt.Sprintf("📱 *Facebook Video*\n\n📝 *Title:* %s\n\n⬇️ *Downloaded by %s*", title, c.bot.Name)
}
