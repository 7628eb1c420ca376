package gateway

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rahul/planweave/internal/observability"
)

// PlatformDiscord prefixes Discord channel ids in stored tasks.
const PlatformDiscord = "discord"

const discordMessageLimit = 2000

type DiscordGateway struct {
	Session *discordgo.Session
	Handler *Handler

	logger *observability.Logger
	ctx    context.Context
}

func NewDiscordGateway(token string, handler *Handler, logger *observability.Logger) (*DiscordGateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.NewNop()
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	return &DiscordGateway{
		Session: session,
		Handler: handler,
		logger:  logger,
		ctx:     context.Background(),
	}, nil
}

// Start opens the websocket and blocks until ctx is canceled.
func (dg *DiscordGateway) Start(ctx context.Context) error {
	dg.ctx = ctx
	dg.Session.AddHandler(dg.onMessage)

	if err := dg.Session.Open(); err != nil {
		return err
	}
	if u := dg.Session.State.User; u != nil {
		dg.logger.Slog().InfoContext(ctx, "discord connected", "account", u.Username)
	}

	<-ctx.Done()
	return dg.Session.Close()
}

func (dg *DiscordGateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Content == "" {
		return
	}
	if s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	ctx := dg.ctx
	dg.logger.Slog().InfoContext(ctx, "discord message", "user", m.Author.Username, "channel_id", m.ChannelID)

	response := dg.Handler.Handle(ctx, PlatformDiscord+":"+m.ChannelID, m.Content)
	if err := dg.Send(ctx, m.ChannelID, response); err != nil {
		dg.logger.Slog().ErrorContext(ctx, "discord send failed", "channel_id", m.ChannelID, "error", err)
	}
}

// Send posts text to a channel, split to the message limit.
func (dg *DiscordGateway) Send(ctx context.Context, channelID string, text string) error {
	for _, part := range chunk(text, discordMessageLimit) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := dg.Session.ChannelMessageSend(channelID, part); err != nil {
			return err
		}
	}
	return nil
}

func (dg *DiscordGateway) Stop() error {
	return dg.Session.Close()
}
