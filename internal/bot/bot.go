package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/susu3304/taru/internal/commands"
)

type Bot struct {
	session *discordgo.Session
	barrel  *commands.BarrelHandler
	logger  zerolog.Logger
}

func New(token string, barrel *commands.BarrelHandler, logger zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	bot := &Bot{
		session: session,
		barrel:  barrel,
		logger:  logger.With().Str("component", "bot").Logger(),
	}

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsGuilds

	return bot, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.logger.Info().Msg("Discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}
