package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/taru/internal/commands"
)

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info().Str("user", event.User.Username).Int("guilds", len(event.Guilds)).Msg("Connected to Discord")

	for _, guild := range event.Guilds {
		if err := b.registerGuildCommands(guild.ID); err != nil {
			b.logger.Error().Err(err).Str("guild_id", guild.ID).Msg("Failed to register commands")
		}
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	b.logger.Info().Str("guild", event.Name).Str("guild_id", event.ID).Msg("Guild available, ensuring commands")
	if err := b.registerGuildCommands(event.ID); err != nil {
		b.logger.Error().Err(err).Str("guild_id", event.ID).Msg("Failed to register commands")
	}
}

func (b *Bot) registerGuildCommands(guildID string) error {
	// Replaces whatever the guild had registered before.
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, guildID, commands.GetCommands())
	if err != nil {
		return err
	}

	b.logger.Debug().Str("guild_id", guildID).Msg("Registered application commands")
	return nil
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	switch data.Name {
	case "barrel":
		b.barrel.Handle(s, i)
	default:
		b.logger.Warn().Str("command", data.Name).Msg("Unknown application command")
	}
}
