package discord

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	session    *discordgo.Session
	dispatcher *Dispatcher
}

// NewBot prepares a session for token. Nothing connects until Open.
func NewBot(token string, prefix string, groups ...CommandGroup) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	bot := &Bot{
		session:    session,
		dispatcher: NewDispatcher(prefix, session, groups...),
	}
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onMessageCreate)
	return bot, nil
}

func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Logged in as %s (%s)", r.User.Username, r.User.ID)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	b.dispatcher.Dispatch(MessageContext{
		ChannelID:  m.ChannelID,
		GuildID:    m.GuildID,
		AuthorName: m.Author.Username,
		RoleNames:  memberRoleNames(s, m.GuildID, m.Member),
	}, m.Content)
}

// memberRoleNames resolves the member's role ids to names, preferring the
// state cache and fetching the guild's roles once on a miss.
func memberRoleNames(s *discordgo.Session, guildID string, member *discordgo.Member) []string {
	if member == nil || guildID == "" {
		return nil
	}

	var names []string
	var guildRoles []*discordgo.Role
	for _, roleID := range member.Roles {
		if role, err := s.State.Role(guildID, roleID); err == nil {
			names = append(names, role.Name)
			continue
		}
		if guildRoles == nil {
			fetched, err := s.GuildRoles(guildID)
			if err != nil {
				log.Println("Unable to fetch guild roles: ", err)
				return names
			}
			guildRoles = fetched
		}
		for _, role := range guildRoles {
			if role.ID == roleID {
				names = append(names, role.Name)
			}
		}
	}
	return names
}
