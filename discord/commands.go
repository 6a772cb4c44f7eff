package discord

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// CommandHandler returns the text to post back, or "" to stay quiet.
type CommandHandler = func(msgCtx MessageContext, command string, args []string) string

type Command struct {
	CmdString string
	Cmd       CommandHandler
}

type CommandGroup interface {
	GetCommands() []Command
}

type MessageContext struct {
	ChannelID  string
	GuildID    string
	AuthorName string
	RoleNames  []string
}

// Sender is the part of *discordgo.Session used to answer commands.
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Dispatcher struct {
	prefix   string
	sender   Sender
	commands map[string]CommandHandler
}

func NewDispatcher(prefix string, sender Sender, groups ...CommandGroup) *Dispatcher {
	d := &Dispatcher{
		prefix:   prefix,
		sender:   sender,
		commands: map[string]CommandHandler{},
	}
	for _, group := range groups {
		for _, command := range group.GetCommands() {
			d.commands[strings.ToLower(command.CmdString)] = command.Cmd
		}
	}
	return d
}

// Dispatch runs the command in content, if any, and posts its reply.
func (d *Dispatcher) Dispatch(msgCtx MessageContext, content string) {
	if !d.isCommand(content) {
		return
	}
	command, input := parseCommand(strings.TrimPrefix(content, d.prefix))

	handler, ok := d.commands[command]
	if !ok {
		return
	}

	args, err := splitArgs(input)
	if err != nil {
		d.say(msgCtx.ChannelID, err.Error())
		return
	}

	if reply := handler(msgCtx, command, args); reply != "" {
		d.say(msgCtx.ChannelID, reply)
	}
}

func (d *Dispatcher) say(channelID string, message string) {
	if _, err := d.sender.ChannelMessageSend(channelID, message); err != nil {
		log.Println("Error sending message: ", err)
	}
}

// isCommand
func (d *Dispatcher) isCommand(message string) bool {
	return d.prefix != "" && len(message) > len(d.prefix) && strings.HasPrefix(message, d.prefix)
}

// parseCommand splits "addstream Chess ..." into the lowercased command
// name and the untouched remainder.
func parseCommand(message string) (string, string) {
	command, input, _ := strings.Cut(strings.TrimSpace(message), " ")
	return strings.ToLower(command), strings.TrimSpace(input)
}

func hasAnyRole(roleNames []string, allowed []string) bool {
	for _, name := range roleNames {
		for _, role := range allowed {
			if name == role {
				return true
			}
		}
	}
	return false
}
