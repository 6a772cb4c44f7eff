package discord

import (
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distgeniusmadlabs/labassistant/db"
)

type sentMessage struct {
	ChannelID string
	Content   string
}

type fakeSender struct {
	sent []sentMessage
}

func (f *fakeSender) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, sentMessage{channelID, content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeSender) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1].Content
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeSender, *db.Database) {
	t.Helper()
	database, err := db.InitDatabase(db.Config{
		Driver: db.DriverCGO,
		Path:   filepath.Join(t.TempDir(), "discord.db"),
	})
	require.NoError(t, err)

	sender := &fakeSender{}
	commands := &ScheduleCommands{
		DataStore:  database,
		AdminRoles: []string{"Admin"},
		ModRoles:   []string{"LabAssistant", "Admin"},
	}
	return NewDispatcher("!", sender, commands), sender, database
}

var (
	admin  = MessageContext{ChannelID: "general", AuthorName: "boss", RoleNames: []string{"Admin"}}
	mod    = MessageContext{ChannelID: "general", AuthorName: "helper", RoleNames: []string{"LabAssistant"}}
	viewer = MessageContext{ChannelID: "general", AuthorName: "fan", RoleNames: []string{"Viewer"}}
)

func TestDispatchIgnoresNonCommands(t *testing.T) {
	dispatcher, sender, _ := newTestDispatcher(t)

	dispatcher.Dispatch(viewer, "hello there")
	dispatcher.Dispatch(viewer, "!")
	dispatcher.Dispatch(viewer, "!unknown thing")

	assert.Empty(t, sender.sent)
}

func TestScheduleFlow(t *testing.T) {
	dispatcher, sender, _ := newTestDispatcher(t)

	dispatcher.Dispatch(mod, "!addgame Super Mario Bros")
	assert.Equal(t, "Now tracking Super Mario Bros for streaming", sender.last(t))

	dispatcher.Dispatch(mod, `!setgame "Super Mario Bros"`)
	assert.Equal(t, "Super Mario Bros is now the current game!", sender.last(t))

	dispatcher.Dispatch(admin, `!addstream "" "Speedrun Night" "12/25/24 20:00"`)
	assert.Equal(t, "Added Speedrun Night stream for Super Mario Bros on 12/25/24 20:00.", sender.last(t))

	dispatcher.Dispatch(viewer, "!nextStream")
	assert.Equal(t, "Super Mario Bros - Speedrun Night will be streaming on 2024-12-25 20:00:00", sender.last(t))

	dispatcher.Dispatch(viewer, "!streams")
	assert.Equal(t, "Scheduled streams:\n#1 Super Mario Bros - Speedrun Night on 2024-12-25 20:00:00", sender.last(t))

	dispatcher.Dispatch(admin, "!startstream #1")
	assert.Equal(t, "Super Mario Bros - Speedrun Night is now live!", sender.last(t))

	dispatcher.Dispatch(admin, "!stopstream 1")
	assert.Equal(t, "Super Mario Bros - Speedrun Night has ended. Thanks for watching!", sender.last(t))

	for _, msg := range sender.sent {
		assert.Equal(t, "general", msg.ChannelID)
	}
}

func TestRoleChecks(t *testing.T) {
	dispatcher, sender, database := newTestDispatcher(t)

	dispatcher.Dispatch(viewer, "!addgame Chess")
	assert.Equal(t, "You are not part of LabAssistant, Admin and cannot add new games.", sender.last(t))

	dispatcher.Dispatch(viewer, "!setgame Chess")
	assert.Equal(t, "You are not part of LabAssistant, Admin and cannot set the current game.", sender.last(t))

	dispatcher.Dispatch(mod, "!addstream Chess")
	assert.Equal(t, "You are not part of Admin and cannot add new streams.", sender.last(t))

	dispatcher.Dispatch(mod, "!startstream 1")
	assert.Equal(t, "You are not part of Admin and cannot start streams.", sender.last(t))

	games, err := database.FindAllGames()
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestAddStreamReportsBadDate(t *testing.T) {
	dispatcher, sender, _ := newTestDispatcher(t)

	dispatcher.Dispatch(admin, "!addgame Chess")
	dispatcher.Dispatch(admin, `!addstream Chess "Late" "next friday"`)
	assert.Contains(t, sender.last(t), "invalid stream date")

	dispatcher.Dispatch(admin, `!addstream Chess "Late`)
	assert.Equal(t, errUnterminatedQuote.Error(), sender.last(t))

	dispatcher.Dispatch(admin, "!addstream")
	assert.Contains(t, sender.last(t), "Usage:")
}

func TestAddStreamUnknownGame(t *testing.T) {
	dispatcher, sender, _ := newTestDispatcher(t)

	dispatcher.Dispatch(admin, "!addstream Chess")
	assert.Equal(t, "No entry for Chess.  Please add it first.", sender.last(t))
}

func TestMadlabHelp(t *testing.T) {
	dispatcher, sender, _ := newTestDispatcher(t)

	dispatcher.Dispatch(viewer, "!madlabhelp")
	assert.Contains(t, sender.last(t), "LabAssistantBot supports the following commands:")

	dispatcher.Dispatch(viewer, "!madlabhelp !setgame")
	assert.Contains(t, sender.last(t), "Marks \"gamename\" as the current game.")

	dispatcher.Dispatch(viewer, "!madlabhelp dance")
	assert.Equal(t, "No help for dance.", sender.last(t))
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"Chess", []string{"Chess"}},
		{`Chess "Friday Night" "12-25-24 20:00"`, []string{"Chess", "Friday Night", "12-25-24 20:00"}},
		{`"" "Title"`, []string{"", "Title"}},
		{"  spaced   out  ", []string{"spaced", "out"}},
		{"“Curly Quotes” too", []string{"Curly Quotes", "too"}},
	}
	for _, tt := range tests {
		got, err := splitArgs(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := splitArgs(`"open`)
	assert.ErrorIs(t, err, errUnterminatedQuote)
}

func TestParseCommand(t *testing.T) {
	command, input := parseCommand("NextStream")
	assert.Equal(t, "nextstream", command)
	assert.Equal(t, "", input)

	command, input = parseCommand(`addstream  Chess "x"`)
	assert.Equal(t, "addstream", command)
	assert.Equal(t, `Chess "x"`, input)
}
