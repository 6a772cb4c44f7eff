package discord

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/distgeniusmadlabs/labassistant/db"
	"github.com/distgeniusmadlabs/labassistant/schedule"
)

type ScheduleCommands struct {
	DataStore  *db.Database
	AdminRoles []string
	ModRoles   []string
}

func (c *ScheduleCommands) GetCommands() []Command {
	commands := []Command{
		{"addgame", c.addgame},
		{"setgame", c.setgame},
		{"addstream", c.addstream},
		{"nextstream", c.nextstream},
		{"streams", c.streams},
		{"startstream", c.startstream},
		{"stopstream", c.stopstream},
		{"madlabhelp", c.madlabhelp},
	}
	return commands
}

func (c *ScheduleCommands) addgame(msgCtx MessageContext, command string, args []string) string {
	if !hasAnyRole(msgCtx.RoleNames, c.ModRoles) {
		return fmt.Sprintf("You are not part of %s and cannot add new games.", strings.Join(c.ModRoles, ", "))
	}
	if len(args) == 0 {
		return "Usage: **!addgame** gamename"
	}
	return reply(schedule.AddGame(c.DataStore, strings.Join(args, " ")))
}

func (c *ScheduleCommands) setgame(msgCtx MessageContext, command string, args []string) string {
	if !hasAnyRole(msgCtx.RoleNames, c.ModRoles) {
		return fmt.Sprintf("You are not part of %s and cannot set the current game.", strings.Join(c.ModRoles, ", "))
	}
	if len(args) != 1 {
		return `Usage: **!setgame** gamename (use "quotes" around names with spaces)`
	}
	return reply(schedule.SetCurrent(c.DataStore, args[0]))
}

// addstream takes game, title and date positionally. Pass "" as the game
// to use the current game.
func (c *ScheduleCommands) addstream(msgCtx MessageContext, command string, args []string) string {
	if !hasAnyRole(msgCtx.RoleNames, c.AdminRoles) {
		return fmt.Sprintf("You are not part of %s and cannot add new streams.", strings.Join(c.AdminRoles, ", "))
	}
	if len(args) == 0 || len(args) > 3 {
		return `Usage: **!addstream** gamename ["title"] ["MM-DD-YY HH:MM"]`
	}
	padded := make([]string, 3)
	copy(padded, args)
	return reply(schedule.AddStream(c.DataStore, padded[0], padded[1], padded[2]))
}

func (c *ScheduleCommands) nextstream(msgCtx MessageContext, command string, args []string) string {
	return reply(schedule.NextStream(c.DataStore))
}

func (c *ScheduleCommands) streams(msgCtx MessageContext, command string, args []string) string {
	return reply(schedule.ListStreams(c.DataStore))
}

func (c *ScheduleCommands) startstream(msgCtx MessageContext, command string, args []string) string {
	if !hasAnyRole(msgCtx.RoleNames, c.AdminRoles) {
		return fmt.Sprintf("You are not part of %s and cannot start streams.", strings.Join(c.AdminRoles, ", "))
	}
	streamId, ok := parseStreamId(args)
	if !ok {
		return "Usage: **!startstream** streamid (see **!streams**)"
	}
	return reply(schedule.StartStream(c.DataStore, streamId))
}

func (c *ScheduleCommands) stopstream(msgCtx MessageContext, command string, args []string) string {
	if !hasAnyRole(msgCtx.RoleNames, c.AdminRoles) {
		return fmt.Sprintf("You are not part of %s and cannot stop streams.", strings.Join(c.AdminRoles, ", "))
	}
	streamId, ok := parseStreamId(args)
	if !ok {
		return "Usage: **!stopstream** streamid"
	}
	return reply(schedule.StopStream(c.DataStore, streamId))
}

var helps = map[string]string{
	"basehelp": "LabAssistantBot supports the following commands:\n" +
		"**!addgame** gamename\n" +
		"**!setgame** gamename\n" +
		"**!addstream** gamename [title] [date]\n" +
		"**!nextstream**\n" +
		"**!streams**\n" +
		"**!startstream** streamid\n" +
		"**!stopstream** streamid\n" +
		"Items marked with [] are optional.\n" +
		"Type \"**!madlabhelp** commandname\" for details about a specific command.\n" +
		"Example: \"**!madlabhelp** addgame\" will provide help on **!addgame**\n",
	"addgame": "**!addgame** gamename\n" +
		"Requires a moderator role.\n" +
		"Adds gamename to the list of stream eligible games.\n",
	"setgame": "**!setgame** gamename\n" +
		"Requires a moderator role.\n" +
		"Marks \"gamename\" as the current game.\n",
	"addstream": "**!addstream** gamename [\"title\"] [\"MM-DD-YY HH:MM\"]\n" +
		"Requires an admin role.\n" +
		"Schedules a stream. Use \"\" as gamename for the current game.\n",
	"nextstream": "**!nextstream**\n" +
		"Shows the scheduled stream with the latest date.\n",
	"streams": "**!streams**\n" +
		"Lists every scheduled stream with its id.\n",
	"startstream": "**!startstream** streamid\n" +
		"Requires an admin role.\n" +
		"Marks a scheduled stream as live.\n",
	"stopstream": "**!stopstream** streamid\n" +
		"Requires an admin role.\n" +
		"Marks the live stream as finished.\n",
}

func (c *ScheduleCommands) madlabhelp(msgCtx MessageContext, command string, args []string) string {
	lookup := "basehelp"
	if len(args) > 0 {
		lookup = strings.ToLower(strings.TrimPrefix(args[0], "!"))
	}
	text, ok := helps[lookup]
	if !ok {
		return fmt.Sprintf("No help for %s.", args[0])
	}
	return text
}

func parseStreamId(args []string) (int, bool) {
	if len(args) != 1 {
		return 0, false
	}
	streamId, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil {
		return 0, false
	}
	return streamId, true
}

// reply turns a schedule result into chat text. Bad dates are the caller's
// to fix; anything else is logged and reported generically.
func reply(msg string, err error) string {
	if err == nil {
		return msg
	}
	if errors.Is(err, schedule.ErrInvalidDate) {
		return err.Error()
	}
	log.Println("Error running command: ", err)
	return "Something went wrong talking to the schedule database."
}
