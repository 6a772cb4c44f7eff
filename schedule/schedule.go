// Package schedule turns chat-sized requests into database operations and
// answers each with a single human readable line. Missing games, a missing
// current game and an empty schedule are answered in the returned text;
// only malformed input and storage failures come back as errors.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/distgeniusmadlabs/labassistant/db"
)

const (
	// WHEN_LAYOUT is the accepted stream date, after slashes become dashes.
	WHEN_LAYOUT = "1-2-06 15:04"

	DISPLAY_LAYOUT = "2006-01-02 15:04:05"

	DEFAULT_TITLE = "No working stream title"
)

var ErrInvalidDate = errors.New("invalid stream date, expected MM-DD-YY HH:MM")

// ParseWhen parses a stream date such as "12-25-24 20:00" or "12/25/24 20:00".
// An empty string means the date is not known yet and returns nil.
func ParseWhen(when string) (*time.Time, error) {
	if when == "" {
		return nil, nil
	}
	parsed, err := time.Parse(WHEN_LAYOUT, strings.ReplaceAll(when, "/", "-"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, when)
	}
	return &parsed, nil
}

// AddGame starts tracking a game. Adding a tracked game again is not an error.
func AddGame(d *db.Database, name string) (string, error) {
	result, _, err := d.AddGame(name)
	if err != nil {
		return "", err
	}
	if result == db.AlreadyExists {
		return fmt.Sprintf("Already tracking %s.  Did you mean to !addstream instead?", name), nil
	}
	return fmt.Sprintf("Now tracking %s for streaming", name), nil
}

// SetCurrent marks a tracked game as the default for new streams.
func SetCurrent(d *db.Database, name string) (string, error) {
	if err := d.EnsureInfoKey(db.CURRENT_GAME_KEY); err != nil {
		return "", err
	}

	game, err := d.FindGameByName(name)
	if err != nil {
		return "", err
	}
	if game == nil {
		return fmt.Sprintf("Game %s is not tracked.", name), nil
	}

	if err := d.SetCurrentGame(*game); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s is now the current game!", name), nil
}

// AddStream schedules a stream. An empty game falls back to the current
// game, an empty title to DEFAULT_TITLE and an empty when to no date.
func AddStream(d *db.Database, game string, title string, when string) (string, error) {
	var target *db.Game
	if game == "" {
		current, err := d.FindCurrentGame()
		if err != nil {
			return "", err
		}
		if current == nil {
			return "No current game is set.  Please add it first.", nil
		}
		target = &db.Game{ID: current.GameID, Name: current.GameName}
	} else {
		found, err := d.FindGameByName(game)
		if err != nil {
			return "", err
		}
		if found == nil {
			return fmt.Sprintf("No entry for %s.  Please add it first.", game), nil
		}
		target = found
	}

	streamDate, err := ParseWhen(when)
	if err != nil {
		return "", err
	}
	if title == "" {
		title = DEFAULT_TITLE
	}

	if _, err := d.InsertStream(*target, title, streamDate); err != nil {
		return "", err
	}

	if streamDate == nil {
		return fmt.Sprintf("Added %s stream for %s on unspecified date.", title, target.Name), nil
	}
	return fmt.Sprintf("Added %s stream for %s on %s.", title, target.Name, when), nil
}

// NextStream describes the latest-dated scheduled stream.
func NextStream(d *db.Database) (string, error) {
	stream, err := d.FindNextStream()
	if err != nil {
		return "", err
	}
	return DescribeNextStream(stream), nil
}

// DescribeNextStream formats a FindNextStream result; nil means nothing is scheduled.
func DescribeNextStream(stream *db.Stream) string {
	if stream == nil {
		return "No current streams are scheduled."
	}
	return fmt.Sprintf("%s - %s will be streaming on %s", stream.GameName, stream.Title, formatDate(stream.StreamDate))
}

// ListStreams lists every scheduled stream with its id, soonest first.
func ListStreams(d *db.Database) (string, error) {
	streams, err := d.FindScheduledStreams()
	if err != nil {
		return "", err
	}
	if len(streams) == 0 {
		return "No current streams are scheduled.", nil
	}

	var buff strings.Builder
	buff.WriteString("Scheduled streams:")
	for _, stream := range streams {
		fmt.Fprintf(&buff, "\n#%d %s - %s on %s", stream.ID, stream.GameName, stream.Title, formatDate(stream.StreamDate))
	}
	return buff.String(), nil
}

// StartStream takes a scheduled stream live.
func StartStream(d *db.Database, streamId int) (string, error) {
	stream, err := d.StartStream(streamId)
	if msg, ok := transitionMessage(streamId, err); ok {
		return msg, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s - %s is now live!", stream.GameName, stream.Title), nil
}

// StopStream ends a live stream.
func StopStream(d *db.Database, streamId int) (string, error) {
	stream, err := d.StopStream(streamId)
	if msg, ok := transitionMessage(streamId, err); ok {
		return msg, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s - %s has ended. Thanks for watching!", stream.GameName, stream.Title), nil
}

func transitionMessage(streamId int, err error) (string, bool) {
	switch {
	case errors.Is(err, db.ErrStreamNotFound):
		return fmt.Sprintf("There is no stream #%d.", streamId), true
	case errors.Is(err, db.ErrStreamAlreadyLive):
		return "Another stream is already live. Stop it first.", true
	case errors.Is(err, db.ErrInvalidTransition):
		return fmt.Sprintf("Stream #%d cannot do that from its current state.", streamId), true
	}
	return "", false
}

func formatDate(date *time.Time) string {
	if date == nil {
		return "unspecified date"
	}
	return date.Format(DISPLAY_LAYOUT)
}
