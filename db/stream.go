package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

type StreamState string

const (
	Scheduled StreamState = "SCH"
	Live      StreamState = "LIVE"
	Completed StreamState = "DONE"
)

var (
	ErrStreamNotFound    = errors.New("stream not found")
	ErrInvalidTransition = errors.New("invalid stream state transition")
	ErrStreamAlreadyLive = errors.New("another stream is already live")
)

// CanTransitionTo reports whether a stream in state s may move to next.
// Streams only ever move forward: SCH -> LIVE -> DONE.
func (s StreamState) CanTransitionTo(next StreamState) bool {
	switch s {
	case Scheduled:
		return next == Live
	case Live:
		return next == Completed
	default:
		return false
	}
}

type Stream struct {
	ID         int
	GameID     int
	GameName   string
	Title      string
	StreamDate *time.Time
	State      StreamState
}

type rowScanner interface {
	Scan(dest ...any) error
}

// InsertStream
// Inserts a scheduled stream. A nil when leaves the date unset.
func (d *Database) InsertStream(game Game, title string, when *time.Time) (*Stream, error) {
	var stream *Stream
	err := d.withConn(func(conn *sql.DB) error {
		var streamDate sql.NullTime
		if when != nil {
			streamDate = sql.NullTime{Time: *when, Valid: true}
		}

		result, err := conn.Exec(INSERT_STREAM, game.ID, title, streamDate, string(Scheduled))
		if err != nil {
			log.Println("Error inserting stream: ", err)
			return fmt.Errorf("insert stream: %w", err)
		}

		newID, err := result.LastInsertId()
		if err != nil {
			log.Println("Error retrieving last insert stream ID")
			return fmt.Errorf("insert stream: %w", err)
		}

		stream = &Stream{
			ID:         int(newID),
			GameID:     game.ID,
			GameName:   game.Name,
			Title:      title,
			StreamDate: when,
			State:      Scheduled,
		}
		return nil
	})
	return stream, err
}

// FindNextStream
// Returns the scheduled stream with the latest date, or nil.
func (d *Database) FindNextStream() (*Stream, error) {
	var stream *Stream
	err := d.withConn(func(conn *sql.DB) error {
		var err error
		stream, err = findOneStream(conn, FIND_NEXT_STREAM)
		return err
	})
	return stream, err
}

// FindScheduledStreams
func (d *Database) FindScheduledStreams() ([]Stream, error) {
	var streams []Stream
	err := d.withConn(func(conn *sql.DB) error {
		rows, err := conn.Query(FIND_SCHEDULED_STREAMS)
		if err != nil {
			log.Println("Error finding scheduled streams: ", err)
			return fmt.Errorf("find scheduled streams: %w", err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var stream Stream
			if err := scanRowIntoStream(&stream, rows); err != nil {
				return err
			}
			streams = append(streams, stream)
		}
		return rows.Err()
	})
	return streams, err
}

func (d *Database) FindStreamById(streamId int) (*Stream, error) {
	var stream *Stream
	err := d.withConn(func(conn *sql.DB) error {
		var err error
		stream, err = findOneStream(conn, FIND_STREAM_BY_ID, streamId)
		return err
	})
	return stream, err
}

// FindLiveStream
func (d *Database) FindLiveStream() (*Stream, error) {
	var stream *Stream
	err := d.withConn(func(conn *sql.DB) error {
		var err error
		stream, err = findOneStream(conn, FIND_LIVE_STREAM)
		return err
	})
	return stream, err
}

// StartStream moves a scheduled stream to live.
func (d *Database) StartStream(streamId int) (*Stream, error) {
	return d.transitionStream(streamId, Live)
}

// StopStream moves a live stream to completed.
func (d *Database) StopStream(streamId int) (*Stream, error) {
	return d.transitionStream(streamId, Completed)
}

func (d *Database) transitionStream(streamId int, next StreamState) (*Stream, error) {
	var stream *Stream
	err := d.withTx(func(tx *sql.Tx) error {
		var err error
		stream, err = findOneStream(tx, FIND_STREAM_BY_ID, streamId)
		if err != nil {
			return err
		}
		if stream == nil {
			return fmt.Errorf("stream %d: %w", streamId, ErrStreamNotFound)
		}
		if !stream.State.CanTransitionTo(next) {
			return fmt.Errorf("stream %d %s -> %s: %w", streamId, stream.State, next, ErrInvalidTransition)
		}

		if next == Live {
			live, err := findOneStream(tx, FIND_LIVE_STREAM)
			if err != nil {
				return err
			}
			if live != nil {
				return fmt.Errorf("stream %d: %w", live.ID, ErrStreamAlreadyLive)
			}
		}

		if _, err := tx.Exec(UPDATE_STREAM_STATE, string(next), streamId); err != nil {
			log.Printf("Error updating state for streamId(%d): %v\n", streamId, err)
			return fmt.Errorf("update stream %d: %w", streamId, err)
		}
		stream.State = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func findOneStream(q querier, query string, args ...any) (*Stream, error) {
	var stream Stream
	err := scanRowIntoStream(&stream, q.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stream, nil
}

// Helper for scanning rows into a stream
func scanRowIntoStream(stream *Stream, row rowScanner) error {
	var streamDate any
	var state string
	err := row.Scan(
		&stream.ID,
		&stream.GameID,
		&stream.GameName,
		&stream.Title,
		&streamDate,
		&state,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("scan stream: %w", err)
	}
	stream.StreamDate, err = parseStreamDate(streamDate)
	if err != nil {
		return fmt.Errorf("stream %d: %w", stream.ID, err)
	}
	stream.State = StreamState(state)
	return nil
}

// Layouts a streamdate may be stored in when the driver hands the column
// over as text. Older rows carry no zone offset.
var streamDateFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseStreamDate(value any) (*time.Time, error) {
	var text string
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return nil, fmt.Errorf("unexpected streamdate type %T", value)
	}

	for _, layout := range streamDateFormats {
		if t, err := time.Parse(layout, text); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparseable streamdate %q", text)
}
