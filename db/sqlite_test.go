package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var drivers = []string{DriverCGO, DriverPureGo}

func newTestDatabase(t *testing.T, driver string) *Database {
	t.Helper()
	d, err := InitDatabase(Config{
		Driver: driver,
		Path:   filepath.Join(t.TempDir(), "labassistant.db"),
	})
	require.NoError(t, err)
	return d
}

func tableNames(t *testing.T, d *Database) []string {
	t.Helper()
	conn, err := d.open()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	rows, err := conn.Query(`SELECT name FROM sqlite_master WHERE type='table' ORDER BY name`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	return names
}

func TestInitDatabaseIsIdempotent(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			d := newTestDatabase(t, driver)
			_, _, err := d.AddGame("Chess")
			require.NoError(t, err)

			again, err := InitDatabase(Config{Driver: driver, Path: d.Path()})
			require.NoError(t, err)

			assert.Equal(t, []string{"Games", "Info", "Streams"}, tableNames(t, again))
			game, err := again.FindGameByName("Chess")
			require.NoError(t, err)
			require.NotNil(t, game)
			assert.Equal(t, "Chess", game.Name)
		})
	}
}

func TestInitDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := InitDatabase(Config{Driver: "postgres", Path: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}

func TestAddGame(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			d := newTestDatabase(t, driver)

			result, first, err := d.AddGame("Chess")
			require.NoError(t, err)
			assert.Equal(t, Inserted, result)

			result, second, err := d.AddGame("Chess")
			require.NoError(t, err)
			assert.Equal(t, AlreadyExists, result)
			assert.Equal(t, first.ID, second.ID)

			result, _, err = d.AddGame("chess")
			require.NoError(t, err)
			assert.Equal(t, Inserted, result, "names are case-sensitive")

			games, err := d.FindAllGames()
			require.NoError(t, err)
			assert.Len(t, games, 2)
		})
	}
}

func TestFindGameByNameMissing(t *testing.T) {
	d := newTestDatabase(t, DriverCGO)

	game, err := d.FindGameByName("Go")
	require.NoError(t, err)
	assert.Nil(t, game)
}

func TestCurrentGame(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			d := newTestDatabase(t, driver)

			current, err := d.FindCurrentGame()
			require.NoError(t, err)
			assert.Nil(t, current)

			require.NoError(t, d.EnsureInfoKey(CURRENT_GAME_KEY))
			require.NoError(t, d.EnsureInfoKey(CURRENT_GAME_KEY))
			current, err = d.FindCurrentGame()
			require.NoError(t, err)
			assert.Nil(t, current, "an empty row is not a current game")

			_, chess, err := d.AddGame("Chess")
			require.NoError(t, err)
			require.NoError(t, d.SetCurrentGame(*chess))

			current, err = d.FindCurrentGame()
			require.NoError(t, err)
			require.NotNil(t, current)
			assert.Equal(t, CurrentGame{GameID: chess.ID, GameName: "Chess"}, *current)
		})
	}
}

func TestSetCurrentGameOnlyTouchesItsRow(t *testing.T) {
	d := newTestDatabase(t, DriverCGO)
	require.NoError(t, d.SetInfoString("Other", "untouched"))

	_, chess, err := d.AddGame("Chess")
	require.NoError(t, err)
	require.NoError(t, d.SetCurrentGame(*chess))

	value, found, err := d.FindInfoString("Other")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "untouched", value)

	conn, err := d.open()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	var count int
	require.NoError(t, conn.QueryRow(`SELECT count(*) FROM Info WHERE infokey=?`, CURRENT_GAME_KEY).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestNextStreamIsLatestDated(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			d := newTestDatabase(t, driver)
			_, chess, err := d.AddGame("Chess")
			require.NoError(t, err)

			next, err := d.FindNextStream()
			require.NoError(t, err)
			assert.Nil(t, next)

			january := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
			june := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
			_, err = d.InsertStream(*chess, "January", &january)
			require.NoError(t, err)
			_, err = d.InsertStream(*chess, "June", &june)
			require.NoError(t, err)
			_, err = d.InsertStream(*chess, "Someday", nil)
			require.NoError(t, err)

			next, err = d.FindNextStream()
			require.NoError(t, err)
			require.NotNil(t, next)
			assert.Equal(t, "June", next.Title)
			assert.Equal(t, "Chess", next.GameName)
			require.NotNil(t, next.StreamDate)
			assert.True(t, june.Equal(*next.StreamDate))
		})
	}
}

func TestFindScheduledStreamsOrder(t *testing.T) {
	d := newTestDatabase(t, DriverCGO)
	_, chess, err := d.AddGame("Chess")
	require.NoError(t, err)

	june := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	january := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	_, err = d.InsertStream(*chess, "Someday", nil)
	require.NoError(t, err)
	_, err = d.InsertStream(*chess, "June", &june)
	require.NoError(t, err)
	_, err = d.InsertStream(*chess, "January", &january)
	require.NoError(t, err)

	streams, err := d.FindScheduledStreams()
	require.NoError(t, err)
	require.Len(t, streams, 3)
	assert.Equal(t, "January", streams[0].Title)
	assert.Equal(t, "June", streams[1].Title)
	assert.Equal(t, "Someday", streams[2].Title)
	assert.Nil(t, streams[2].StreamDate)
}

func TestStreamLifecycle(t *testing.T) {
	d := newTestDatabase(t, DriverCGO)
	_, chess, err := d.AddGame("Chess")
	require.NoError(t, err)
	first, err := d.InsertStream(*chess, "First", nil)
	require.NoError(t, err)
	second, err := d.InsertStream(*chess, "Second", nil)
	require.NoError(t, err)

	_, err = d.StopStream(first.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	live, err := d.StartStream(first.ID)
	require.NoError(t, err)
	assert.Equal(t, Live, live.State)

	_, err = d.StartStream(second.ID)
	assert.ErrorIs(t, err, ErrStreamAlreadyLive)

	found, err := d.FindLiveStream()
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)

	done, err := d.StopStream(first.ID)
	require.NoError(t, err)
	assert.Equal(t, Completed, done.State)

	_, err = d.StartStream(first.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = d.StartStream(999)
	assert.ErrorIs(t, err, ErrStreamNotFound)

	scheduled, err := d.FindScheduledStreams()
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, second.ID, scheduled[0].ID)
}

func TestStreamStateTransitions(t *testing.T) {
	assert.True(t, Scheduled.CanTransitionTo(Live))
	assert.True(t, Live.CanTransitionTo(Completed))
	assert.False(t, Scheduled.CanTransitionTo(Completed))
	assert.False(t, Live.CanTransitionTo(Scheduled))
	assert.False(t, Completed.CanTransitionTo(Live))
}

func TestParseStreamDateLegacyText(t *testing.T) {
	parsed, err := parseStreamDate("2024-12-25 20:00:00")
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.True(t, time.Date(2024, 12, 25, 20, 0, 0, 0, time.UTC).Equal(*parsed))

	parsed, err = parseStreamDate(nil)
	require.NoError(t, err)
	assert.Nil(t, parsed)

	_, err = parseStreamDate("soon")
	assert.Error(t, err)
}

func TestStreamsReadFromLegacyRows(t *testing.T) {
	d := newTestDatabase(t, DriverCGO)
	_, chess, err := d.AddGame("Chess")
	require.NoError(t, err)

	conn, err := sql.Open(d.driver, d.dsn())
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO Streams (gameid, title, streamdate, state) VALUES (?, ?, ?, 'SCH')`,
		chess.ID, "Legacy", "2023-03-04 18:30:00")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	next, err := d.FindNextStream()
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "Legacy", next.Title)
	assert.Equal(t, 2023, next.StreamDate.Year())
}

func TestDSNWaitsOnLockedDatabase(t *testing.T) {
	cgo := &Database{driver: DriverCGO, path: "bot.db"}
	assert.Equal(t, "bot.db?_txlock=immediate&_busy_timeout=5000", cgo.dsn())

	pure := &Database{driver: DriverPureGo, path: "bot.db?mode=rwc"}
	assert.Equal(t, "bot.db?mode=rwc&_txlock=immediate&_pragma=busy_timeout(5000)&_time_format=sqlite", pure.dsn())
}

func TestConcurrentAddGame(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			d := newTestDatabase(t, driver)

			const workers, rounds = 4, 25
			var wg sync.WaitGroup
			var mu sync.Mutex
			var errs []error
			inserted := map[string]int{}
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < rounds; i++ {
						name := fmt.Sprintf("Game%d", i)
						result, _, err := d.AddGame(name)
						mu.Lock()
						if err != nil {
							errs = append(errs, err)
						} else if result == Inserted {
							inserted[name]++
						}
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			assert.Empty(t, errs)
			games, err := d.FindAllGames()
			require.NoError(t, err)
			assert.Len(t, games, rounds)
			for name, count := range inserted {
				assert.Equal(t, 1, count, name)
			}
		})
	}
}
