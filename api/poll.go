package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/distgeniusmadlabs/labassistant/db"
	"github.com/distgeniusmadlabs/labassistant/twitch"
)

type StreamPoller struct {
	ctx       context.Context
	db        *db.Database
	twitchAPI twitch.ITwitchAPI
	channel   string
	interval  time.Duration
}

// NewStreamPoller watches channel on Twitch while a stream is live. A nil
// twitchAPI disables polling; streams then have to be stopped by hand.
func NewStreamPoller(ctx context.Context, database *db.Database, twitchAPI twitch.ITwitchAPI, channel string, interval time.Duration) *StreamPoller {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StreamPoller{
		ctx:       ctx,
		db:        database,
		twitchAPI: twitchAPI,
		channel:   channel,
		interval:  interval,
	}
}

// goliveHandler starts the stream named by ?stream=, or the soonest
// scheduled one, and begins polling for its end.
func (sp *StreamPoller) goliveHandler(goliveKey string) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		params := req.URL.Query()
		if goliveKey == "" || params.Get("key") != goliveKey {
			log.Println("Go live not authorized")
			writeJSON(res, http.StatusUnauthorized, errorResponse{"Go live not authorized"})
			return
		}

		streamId, err := sp.goliveTarget(params.Get("stream"))
		if err != nil {
			writeJSON(res, http.StatusBadRequest, errorResponse{"Invalid stream id"})
			return
		}
		if streamId == 0 {
			writeJSON(res, http.StatusNotFound, errorResponse{"No streams are scheduled"})
			return
		}

		stream, err := sp.db.StartStream(streamId)
		switch {
		case errors.Is(err, db.ErrStreamNotFound):
			writeJSON(res, http.StatusNotFound, errorResponse{"Stream not found"})
			return
		case errors.Is(err, db.ErrStreamAlreadyLive), errors.Is(err, db.ErrInvalidTransition):
			log.Println("Go live rejected: ", err)
			writeJSON(res, http.StatusConflict, errorResponse{"Stream cannot go live"})
			return
		case err != nil:
			writeJSON(res, http.StatusInternalServerError, errorResponse{"Go live request failed"})
			return
		}

		log.Printf("%s - %s is now live!", stream.GameName, stream.Title)
		go sp.PollStreamStatus(stream)
		writeJSON(res, http.StatusAccepted, toStreamResponse(stream))
	}
}

// goliveTarget returns 0 when nothing is scheduled. Without an explicit
// id the soonest scheduled stream goes live.
func (sp *StreamPoller) goliveTarget(requested string) (int, error) {
	if requested != "" {
		return strconv.Atoi(requested)
	}

	scheduled, err := sp.db.FindScheduledStreams()
	if err != nil || len(scheduled) == 0 {
		return 0, err
	}
	return scheduled[0].ID, nil
}

// PollStreamStatus
// Blocks until the Twitch channel goes offline, the stream is stopped
// elsewhere, or the poller's context ends.
func (sp *StreamPoller) PollStreamStatus(stream *db.Stream) {
	if sp.twitchAPI == nil {
		return
	}

	tick := time.NewTicker(sp.interval)
	defer tick.Stop()
	for {
		select {
		case <-sp.ctx.Done():
			return
		case <-tick.C:
			current, err := sp.db.FindStreamById(stream.ID)
			if err != nil {
				log.Println("Error checking stream state: ", stream.ID, err)
				continue
			}
			if current == nil || current.State != db.Live {
				return
			}

			streamInfo, err := sp.twitchAPI.GetStream(sp.channel)
			if err != nil {
				log.Println("Error fetching stream info: ", sp.channel, err)
				continue
			}

			if streamInfo == nil {
				if _, err := sp.db.StopStream(stream.ID); err != nil && !errors.Is(err, db.ErrInvalidTransition) {
					log.Println("Error stopping stream: ", stream.ID, err)
					continue
				}
				log.Printf("%s - %s has ended", stream.GameName, stream.Title)
				return
			}
		}
	}
}

// RestartStreamStatusPolls resumes polling for a stream that was live
// when the bot last shut down.
func (sp *StreamPoller) RestartStreamStatusPolls() {
	live, err := sp.db.FindLiveStream()
	if err != nil {
		log.Println("Error finding live stream: ", err)
		return
	}
	if live != nil {
		go sp.PollStreamStatus(live)
	}
}
