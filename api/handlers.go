package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/distgeniusmadlabs/labassistant/db"
	"github.com/distgeniusmadlabs/labassistant/schedule"
)

type gameResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type streamResponse struct {
	ID         int        `json:"id"`
	Game       string     `json:"game"`
	Title      string     `json:"title"`
	StreamDate *time.Time `json:"streamDate,omitempty"`
	State      string     `json:"state"`
}

type nextStreamResponse struct {
	Message string          `json:"message"`
	Stream  *streamResponse `json:"stream,omitempty"`
}

func toStreamResponse(stream *db.Stream) *streamResponse {
	if stream == nil {
		return nil
	}
	return &streamResponse{
		ID:         stream.ID,
		Game:       stream.GameName,
		Title:      stream.Title,
		StreamDate: stream.StreamDate,
		State:      string(stream.State),
	}
}

func (api *API) listGames(res http.ResponseWriter, req *http.Request) {
	games, err := api.db.FindAllGames()
	if err != nil {
		writeJSON(res, http.StatusInternalServerError, errorResponse{"Unable to list games"})
		return
	}

	body := make([]gameResponse, 0, len(games))
	for _, game := range games {
		body = append(body, gameResponse{game.ID, game.Name})
	}
	writeJSON(res, http.StatusOK, body)
}

func (api *API) createGame(res http.ResponseWriter, req *http.Request) {
	if !api.AuthenticateRequest(res, req) {
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || strings.TrimSpace(body.Name) == "" {
		writeJSON(res, http.StatusBadRequest, errorResponse{"A game name is required"})
		return
	}

	result, game, err := api.db.AddGame(body.Name)
	if err != nil {
		log.Println("Error adding game from api: ", err)
		writeJSON(res, http.StatusInternalServerError, errorResponse{"Unable to add game"})
		return
	}

	status := http.StatusCreated
	if result == db.AlreadyExists {
		status = http.StatusOK
	}
	writeJSON(res, status, gameResponse{game.ID, game.Name})
}

func (api *API) listStreams(res http.ResponseWriter, req *http.Request) {
	streams, err := api.db.FindScheduledStreams()
	if err != nil {
		writeJSON(res, http.StatusInternalServerError, errorResponse{"Unable to list streams"})
		return
	}

	body := make([]*streamResponse, 0, len(streams))
	for i := range streams {
		body = append(body, toStreamResponse(&streams[i]))
	}
	writeJSON(res, http.StatusOK, body)
}

func (api *API) nextStream(res http.ResponseWriter, req *http.Request) {
	stream, err := api.db.FindNextStream()
	if err != nil {
		writeJSON(res, http.StatusInternalServerError, errorResponse{"Unable to find the next stream"})
		return
	}

	writeJSON(res, http.StatusOK, nextStreamResponse{
		Message: schedule.DescribeNextStream(stream),
		Stream:  toStreamResponse(stream),
	})
}

func (api *API) getStream(res http.ResponseWriter, req *http.Request) {
	streamId, err := strconv.Atoi(mux.Vars(req)["id"])
	if err != nil {
		writeJSON(res, http.StatusBadRequest, errorResponse{"Invalid stream id"})
		return
	}

	stream, err := api.db.FindStreamById(streamId)
	if err != nil {
		writeJSON(res, http.StatusInternalServerError, errorResponse{"Unable to find stream"})
		return
	}
	if stream == nil {
		writeJSON(res, http.StatusNotFound, errorResponse{"Stream not found"})
		return
	}
	writeJSON(res, http.StatusOK, toStreamResponse(stream))
}
