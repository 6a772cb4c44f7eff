package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/distgeniusmadlabs/labassistant/db"
)

type Config struct {
	Addr      string
	BasicAuth string
	GoliveKey string
}

type API struct {
	config Config
	db     *db.Database
	poller *StreamPoller
}

func New(config Config, database *db.Database, poller *StreamPoller) *API {
	return &API{
		config: config,
		db:     database,
		poller: poller,
	}
}

// Router builds the HTTP routes. Reads are public; writes need the
// shared Basic auth secret or the go-live key.
func (api *API) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware)

	router.HandleFunc("/games", api.listGames).Methods(http.MethodGet)
	router.HandleFunc("/games", api.createGame).Methods(http.MethodPost)
	router.HandleFunc("/streams", api.listStreams).Methods(http.MethodGet)
	router.HandleFunc("/streams/next", api.nextStream).Methods(http.MethodGet)
	router.HandleFunc("/streams/{id:[0-9]+}", api.getStream).Methods(http.MethodGet)
	if api.poller != nil {
		router.HandleFunc("/golive", api.poller.goliveHandler(api.config.GoliveKey)).Methods(http.MethodPost)
	}

	return router
}

// InitAPIAndListen serves until ctx is done, then shuts the server down.
func (api *API) InitAPIAndListen(ctx context.Context) error {
	if api.poller != nil {
		api.poller.RestartStreamStatusPolls()
	}

	server := &http.Server{
		Addr:              api.config.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (api *API) AuthenticateRequest(res http.ResponseWriter, req *http.Request) bool {
	if api.config.BasicAuth == "" {
		writeJSON(res, http.StatusForbidden, errorResponse{"Write access is disabled"})
		return false
	}

	authHeader := req.Header.Get("Authorization")
	split := strings.Split(authHeader, " ")
	if split[0] != "Basic" || len(split) != 2 {
		writeJSON(res, http.StatusBadRequest, errorResponse{"Invalid Authorization Header"})
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(split[1])
	if err != nil || api.config.BasicAuth != string(decoded) {
		writeJSON(res, http.StatusUnauthorized, errorResponse{"Authentication Failed"})
		return false
	}

	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s %v", w.Header().Get("X-Request-Id"), r.Method, r.URL.Path, time.Since(start))
	})
}
