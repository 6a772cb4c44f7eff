package twitch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

const (
	TWITCH_HELIX_API = "https://api.twitch.tv/helix"
	TWITCH_OAUTH_API = "https://id.twitch.tv/oauth2"
	TOKEN            = "/token"
	STREAMS          = "/streams"
	VALIDATE         = "/validate"
)

type ITwitchAPI interface {
	GetStream(string) (*TwitchStreamInfo, error)
}

// TokenSaver is told about every refreshed token pair so it can be stored.
type TokenSaver func(authToken string, refreshToken string) error

type TwitchAPI struct {
	clientID     string
	clientSecret string
	helixURL     string
	oauthURL     string
	httpClient   *http.Client
	saveTokens   TokenSaver

	mu           sync.Mutex
	authToken    string
	refreshToken string
}

// NewTwitchAPI
func NewTwitchAPI(clientID string, clientSecret string, authToken string, refreshToken string, saveTokens TokenSaver) *TwitchAPI {
	return &TwitchAPI{
		clientID:     clientID,
		clientSecret: clientSecret,
		helixURL:     TWITCH_HELIX_API,
		oauthURL:     TWITCH_OAUTH_API,
		httpClient:   http.DefaultClient,
		saveTokens:   saveTokens,
		authToken:    authToken,
		refreshToken: refreshToken,
	}
}

// GetStream returns the live stream for user, or nil when offline.
func (a *TwitchAPI) GetStream(user string) (*TwitchStreamInfo, error) {
	authToken, err := a.getAuthToken()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodGet, a.helixURL+STREAMS, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", authToken))
	req.Header.Add("Client-Id", a.clientID)

	q := req.URL.Query()
	q.Add("user_login", user)
	req.URL.RawQuery = q.Encode()

	response, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = response.Body.Close() }()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get stream returned %s: %s", response.Status, respBody)
	}

	data := new(TwitchDataResponse)
	if err := json.Unmarshal(respBody, data); err != nil {
		return nil, err
	}

	streams := []*TwitchStreamInfo{}
	if err := json.Unmarshal(data.Data, &streams); err != nil {
		return nil, err
	}

	if len(streams) == 0 {
		return nil, nil
	}

	return streams[0], nil
}

// getAuthToken
func (a *TwitchAPI) getAuthToken() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.validateAuthToken() {
		if err := a.refreshAuthToken(); err != nil {
			return "", err
		}
	}
	return a.authToken, nil
}

// refreshAuthToken
func (a *TwitchAPI) refreshAuthToken() error {
	form := url.Values{}
	form.Add("grant_type", "refresh_token")
	form.Add("client_id", a.clientID)
	form.Add("client_secret", a.clientSecret)
	form.Add("refresh_token", a.refreshToken)

	req, err := http.NewRequest(http.MethodPost, a.oauthURL+TOKEN, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	response, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return errors.New("critical: failed to refresh twitch token")
	}

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	newTokens := new(TokenResponse)
	if err := json.Unmarshal(respBody, newTokens); err != nil {
		return err
	}
	if newTokens.AccessToken == "" {
		return errors.New("twitch token refresh returned no access token")
	}

	a.authToken = newTokens.AccessToken
	if newTokens.RefreshToken != "" {
		a.refreshToken = newTokens.RefreshToken
	}

	if a.saveTokens != nil {
		if err := a.saveTokens(a.authToken, a.refreshToken); err != nil {
			log.Println("Unable to persist refreshed twitch tokens: ", err)
		}
	}

	return nil
}

// validateAuthToken
func (a *TwitchAPI) validateAuthToken() bool {
	if a.authToken == "" {
		return false
	}

	req, err := http.NewRequest(http.MethodGet, a.oauthURL+VALIDATE, nil)
	if err != nil {
		return false
	}
	req.Header.Add("Authorization", fmt.Sprintf("OAuth %s", a.authToken))

	response, err := a.httpClient.Do(req)
	if err != nil {
		log.Println(err)
		return false
	}
	defer func() { _ = response.Body.Close() }()
	_, _ = io.Copy(io.Discard, response.Body)

	return response.StatusCode == http.StatusOK
}
