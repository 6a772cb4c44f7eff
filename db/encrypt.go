package db

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// Info keys holding the Twitch token pair, encrypted with the configured keyphrase.
const (
	TWITCH_AUTH_TOKEN_KEY    = "TwitchAuthToken"
	TWITCH_REFRESH_TOKEN_KEY = "TwitchRefreshToken"
)

type EncryptedToken = []byte

func newGCM(keyPhrase string) (cipher.AEAD, error) {
	key := sha256.Sum256([]byte(keyPhrase))
	aesCipher, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(aesCipher)
}

func EncryptToken(token string, keyPhrase string) (EncryptedToken, error) {
	gcmInstance, err := newGCM(keyPhrase)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcmInstance.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcmInstance.Seal(nonce, nonce, []byte(token), nil), nil
}

func DecryptToken(encryptedToken EncryptedToken, keyPhrase string) (string, error) {
	gcmInstance, err := newGCM(keyPhrase)
	if err != nil {
		return "", err
	}

	nonceSize := gcmInstance.NonceSize()
	if len(encryptedToken) < nonceSize {
		return "", errors.New("encrypted token too short")
	}
	nonce, encrypted := encryptedToken[:nonceSize], encryptedToken[nonceSize:]
	token, err := gcmInstance.Open(nil, nonce, encrypted, nil)
	if err != nil {
		return "", err
	}

	return string(token), nil
}

// SaveTwitchTokens encrypts both tokens and stores them in Info.
func (d *Database) SaveTwitchTokens(authToken string, refreshToken string, keyPhrase string) error {
	for key, token := range map[string]string{
		TWITCH_AUTH_TOKEN_KEY:    authToken,
		TWITCH_REFRESH_TOKEN_KEY: refreshToken,
	} {
		encrypted, err := EncryptToken(token, keyPhrase)
		if err != nil {
			return fmt.Errorf("encrypt %s: %w", key, err)
		}
		if err := d.SetInfoString(key, base64.StdEncoding.EncodeToString(encrypted)); err != nil {
			return err
		}
	}
	return nil
}

// FindTwitchTokens returns the stored token pair. ok is false when either
// token has never been saved.
func (d *Database) FindTwitchTokens(keyPhrase string) (authToken string, refreshToken string, ok bool, err error) {
	tokens := make([]string, 2)
	for i, key := range []string{TWITCH_AUTH_TOKEN_KEY, TWITCH_REFRESH_TOKEN_KEY} {
		stored, found, err := d.FindInfoString(key)
		if err != nil {
			return "", "", false, err
		}
		if !found {
			return "", "", false, nil
		}
		raw, err := base64.StdEncoding.DecodeString(stored)
		if err != nil {
			return "", "", false, fmt.Errorf("decode %s: %w", key, err)
		}
		tokens[i], err = DecryptToken(raw, keyPhrase)
		if err != nil {
			return "", "", false, fmt.Errorf("decrypt %s: %w", key, err)
		}
	}
	return tokens[0], tokens[1], true, nil
}
