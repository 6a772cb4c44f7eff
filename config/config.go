package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	dotenv "github.com/joho/godotenv"
)

type Config struct {
	Token  string `env:"LABASSISTANT_TOKEN"`
	Prefix string `env:"LABASSISTANT_PREFIX" envDefault:"!"`

	DBPath   string `env:"LABASSISTANT_DB_PATH"   envDefault:"MadLabAssistant.db"`
	DBDriver string `env:"LABASSISTANT_DB_DRIVER" envDefault:"sqlite3"`

	// Role names are matched exactly against the caller's Discord roles.
	AdminRoles []string `env:"LABASSISTANT_ADMIN_ROLES" envDefault:"Admin"              envSeparator:","`
	ModRoles   []string `env:"LABASSISTANT_MOD_ROLES"   envDefault:"LabAssistant,Admin" envSeparator:","`

	APIAddr      string `env:"LABASSISTANT_API_ADDR" envDefault:":8080"`
	APIBasicAuth string `env:"LABASSISTANT_API_BASICAUTH"`
	GoliveKey    string `env:"LABASSISTANT_GOLIVE_KEY"`

	TwitchChannel      string        `env:"LABASSISTANT_TWITCH_CHANNEL"`
	TwitchClientID     string        `env:"LABASSISTANT_TWITCH_CLIENTID"`
	TwitchClientSecret string        `env:"LABASSISTANT_TWITCH_CLIENTSECRET"`
	TwitchAuthToken    string        `env:"LABASSISTANT_TWITCH_AUTHTOKEN"`
	TwitchRefreshToken string        `env:"LABASSISTANT_TWITCH_REFRESHTOKEN"`
	KeyPhrase          string        `env:"LABASSISTANT_KEYPHRASE"`
	PollInterval       time.Duration `env:"LABASSISTANT_POLL_INTERVAL" envDefault:"5m"`
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := dotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// TwitchEnabled reports whether enough is configured to poll Twitch.
func (c Config) TwitchEnabled() bool {
	return c.TwitchChannel != "" && c.TwitchClientID != "" && c.TwitchClientSecret != ""
}
