package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var (
	channelsEmptyError = errors.New("ALLOWED_CHANNELS_IDS is Empty")
	gitlabTokenError   = errors.New("GITLAB_PERSONAL_TOKEN is Empty")
	secretAccessError  = errors.New("SECRET_ACCESS_KEY is Empty")
	signingSecretError = errors.New("SLACK_SIGNING_SECRET is Empty")
)

type AppConfig struct {
	Env  string
	Port string
}

type SlackConfig struct {
	SigningSecret     string
	AllowedChannelIDs []string
}

type GitLabConfig struct {
	BaseURL         string
	PersonalToken   string
	SecretAccessKey string
}

type Config struct {
	App    AppConfig
	Slack  SlackConfig
	GitLab GitLabConfig
}

func LoadConfig() (*Config, error) {
	// .env опционален, в проде переменные приходят из окружения
	_ = godotenv.Load()

	c := &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "dev"),
			Port: getEnv("APP_PORT", "8080"),
		},
		Slack: SlackConfig{
			SigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		},
		GitLab: GitLabConfig{
			BaseURL:         getEnv("GITLAB_BASE_URL", "https://gitlab.com/api/v4"),
			PersonalToken:   os.Getenv("GITLAB_PERSONAL_TOKEN"),
			SecretAccessKey: os.Getenv("SECRET_ACCESS_KEY"),
		},
	}

	// Сервис не стартует без всех четырёх секретов
	channels := os.Getenv("ALLOWED_CHANNELS_IDS")
	if channels == "" {
		return nil, channelsEmptyError
	}
	if c.GitLab.PersonalToken == "" {
		return nil, gitlabTokenError
	}
	if c.GitLab.SecretAccessKey == "" {
		return nil, secretAccessError
	}
	if c.Slack.SigningSecret == "" {
		return nil, signingSecretError
	}

	for _, id := range strings.Split(channels, ",") {
		if id = strings.TrimSpace(id); id != "" {
			c.Slack.AllowedChannelIDs = append(c.Slack.AllowedChannelIDs, id)
		}
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
