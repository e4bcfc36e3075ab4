package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL   string
	Location      *time.Location
	HTTPAddr      string
	LogLevel      string
	Env           string // dev|prod
	SentryDSN     string
	LessonMinutes int // длительность урока для учёта пропусков

	// Необязательные телеграм-уведомления об отменах.
	BotToken     string
	NotifyChatID int64
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Berlin")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	lessonMinutes, err := parseIntEnv("LESSON_MINUTES", 45)
	if err != nil {
		return nil, err
	}
	notifyChatID, err := parseInt64Env("NOTIFY_CHAT_ID", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:   mustEnv("DATABASE_URL"),
		Location:      loc,
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		Env:           getenv("ENV", "dev"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		LessonMinutes: lessonMinutes,
		BotToken:      os.Getenv("BOT_TOKEN"),
		NotifyChatID:  notifyChatID,
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseIntEnv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func parseInt64Env(k string, def int64) (int64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}
