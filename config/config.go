package config

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	DbDsn    string
	TgToken  string
	TgChatID int64
}

var (
	config *Config
	once   sync.Once
)

// GetConfig возвращает singleton экземпляр конфигурации
func GetConfig() *Config {
	once.Do(func() {
		config = Load(".env")
	})
	return config
}

// Load читает секреты из окружения. Файл .env не обязателен,
// уже заданные переменные окружения он не перекрывает.
func Load(envFiles ...string) *Config {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Printf("Error loading %s: %v", f, err)
		}
	}

	c := &Config{
		DbDsn:   os.Getenv("DB_DSN"),
		TgToken: os.Getenv("TG_TOKEN"),
	}
	if raw := os.Getenv("TG_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Printf("TG_CHAT_ID is not a number: %q", raw)
		} else {
			c.TgChatID = id
		}
	}
	return c
}

// TelegramEnabled есть всё для отправки уведомлений
func (c *Config) TelegramEnabled() bool {
	return c.TgToken != "" && c.TgChatID != 0
}
