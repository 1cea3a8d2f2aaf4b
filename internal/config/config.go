package config

import (
	"log"
	"os"
	"strings"
)

type Config struct {
	Port           string
	StorageBackend string // direct | relay
	DBDSN          string
	RelayBaseURL   string
	RelayKey       string
	KafkaBrokers   []string
	AdminEmail     string
	AdminPassHash  string
	LogFile        string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	backend := os.Getenv("STORAGE_BACKEND")
	if backend == "" {
		backend = "direct"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "abcretail.db" // sqlite file in project root
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./abcretail.log"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	cfg := Config{
		Port:           port,
		StorageBackend: backend,
		DBDSN:          dsn,
		RelayBaseURL:   os.Getenv("RELAY_BASE_URL"),
		RelayKey:       os.Getenv("RELAY_KEY"),
		KafkaBrokers:   brokers,
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
		LogFile:        logFile,
	}
	log.Printf("[config] PORT=%s STORAGE_BACKEND=%s DB_DSN=%s KAFKA_BROKERS=%s LOG_FILE=%s",
		cfg.Port, cfg.StorageBackend, cfg.DBDSN, strings.Join(cfg.KafkaBrokers, ","), cfg.LogFile)
	return cfg
}
