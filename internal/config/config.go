package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	NEO4J_URI      string
	NEO4J_USER     string
	NEO4J_PASSWORD string
	NEO4J_DATABASE string
	JWT_SECRET     string
	TOKEN_MINUTES  int
	KAFKA_ADDRESS  string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	LOG_LEVEL      string
	PORT           string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		NEO4J_URI:      os.Getenv("NEO4J_URI"),
		NEO4J_USER:     os.Getenv("NEO4J_USER"),
		NEO4J_PASSWORD: os.Getenv("NEO4J_PASSWORD"),
		NEO4J_DATABASE: getDefault("NEO4J_DATABASE", "neo4j"),
		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		TOKEN_MINUTES:  getIntDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 1440),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		LOG_LEVEL:      getDefault("LOG_LEVEL", "info"),
		PORT:           getDefault("PORT", "8080"),
	}

	return config, nil
}

func getDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
