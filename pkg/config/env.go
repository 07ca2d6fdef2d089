package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env.local when APP_ENV is "local". Other environments rely
// on the process environment only.
func LoadEnv() {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
		os.Setenv("APP_ENV", appEnv)
	}

	if appEnv != "local" {
		log.Printf("Running in %s environment. Not loading .env.local.", appEnv)
		return
	}
	if err := godotenv.Load(".env.local"); err != nil {
		log.Printf("Warning: could not load .env.local: %v. Relying on system environment variables.", err)
		return
	}
	log.Println("Loaded .env.local for local development.")
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	log.Printf("Using fallback for env var %s: %s", key, fallback)
	return fallback
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid duration in %s (%q), using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func GetInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid integer in %s (%q), using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func GetFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Invalid number in %s (%q), using %g", key, raw, fallback)
		return fallback
	}
	return f
}

// GetList splits a comma separated variable, dropping empty entries.
func GetList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
