package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL      string
	SslCertPath      string
	JWTSecret        string
	AwsAccessKey     string
	AwsSecretKey     string
	AwsRegion        string
	BucketName       string
	AIProvider       string
	OpenAIAPIKey     string
	GeminiAPIKey     string
	GenModel         string
	EmbedModel       string
	EmbedDim         int
	TranscribeAPIKey string
	TranscribeURL    string
	SearchAPIKey     string
	SearchURL        string
	Port             string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SslCertPath:      getEnv("SSL_CERT_PATH", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		AwsAccessKey:     getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:     getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:        getEnv("AWS_REGION", "us-east-2"),
		BucketName:       getEnv("BUCKET_NAME", "linkstash-snapshots"),
		AIProvider:       getEnv("AI_PROVIDER", "openai"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GenModel:         getEnv("GEN_MODEL", "gpt-4o-mini"),
		EmbedModel:       getEnv("EMBED_MODEL", "text-embedding-3-small"),
		EmbedDim:         getEnvInt("EMBED_DIM", 1536),
		TranscribeAPIKey: getEnv("TRANSCRIBE_API_KEY", ""),
		TranscribeURL:    getEnv("TRANSCRIBE_BASE_URL", "https://api.assemblyai.com/v2"),
		SearchAPIKey:     getEnv("SEARCH_API_KEY", ""),
		SearchURL:        getEnv("SEARCH_BASE_URL", "https://api.search.brave.com/res/v1/web/search"),
		Port:             getEnv("PORT", "8080"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
