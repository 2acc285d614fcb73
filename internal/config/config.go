package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type CacheConfig struct {
	// Path is the root of the content-addressed document cache: one
	// directory per digest holding the raw bytes and, once built, the
	// vector index artifact pair.
	Path string
}

type RagConfig struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	// BaseURL is the shared OpenAI-compatible endpoint both the embedding
	// and the chat provider talk to.
	BaseURL       string
	EmbedderModel string
	ChatModel     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "12538"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Cache: CacheConfig{
			Path: getEnv("CACHE_PATH", "./cache_folder"),
		},
		Rag: RagConfig{
			ChunkSize:       getEnvAsInt("RAG_CHUNK_SIZE", 1000),
			ChunkOverlap:    getEnvAsInt("RAG_CHUNK_OVERLAP", 100),
			TopK:            getEnvAsInt("RAG_TOP_K", 4),
			BaseURL:       getEnv("NV_API_BASE_URL", "https://integrate.api.nvidia.com/v1"),
			EmbedderModel: getEnv("EMBEDDER_MODEL", "nvidia/nv-embed-v1"),
			ChatModel:     getEnv("CHAT_MODEL", "mistralai/mixtral-8x7b-instruct-v0.1"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
