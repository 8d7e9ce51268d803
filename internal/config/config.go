package config

import (
	"os"
	"strconv"
	"strings"
)

// BackendConfig points at the retrieval/answer service.
type BackendConfig struct {
	BaseURL    string
	TimeoutSec int
}

// UploadConfig controls which files are sent and when they join the document set.
type UploadConfig struct {
	AcceptedExtensions []string
	CommitPolicy       string
}

// SessionConfig controls how long idle sessions are kept by the API.
type SessionConfig struct {
	TTLMin     int
	CleanupMin int
}

// ExportConfig holds PDF export settings.
type ExportConfig struct {
	FileName      string
	Title         string
	WrapWidth     int
	ArchivePrefix string
	Dir           string
}

// MinIOConfig holds object storage settings for archived exports.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LogConfig controls the zap logger.
type LogConfig struct {
	FilePath   string
	Production bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables.
type AppConfig struct {
	AppHost     string
	Port        string
	CORSOrigins []string
	Backend     BackendConfig
	Upload      UploadConfig
	Session     SessionConfig
	Export      ExportConfig
	MinIO       MinIOConfig
	Log         LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		Backend: BackendConfig{
			BaseURL:    strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8000"), "/"),
			TimeoutSec: getEnvInt("BACKEND_TIMEOUT_SEC", 60),
		},
		Upload: UploadConfig{
			AcceptedExtensions: getEnvList("UPLOAD_EXTENSIONS", []string{".pdf", ".doc", ".docx", ".txt"}),
			CommitPolicy:       getEnv("UPLOAD_COMMIT_POLICY", "batch"),
		},
		Session: SessionConfig{
			TTLMin:     getEnvInt("SESSION_TTL_MIN", 60),
			CleanupMin: getEnvInt("SESSION_CLEANUP_MIN", 10),
		},
		Export: ExportConfig{
			FileName:      getEnv("EXPORT_FILE_NAME", "selected-qa.pdf"),
			Title:         getEnv("EXPORT_TITLE", ""),
			WrapWidth:     getEnvInt("EXPORT_WRAP_WIDTH", 90),
			ArchivePrefix: getEnv("EXPORT_ARCHIVE_PREFIX", "exports"),
			Dir:           getEnv("EXPORT_DIR", ""),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Log: LogConfig{
			FilePath:   getEnv("LOG_FILE", ""),
			Production: getEnvBool("LOG_PRODUCTION", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
