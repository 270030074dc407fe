package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      App
	Log      Log
	HTTP     HTTP
	Postgres Postgres
	Uploads  Uploads
	Minio    Minio
	RabbitMQ RabbitMQ
	JWT      JWT
}

type App struct {
	Name            string
	Env             string
	Addr            string
	ShutdownTimeout time.Duration
}

type Log struct {
	Level  string
	Format string
}

type HTTP struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequests    int // por IP y por segundo; 0 desactiva el rate limit
	AllowedOrigins []string
	MaxUploadMB    int64
}

// Postgres: DSN vacío => repos in-memory.
type Postgres struct {
	DSN     string
	Migrate bool
}

// Uploads configura el blob store local (default cuando Minio no está configurado).
type Uploads struct {
	Dir       string
	URLPrefix string
}

type Minio struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

func (m Minio) Enabled() bool {
	return strings.TrimSpace(m.Endpoint) != ""
}

type RabbitMQ struct {
	URL      string
	Exchange string
}

func (r RabbitMQ) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

// JWT: Secret vacío => modo dev (identidad declarada por el cliente, sin verifier).
type JWT struct {
	Secret string
}

// Load lee envFile (si existe) y luego construye Config desde el entorno.
// Las variables ya presentes en el entorno tienen prioridad sobre el archivo.
func Load(envFile string) (*Config, error) {
	if strings.TrimSpace(envFile) != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return &Config{
		App: App{
			Name:            GetEnvString("APP_NAME", "health-record-sharing"),
			Env:             GetEnvString("APP_ENV", "development"),
			Addr:            ":" + GetEnvString("PORT", "3000"),
			ShutdownTimeout: GetEnvDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: Log{
			Level:  GetEnvString("LOG_LEVEL", "info"),
			Format: GetEnvString("LOG_FORMAT", "text"),
		},
		HTTP: HTTP{
			ReadTimeout:    GetEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   GetEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			MaxRequests:    GetEnvInt("HTTP_MAX_REQUESTS_PER_SECOND", 50),
			AllowedOrigins: GetEnvList("HTTP_ALLOWED_ORIGINS", []string{"*"}),
			MaxUploadMB:    int64(GetEnvInt("HTTP_MAX_UPLOAD_MB", 25)),
		},
		Postgres: Postgres{
			DSN:     GetEnvString("DB_DSN", ""),
			Migrate: GetEnvBool("DB_MIGRATE", true),
		},
		Uploads: Uploads{
			Dir:       GetEnvString("UPLOADS_DIR", "uploads"),
			URLPrefix: GetEnvString("UPLOADS_URL_PREFIX", "/uploads"),
		},
		Minio: Minio{
			Endpoint:      GetEnvString("MINIO_ENDPOINT", ""),
			AccessKey:     GetEnvString("MINIO_ACCESS_KEY", ""),
			SecretKey:     GetEnvString("MINIO_SECRET_KEY", ""),
			Bucket:        GetEnvString("MINIO_BUCKET", "health-documents"),
			UseSSL:        GetEnvBool("MINIO_USE_SSL", false),
			PublicBaseURL: GetEnvString("MINIO_PUBLIC_BASE_URL", ""),
		},
		RabbitMQ: RabbitMQ{
			URL:      GetEnvString("RABBITMQ_URL", ""),
			Exchange: GetEnvString("RABBITMQ_EXCHANGE", "access_requests"),
		},
		JWT: JWT{
			Secret: GetEnvString("JWT_SECRET", ""),
		},
	}, nil
}

func GetEnvString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	v := GetEnvString(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func GetEnvBool(key string, fallback bool) bool {
	v := GetEnvString(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// GetEnvDuration acepta "10s", "2m" o segundos enteros ("10").
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v := GetEnvString(key, "")
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

// GetEnvList parsea una lista CSV.
func GetEnvList(key string, fallback []string) []string {
	v := GetEnvString(key, "")
	if v == "" {
		return fallback
	}
	out := make([]string, 0)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
