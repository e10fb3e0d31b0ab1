package config

import (
	"log"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

// Config returns the value of an environment variable, reading .env once on first use.
func Config(key string) string {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})

	return os.Getenv(key)
}

type Settings struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	CorsOrigins   string
	UploadBackend string
	UploadFolder  string
	CloudinaryURL string
	S3Bucket      string
	S3BaseURL     string
}

const (
	UploadBackendCloudinary = "cloudinary"
	UploadBackendS3         = "s3"
	UploadBackendNone       = "none"
)

func Load() Settings {
	s := Settings{
		Port:          withDefault(Config("PORT"), "8080"),
		DatabaseURL:   Config("DATABASE_URL"),
		JWTSecret:     Config("JWT_SECRET"),
		CorsOrigins:   withDefault(Config("CORS_ORIGINS"), "*"),
		UploadBackend: strings.ToLower(withDefault(Config("UPLOAD_BACKEND"), UploadBackendCloudinary)),
		UploadFolder:  withDefault(Config("UPLOAD_FOLDER"), "chat_images"),
		CloudinaryURL: Config("CLOUDINARY_URL"),
		S3Bucket:      Config("S3_BUCKET"),
		S3BaseURL:     strings.TrimRight(Config("S3_PUBLIC_BASE_URL"), "/"),
	}

	// cloudinary without credentials means images are stored as sent
	if s.UploadBackend == UploadBackendCloudinary && s.CloudinaryURL == "" {
		s.UploadBackend = UploadBackendNone
	}

	return s
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
