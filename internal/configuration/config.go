package configuration

import (
	"os"
)

type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	MinIO       MinIOConfig
	Admin       AdminConfig
	NATSURL     string
	ClamAVURL   string
	ScanUploads bool
	AuditLog    string
}

type ServerConfig struct {
	Port string
}

type StorageConfig struct {
	// Backend selects the blob store: "local" or "minio"
	Backend   string
	DataFile  string
	UploadDir string
}

type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
}

type AdminConfig struct {
	Username string
	Password string
	// Token is the opaque value returned by login and checked by the
	// admin middleware. Static by design — the auth model is a preserved
	// demo contract, not a security mechanism.
	Token string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Storage: StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", "local"),
			DataFile:  getEnv("DATA_FILE", "data/images.json"),
			UploadDir: getEnv("UPLOAD_DIR", "public/uploads"),
		},
		MinIO: MinIOConfig{
			Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
			BucketName: getEnv("MINIO_BUCKET", "gallery"),
			UseSSL:     getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", "password123"),
			Token:    getEnv("ADMIN_TOKEN", "demo-admin-token"),
		},
		NATSURL:     getEnv("NATS_URL", ""),
		ClamAVURL:   getEnv("CLAMAV_URL", "tcp://localhost:3310"),
		ScanUploads: getEnv("SCAN_UPLOADS", "false") == "true",
		AuditLog:    getEnv("AUDIT_LOG", "data/audit.log"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
