package config

import (
	"flag"
	"regexp"
	"slices"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Хранилище
	DatabaseDSN   string `env:"DATABASE_URI"`
	MongoDatabase string `env:"MONGO_DATABASE"`

	// Аутентификация
	AuthSecret  string   `env:"AUTH_SECRET"`
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// HTTP
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	ServerURL   string `env:"-"`

	// Изображения
	UploadDir      string `env:"UPLOAD_FOLDER"`
	S3Bucket       string `env:"S3_BUCKET"`
	AWSRegion      string `env:"AWS_REGION"`
	ImageMaxSizeMB int    `env:"IMAGE_MAX_MB"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres://, mongodb:// или путь к SQLite)")
	flag.StringVar(&cfg.MongoDatabase, "mongo-db", cfg.MongoDatabase, "имя базы MongoDB")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для проверки JWT")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "адрес сервера host:port")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS scheme for ServerURL")
	flag.StringVar(&cfg.UploadDir, "uploads", cfg.UploadDir, "папка для загруженных изображений")
	flag.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "бакет S3; если задан, изображения идут в S3")
	flag.StringVar(&cfg.AWSRegion, "aws-region", cfg.AWSRegion, "регион AWS")
	flag.IntVar(&cfg.ImageMaxSizeMB, "image-max-mb", cfg.ImageMaxSizeMB, "максимальный размер изображения, МБ")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = "donationsdb"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "donations.db"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.AWSRegion == "" {
		cfg.AWSRegion = "us-east-1"
	}
	if cfg.ImageMaxSizeMB <= 0 {
		cfg.ImageMaxSizeMB = 10
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8080"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	admins := make([]string, 0, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins = append(admins, e)
		}
	}
	cfg.AdminEmails = admins

	return cfg
}

// IsAdmin сообщает, входит ли email в список администраторов.
func (c *Config) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	return slices.Contains(c.AdminEmails, email)
}
