package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Port         int           `yaml:"port" env:"PORT" env-default:"5000"`
	Mode         string        `yaml:"mode" env:"GIN_MODE" env-default:"release"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	// пустой список = любой origin
	AllowOrigins []string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGINS" env-separator:","`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"url" env:"DATABASE_URL"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"2"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
	// применить миграции при старте serve
	AutoMigrate bool `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
}

type JWTConfig struct {
	Secret     string        `yaml:"secret" env:"JWT_SECRET"`
	AccessTTL  time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL" env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"JWT_REFRESH_TTL" env-default:"720h"`
	Issuer     string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"taskhub"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser     string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email" env:"EMAIL_FROM"`
	FrontendURL  string `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:3000"`
}

func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != ""
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
}

type RedisConfig struct {
	// пустой Addr = logout без denylist
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type PDFConfig struct {
	// TTF с кириллицей; пустой путь = встроенный Helvetica (только Latin-1)
	FontPath string `yaml:"font_path" env:"PDF_FONT_PATH"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Email    EmailConfig    `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
	Redis    RedisConfig    `yaml:"redis"`
	PDF      PDFConfig      `yaml:"pdf"`
}

// Load reads the YAML file at path (a missing file is not an error), then
// overlays environment variables, including those from an optional .env file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("[config] %s not found, using environment only", path)
		case err != nil:
			return nil, fmt.Errorf("open config: %w", err)
		default:
			defer f.Close()
			if err := decode(f, &cfg); err != nil {
				return nil, err
			}
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.url (DATABASE_URL) is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret (JWT_SECRET) is required"))
	}
	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, errors.New("jwt.access_ttl must be positive"))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode %q must be debug, release or test", c.Server.Mode))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.PDF.FontPath != "" {
		if _, err := os.Stat(c.PDF.FontPath); err != nil {
			errs = append(errs, fmt.Errorf("pdf.font_path: %w", err))
		}
	}
	return errors.Join(errs...)
}
