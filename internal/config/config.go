package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Redis        Redis        `mapstructure:",squash"`
	WhatsApp     WhatsApp     `mapstructure:",squash"`
	WhatsAppSync WhatsAppSync `mapstructure:",squash"`
	Import       Import       `mapstructure:",squash"`
	RateLimit    RateLimit    `mapstructure:",squash"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Redis struct {
	URL              string        `mapstructure:"redis_url"`
	DeliveryGuardTTL time.Duration `mapstructure:"redis_delivery_guard_ttl"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
	Timezone string `mapstructure:"report_timezone"`
	// Location é resolvido a partir de Timezone em NewConfig
	Location *time.Location `mapstructure:"-"`
}

type WhatsApp struct {
	GatewayURL     string        `mapstructure:"whatsapp_gateway_url"`
	AccessToken    string        `mapstructure:"whatsapp_access_token"`
	PhoneNumberID  string        `mapstructure:"whatsapp_phone_number_id"`
	PageLimit      int           `mapstructure:"whatsapp_page_limit"`
	RequestTimeout time.Duration `mapstructure:"whatsapp_request_timeout"`
	AutoInit       bool          `mapstructure:"whatsapp_auto_init"`
}

type WhatsAppSync struct {
	CronSchedule string `mapstructure:"whatsapp_sync_cron"`
	Enabled      bool   `mapstructure:"whatsapp_sync_enabled"`
}

type Import struct {
	MaxRows       int    `mapstructure:"import_max_rows"`
	DefaultSource string `mapstructure:"import_default_source"`
	MaxUploadMB   int64  `mapstructure:"import_max_upload_mb"`
}

type RateLimit struct {
	RequestsPerSecond float64 `mapstructure:"webhook_rate_limit_rps"`
	Burst             int     `mapstructure:"webhook_rate_limit_burst"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/leads?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("REDIS_URL", "") // vazio desabilita o guard de entrega
	viper.SetDefault("REDIS_DELIVERY_GUARD_TTL", "24h")

	viper.SetDefault("WHATSAPP_GATEWAY_URL", "http://localhost:3001")
	viper.SetDefault("WHATSAPP_ACCESS_TOKEN", "")
	viper.SetDefault("WHATSAPP_PHONE_NUMBER_ID", "")
	viper.SetDefault("WHATSAPP_PAGE_LIMIT", 100)
	viper.SetDefault("WHATSAPP_REQUEST_TIMEOUT", "15s")
	viper.SetDefault("WHATSAPP_AUTO_INIT", true)

	viper.SetDefault("WHATSAPP_SYNC_CRON", "*/15 * * * *") // A cada 15 minutos
	viper.SetDefault("WHATSAPP_SYNC_ENABLED", false)

	viper.SetDefault("IMPORT_MAX_ROWS", 5000)
	viper.SetDefault("IMPORT_DEFAULT_SOURCE", "importacao")
	viper.SetDefault("IMPORT_MAX_UPLOAD_MB", 10)

	viper.SetDefault("WEBHOOK_RATE_LIMIT_RPS", 5)
	viper.SetDefault("WEBHOOK_RATE_LIMIT_BURST", 20)

	viper.SetDefault("REPORT_TIMEZONE", "America/Sao_Paulo")
	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	location, err := time.LoadLocation(config.App.Timezone)
	if err != nil {
		logrus.WithError(err).Warnf("Fuso horário inválido: %s, usando horário local", config.App.Timezone)
		location = time.Local
	}
	config.App.Location = location

	if config.WhatsApp.PageLimit <= 0 {
		config.WhatsApp.PageLimit = 100
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		logrus.Debug("Tentando carregar .env de:", location)
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
