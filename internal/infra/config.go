package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config: корневая структура конфигурации шлюза.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Gate     GateConfig     `mapstructure:"gate"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig описывает подключение к PostgreSQL.
type DatabaseConfig struct {
	URL         string `mapstructure:"url"`
	MaxConns    int32  `mapstructure:"max_conns"`
	MinConns    int32  `mapstructure:"min_conns"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RedisConfig описывает подключение к Redis (хранилище, nonce и Pub/Sub).
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig содержит пути к RSA ключам и настройки JWT.
type AuthConfig struct {
	PublicKeyPath  string        `mapstructure:"public_key_path"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`

	// Статический администратор для store=memory, когда таблицы users нет
	AdminUsername     string `mapstructure:"admin_username"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"`

	// Ограничение частоты логина (запросов в секунду и burst)
	LoginRate  float64 `mapstructure:"login_rate"`
	LoginBurst int     `mapstructure:"login_burst"`

	PublicKey  []byte
	PrivateKey []byte
}

// GateConfig: настройки самого шлюза.
type GateConfig struct {
	Store      string        `mapstructure:"store"`       // memory, redis, postgres
	NonceStore string        `mapstructure:"nonce_store"` // memory, redis
	Cache      bool          `mapstructure:"cache"`       // L1 кэш с инвалидацией через Redis Pub/Sub
	NonceTTL   time.Duration `mapstructure:"nonce_ttl"`
	Language   string        `mapstructure:"language"`

	// Точка переопределения картинки-заглушки аватара
	DefaultAvatar string `mapstructure:"default_avatar"`
	StylesheetURL string `mapstructure:"stylesheet_url"`

	// Предохранитель перед удаленным хранилищем
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
// Пустой configFile означает поиск config.yaml в . и ./configs.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// 2. Настройка переменных окружения (ENV)
	// Позволяет перекрывать конфиг: GATE_STORE=redis перекроет gate.store
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Установка дефолтных значений
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет, работаем на ENV и дефолтах
	}

	// 5. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 6. Загрузка ключей из Файла ИЛИ из ENV
	cfg.Auth.PublicKey = loadKeyResource(cfg.Auth.PublicKeyPath, "AUTH_PUBLIC_KEY_DATA")
	cfg.Auth.PrivateKey = loadKeyResource(cfg.Auth.PrivateKeyPath, "AUTH_PRIVATE_KEY_DATA")

	return &cfg, nil
}

// Validate проверяет комбинации, которые нельзя выразить дефолтами.
func (c *Config) Validate() error {
	switch c.Gate.Store {
	case "memory", "redis":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("config: gate.store=postgres requires database.url")
		}
	default:
		return fmt.Errorf("config: unknown gate.store %q", c.Gate.Store)
	}

	switch c.Gate.NonceStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown gate.nonce_store %q", c.Gate.NonceStore)
	}
	return nil
}

// UsesRedis сообщает, нужен ли клиент Redis при такой конфигурации.
func (c *Config) UsesRedis() bool {
	return c.Gate.Store == "redis" || c.Gate.NonceStore == "redis" || c.Gate.Cache
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("database.max_conns", 15)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.login_rate", 5.0)
	v.SetDefault("auth.login_burst", 10)
	v.SetDefault("gate.store", "memory")
	v.SetDefault("gate.nonce_store", "memory")
	v.SetDefault("gate.cache", false)
	v.SetDefault("gate.nonce_ttl", 12*time.Hour)
	v.SetDefault("gate.language", "en")
	v.SetDefault("gate.stylesheet_url", "/lib/css/airplane-mode.min.css")
	v.SetDefault("gate.breaker_max_failures", 5)
	v.SetDefault("gate.breaker_timeout", 30*time.Second)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}

// loadKeyResource: сначала PEM-ключ прямо из ENV (для Docker/K8s), иначе файл по пути из конфига
func loadKeyResource(path string, envDataKey string) []byte {
	if data := os.Getenv(envDataKey); data != "" {
		return []byte(data)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data
		}
	}
	return nil
}
