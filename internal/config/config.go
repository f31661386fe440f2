package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	GRPC     GRPCConfig
	Store    StoreConfig
	Redis    RedisConfig
	MySQL    MySQLConfig
	OrderAPI OrderAPIConfig
	Checkout CheckoutConfig
	Notify   NotifyConfig
	Log      LogConfig
}

type AppConfig struct {
	Name string
	Env  string
}

type HTTPConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCConfig struct {
	Addr string
}

// StoreConfig selects where cart snapshots live: redis, mysql or memory
type StoreConfig struct {
	Driver  string
	CartTTL time.Duration // redis only, 0 = no expiry
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type OrderAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CheckoutConfig struct {
	GuardTTL        time.Duration
	Location        string // IANA zone for confirmation timestamps
	DefaultCurrency string
	Footer          string
}

type NotifyConfig struct {
	Workers        int
	QueueSize      int
	KafkaBrokers   []string
	KafkaTopic     string
	SendGridAPIKey string
	MailFrom       string
	MailFromName   string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// Load reads configuration with the following priority (highest first):
// 1. Environment variables with STOREFRONT_ prefix (e.g. STOREFRONT_REDIS_ADDR)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "storefront")
	v.SetDefault("app.env", "development")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)

	v.SetDefault("grpc.addr", ":50051")

	v.SetDefault("store.driver", "redis")
	v.SetDefault("store.cart_ttl", 30*24*time.Hour)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 100)

	v.SetDefault("mysql.dsn", "root:root@tcp(localhost:3306)/storefront?parseTime=true")
	v.SetDefault("mysql.max_open_conns", 50)
	v.SetDefault("mysql.max_idle_conns", 25)
	v.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("orderapi.base_url", "http://localhost:9000")
	v.SetDefault("orderapi.timeout", 15*time.Second)

	v.SetDefault("checkout.guard_ttl", 30*time.Second)
	v.SetDefault("checkout.location", "Africa/Nairobi")
	v.SetDefault("checkout.default_currency", "KES")
	v.SetDefault("checkout.footer", "")

	v.SetDefault("notify.workers", 4)
	v.SetDefault("notify.queue_size", 1000)
	v.SetDefault("notify.kafka_topic", "storefront.orders")
	v.SetDefault("notify.mail_from_name", "Storefront")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		HTTP: HTTPConfig{
			Addr:         v.GetString("http.addr"),
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
		GRPC: GRPCConfig{
			Addr: v.GetString("grpc.addr"),
		},
		Store: StoreConfig{
			Driver:  strings.ToLower(v.GetString("store.driver")),
			CartTTL: v.GetDuration("store.cart_ttl"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			PoolSize: v.GetInt("redis.pool_size"),
		},
		MySQL: MySQLConfig{
			DSN:             v.GetString("mysql.dsn"),
			MaxOpenConns:    v.GetInt("mysql.max_open_conns"),
			MaxIdleConns:    v.GetInt("mysql.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("mysql.conn_max_lifetime"),
		},
		OrderAPI: OrderAPIConfig{
			BaseURL: v.GetString("orderapi.base_url"),
			Timeout: v.GetDuration("orderapi.timeout"),
		},
		Checkout: CheckoutConfig{
			GuardTTL:        v.GetDuration("checkout.guard_ttl"),
			Location:        v.GetString("checkout.location"),
			DefaultCurrency: v.GetString("checkout.default_currency"),
			Footer:          v.GetString("checkout.footer"),
		},
		Notify: NotifyConfig{
			Workers:        v.GetInt("notify.workers"),
			QueueSize:      v.GetInt("notify.queue_size"),
			KafkaBrokers:   splitList(v.GetString("notify.kafka_brokers")),
			KafkaTopic:     v.GetString("notify.kafka_topic"),
			SendGridAPIKey: v.GetString("notify.sendgrid_api_key"),
			MailFrom:       v.GetString("notify.mail_from"),
			MailFromName:   v.GetString("notify.mail_from_name"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "redis", "mysql", "memory":
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.OrderAPI.BaseURL == "" {
		return fmt.Errorf("config: orderapi.base_url is required")
	}
	if c.Notify.Workers <= 0 {
		return fmt.Errorf("config: notify.workers must be positive")
	}
	if c.Notify.QueueSize <= 0 {
		return fmt.Errorf("config: notify.queue_size must be positive")
	}
	if _, err := time.LoadLocation(c.Checkout.Location); err != nil {
		return fmt.Errorf("config: checkout.location: %w", err)
	}
	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
