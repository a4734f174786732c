package config

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	Log     LogConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Metrics MetricsConfig
	Finance FinanceConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env         string // development, staging, production
	Name        string
	SwaggerFile string // ruta al swagger.json servido en /docs (vacío = deshabilitado)
}

// LogConfig nivel de log (trace, debug, info, warn, error).
type LogConfig struct {
	Level string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool // aplica las migraciones embebidas al iniciar el servidor

	ConnMaxLifetime time.Duration // 0 = default de pgxpool
	ConnMaxIdleTime time.Duration // 0 = default de pgxpool
	ForceIPv4       bool          // resuelve el host a IPv4 antes de conectar (Docker sin IPv6)
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MetricsConfig configuración de Prometheus.
type MetricsConfig struct {
	Enabled bool
	Prefix  string
}

// FinanceConfig con Enabled=false compras y ventas no generan cuentas por pagar/cobrar.
type FinanceConfig struct {
	Enabled bool
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper construye la configuración desde una instancia de Viper ya cargada.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:         getString(v, "APP_ENV", "development"),
			Name:        getString(v, "APP_NAME", "erp-core"),
			SwaggerFile: getString(v, "SWAGGER_FILE", "./docs/swagger.json"),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "erp_core"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
			MinConns:    getInt(v, "DB_MIN_CONNS", 2),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", false),

			ConnMaxLifetime: getDuration(v, "DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getDuration(v, "DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
			ForceIPv4:       getBool(v, "DB_FORCE_IPV4", true),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "erp-core"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Metrics: MetricsConfig{
			Enabled: getBool(v, "METRICS_ENABLED", true),
			Prefix:  getString(v, "METRICS_PREFIX", "erp"),
		},
		Finance: FinanceConfig{
			Enabled: getBool(v, "FINANCE_ENABLED", true),
		},
	}

	if err := cfg.DB.ValidatePool(); err != nil {
		return nil, err
	}
	if cfg.App.Env == "production" && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET es obligatorio en production")
	}
	return cfg, nil
}

// ValidatePool rechaza tamaños de pool que pgxpool no admite (int32, Max >= 1, Min <= Max).
func (c DBConfig) ValidatePool() error {
	switch {
	case c.MaxConns < 1 || c.MaxConns > math.MaxInt32:
		return fmt.Errorf("config: DB_MAX_CONNS (%d) fuera de rango [1, %d]", c.MaxConns, math.MaxInt32)
	case c.MinConns < 0:
		return fmt.Errorf("config: DB_MIN_CONNS (%d) no puede ser negativo", c.MinConns)
	case c.MinConns > c.MaxConns:
		return fmt.Errorf("config: DB_MIN_CONNS (%d) > DB_MAX_CONNS (%d)", c.MinConns, c.MaxConns)
	case c.ConnMaxLifetime < 0 || c.ConnMaxIdleTime < 0:
		return fmt.Errorf("config: DB_CONN_MAX_LIFETIME y DB_CONN_MAX_IDLE_TIME no pueden ser negativos")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		switch raw := v.Get(key).(type) {
		case bool:
			return raw
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return def
			}
			return b
		default:
			return v.GetBool(key)
		}
	}
	return def
}

// getDuration acepta "90s", "1h" o segundos enteros.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(v.GetString(key))
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
