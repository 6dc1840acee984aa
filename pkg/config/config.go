package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env
// y opcionalmente archivo). Todas las dependencias la reciben explícita en su
// constructor; nada lee el entorno a mitad de una operación.
type Config struct {
	App     AppConfig
	DB      DBConfig
	HTTP    HTTPConfig
	Emisor  EmisorConfig
	Signing SigningConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// EmisorConfig identifica a la automotora como emisor de los DTE.
type EmisorConfig struct {
	RUT         string
	RazonSocial string
	Giro        string
	Direccion   string
	Comuna      string
	Ciudad      string
}

// SigningConfig configuración del servicio externo de firma y timbre (SimpleAPI).
type SigningConfig struct {
	BaseURL        string        // https://api.simpleapi.cl
	APIKey         string        // header Authorization
	Environment    string        // certificacion | produccion
	CertPath       string        // certificado digital .pfx
	CertPassword   string
	CAFPath43      string        // CAF liquidación factura
	CAFPath52      string        // CAF guía de despacho
	RatePerSecond  int           // cupo local de salida (req/s)
	RatePerMinute  int           // cupo local de salida (req/min)
	MaxAttempts    int           // intentos totales por envío
	RetryBackoff   time.Duration // espera fija entre reintentos
	RequestTimeout time.Duration // timeout por llamada remota
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
}

// ConnectionString devuelve el DSN a usar: DatabaseURL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN construye el connection string de PostgreSQL con URL encoding para
// caracteres especiales en la contraseña.
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

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host   string
	Port   int
	APIKey string // clave estática para las rutas protegidas
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente un
// archivo .env). Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "autodirecto-crm"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "autodirecto"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		HTTP: HTTPConfig{
			Host:   getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:   getInt(v, "HTTP_PORT", 8080),
			APIKey: getString(v, "HTTP_API_KEY", ""),
		},
		Emisor: EmisorConfig{
			RUT:         getString(v, "EMPRESA_RUT", ""),
			RazonSocial: getString(v, "EMPRESA_RAZON_SOCIAL", "AutoDirecto SpA"),
			Giro:        getString(v, "EMPRESA_GIRO", "Compraventa de Vehículos Usados"),
			Direccion:   getString(v, "EMPRESA_DIRECCION", ""),
			Comuna:      getString(v, "EMPRESA_COMUNA", "Santiago"),
			Ciudad:      getString(v, "EMPRESA_CIUDAD", "Santiago"),
		},
		Signing: SigningConfig{
			BaseURL:        getString(v, "SIMPLEAPI_BASE_URL", "https://api.simpleapi.cl"),
			APIKey:         getString(v, "SIMPLEAPI_KEY", ""),
			Environment:    getString(v, "SII_ENVIRONMENT", "certificacion"),
			CertPath:       getString(v, "CERT_PATH", ""),
			CertPassword:   getString(v, "CERT_PASSWORD", ""),
			CAFPath43:      getString(v, "CAF_PATH_43", ""),
			CAFPath52:      getString(v, "CAF_PATH_52", ""),
			RatePerSecond:  getInt(v, "SIMPLEAPI_RATE_PER_SECOND", 3),
			RatePerMinute:  getInt(v, "SIMPLEAPI_RATE_PER_MINUTE", 40),
			MaxAttempts:    getInt(v, "SIMPLEAPI_MAX_ATTEMPTS", 3),
			RetryBackoff:   time.Duration(getInt(v, "SIMPLEAPI_RETRY_BACKOFF_SECONDS", 2)) * time.Second,
			RequestTimeout: time.Duration(getInt(v, "SIMPLEAPI_TIMEOUT_SECONDS", 30)) * time.Second,
		},
	}

	return cfg, nil
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
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
