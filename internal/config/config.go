package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/phishsim/gateway/pkg/logger"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every env-sourced value the gateway uses. Only this struct
// must be used to hold configuration values, no direct access to env or any
// other config source should be made elsewhere.
type Config struct {
	AppEnv  string `env:"APP_ENV" default:"dev"`
	AppName string `env:"APP_NAME" default:"phish_gateway"`

	HttpListenAddr string `env:"HTTP_LISTEN_ADDR" default:":3000"`

	// TrackingBaseURL is the externally visible origin used to build the
	// per-recipient tracking links embedded in campaign emails.
	TrackingBaseURL string `env:"TRACKING_BASE_URL" default:"http://localhost:3000"`

	// The read tier uses restricted credentials, the write tier elevated
	// ones. Both are required; startup fails without them.
	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	SMTPHost     string `env:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort     int    `env:"SMTP_PORT" default:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`

	// SendDelay paces sequential dispatches within one campaign send.
	SendDelay time.Duration `env:"SEND_DELAY" default:"100ms"`

	RateLimitPoints  int           `env:"RATE_LIMIT_POINTS" default:"10"`
	RateLimitWindow  time.Duration `env:"RATE_LIMIT_WINDOW" default:"60s"`
	RateLimitBackend string        `env:"RATE_LIMIT_BACKEND" default:"memory"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	AuditStreamName   string `env:"AUDIT_STREAM_NAME" default:"click_events"`
	AuditStreamMaxLen int64  `env:"AUDIT_STREAM_MAX_LEN" default:"100000"`

	PromNamespace       string `env:"PROM_NAMESPACE" default:"phish_gateway"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI" default:"/metrics"`

	LogLevel []string `env:"LOG_LEVEL"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)

	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	if err := c.validate(); err != nil {
		return err
	}

	config = c
	return nil
}

// validate refuses to serve with a half-configured backend.
func (c *Config) validate() error {
	missing := ""
	check := func(name, v string) {
		if v == "" && missing == "" {
			missing = name
		}
	}
	check("POSTGRES_READ_HOST", c.PostgresReadHost)
	check("POSTGRES_READ_PORT", c.PostgresReadPort)
	check("POSTGRES_READ_USER", c.PostgresReadUser)
	check("POSTGRES_READ_DBNAME", c.PostgresReadDatabase)
	check("POSTGRES_WRITE_HOST", c.PostgresWriteHost)
	check("POSTGRES_WRITE_PORT", c.PostgresWritePort)
	check("POSTGRES_WRITE_USER", c.PostgresWriteUser)
	check("POSTGRES_WRITE_DBNAME", c.PostgresWriteDatabase)
	if missing != "" {
		return errors.New("missing required configuration: " + missing)
	}
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
