package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
	} `yaml:"server"`

	Dashboard struct {
		PageSize       int           `yaml:"page_size" default:"10"`
		LocationFocus  string        `yaml:"location_focus" default:"Toronto"`
		TopN           int           `yaml:"top_n" default:"5"`
		DefaultDataset string        `yaml:"default_dataset" default:"indeed-applications.json"`
		SessionMaxAge  time.Duration `yaml:"session_max_age" default:"24h"`
		MaxUploadBytes int64         `yaml:"max_upload_bytes" default:"10485760"`
	} `yaml:"dashboard"`

	Source struct {
		Type    string        `yaml:"type" default:"dir"` // dir, http or redis
		DataDir string        `yaml:"data_dir" default:"data"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"source"`

	Redis struct {
		URL       string        `yaml:"url" default:"redis://localhost:6379"`
		Password  string        `yaml:"password"`
		DB        int           `yaml:"db" default:"0"`
		Timeout   time.Duration `yaml:"timeout" default:"5s"`
		KeyPrefix string        `yaml:"key_prefix" default:"appdash:dataset:"`
	} `yaml:"redis"`

	RateLimit struct {
		RequestsPerSecond float64       `yaml:"requests_per_second" default:"5"`
		Burst             int           `yaml:"burst" default:"10"`
		ExpiresIn         time.Duration `yaml:"expires_in" default:"3m"`
	} `yaml:"rate_limit"`

	Export struct {
		FileName      string `yaml:"file_name" default:"indeed_applications_export.csv"`
		PublishPrefix string `yaml:"publish_prefix" default:"exports/applications"`
	} `yaml:"export"`

	DigitalOcean struct {
		Spaces struct {
			BucketURL       string `yaml:"bucket_url"`
			CDNEndpoint     string `yaml:"cdn_endpoint"`
			AccessKeyID     string `yaml:"access_key_id"`
			AccessKeySecret string `yaml:"access_key_secret"`
			Region          string `yaml:"region" default:"blr1"`
			BucketName      string `yaml:"bucket_name"`
		} `yaml:"spaces"`
	} `yaml:"digitalocean"`

	Logging struct {
		Level    string           `yaml:"level" default:"info"`
		Format   string           `yaml:"format" default:"json"`
		Adapters []LoggingAdapter `yaml:"adapters"`
	} `yaml:"logging"`
}

// LoggingAdapter configures one logging output
type LoggingAdapter struct {
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax.
// Unset variables are left untouched.
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})

	return plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[1:]); val != "" {
			return val
		}
		return match
	})
}

// Default returns a configuration populated with built-in defaults
func Default() *Config {
	config := &Config{}

	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.Dashboard.PageSize = 10
	config.Dashboard.LocationFocus = "Toronto"
	config.Dashboard.TopN = 5
	config.Dashboard.DefaultDataset = "indeed-applications.json"
	config.Dashboard.SessionMaxAge = 24 * time.Hour
	config.Dashboard.MaxUploadBytes = 10 << 20

	config.Source.Type = "dir"
	config.Source.DataDir = "data"
	config.Source.Timeout = 15 * time.Second

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.Timeout = 5 * time.Second
	config.Redis.KeyPrefix = "appdash:dataset:"

	config.RateLimit.RequestsPerSecond = 5
	config.RateLimit.Burst = 10
	config.RateLimit.ExpiresIn = 3 * time.Minute

	config.Export.FileName = "indeed_applications_export.csv"
	config.Export.PublishPrefix = "exports/applications"

	config.DigitalOcean.Spaces.Region = "blr1"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	// Dashboard
	if pageSize := os.Getenv("DASHBOARD_PAGE_SIZE"); pageSize != "" {
		if size, err := strconv.Atoi(pageSize); err == nil && size > 0 {
			c.Dashboard.PageSize = size
		}
	}

	if location := os.Getenv("DASHBOARD_LOCATION_FOCUS"); location != "" {
		c.Dashboard.LocationFocus = location
	}

	if dataset := os.Getenv("DASHBOARD_DEFAULT_DATASET"); dataset != "" {
		c.Dashboard.DefaultDataset = dataset
	}

	if maxAge := os.Getenv("DASHBOARD_SESSION_MAX_AGE"); maxAge != "" {
		if duration, err := time.ParseDuration(maxAge); err == nil {
			c.Dashboard.SessionMaxAge = duration
		}
	}

	// Dataset source
	if sourceType := os.Getenv("SOURCE_TYPE"); sourceType != "" {
		c.Source.Type = sourceType
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Source.DataDir = dataDir
	}

	if baseURL := os.Getenv("SOURCE_BASE_URL"); baseURL != "" {
		c.Source.BaseURL = baseURL
	}

	if timeout := os.Getenv("SOURCE_TIMEOUT"); timeout != "" {
		if duration, err := time.ParseDuration(timeout); err == nil {
			c.Source.Timeout = duration
		}
	}

	// Redis
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}

	if prefix := os.Getenv("REDIS_KEY_PREFIX"); prefix != "" {
		c.Redis.KeyPrefix = prefix
	}

	// Rate limiting
	if rps := os.Getenv("RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil {
			c.RateLimit.RequestsPerSecond = value
		}
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil {
			c.RateLimit.Burst = value
		}
	}

	// DigitalOcean Spaces configuration
	if bucketURL := os.Getenv("BUCKET_URL"); bucketURL != "" {
		c.DigitalOcean.Spaces.BucketURL = bucketURL
	}

	if cdnEndpoint := os.Getenv("BUCKET_CDN_ENDPOINT"); cdnEndpoint != "" {
		c.DigitalOcean.Spaces.CDNEndpoint = cdnEndpoint
	}

	if accessKeyID := os.Getenv("BUCKET_ACCESS_KEY_ID"); accessKeyID != "" {
		c.DigitalOcean.Spaces.AccessKeyID = accessKeyID
	}

	if accessKeySecret := os.Getenv("BUCKET_ACCESS_KEY_SECRET"); accessKeySecret != "" {
		c.DigitalOcean.Spaces.AccessKeySecret = accessKeySecret
	}

	if region := os.Getenv("BUCKET_REGION"); region != "" {
		c.DigitalOcean.Spaces.Region = region
	}

	if bucketName := os.Getenv("BUCKET_NAME"); bucketName != "" {
		c.DigitalOcean.Spaces.BucketName = bucketName
	}

	c.loadLoggingAdapterEnvVars()
}

// loadLoggingAdapterEnvVars applies adapter overrides from the environment
func (c *Config) loadLoggingAdapterEnvVars() {
	filePath := os.Getenv("LOG_FILE_PATH")

	for i := range c.Logging.Adapters {
		adapter := &c.Logging.Adapters[i]
		if adapter.Options == nil {
			adapter.Options = make(map[string]interface{})
		}

		switch {
		case adapter.Type == "file" && filePath != "":
			adapter.Options["file_path"] = filePath
		case adapter.Type == "betterstack" || adapter.Name == "betterstack":
			c.loadBetterstackEnvVars(adapter)
		}
	}
}

func (c *Config) loadBetterstackEnvVars(adapter *LoggingAdapter) {
	if enabled := os.Getenv("BETTERSTACK_ENABLED"); enabled != "" {
		adapter.Enabled = strings.ToLower(enabled) == "true"
	}

	if token := os.Getenv("BETTERSTACK_SOURCE_TOKEN"); token != "" {
		adapter.Options["source_token"] = token
	}

	if endpoint := os.Getenv("BETTERSTACK_ENDPOINT"); endpoint != "" {
		adapter.Options["endpoint"] = endpoint
	}

	if batchSize := os.Getenv("BETTERSTACK_BATCH_SIZE"); batchSize != "" {
		if size, err := strconv.Atoi(batchSize); err == nil {
			adapter.Options["batch_size"] = size
		}
	}

	if flushInterval := os.Getenv("BETTERSTACK_FLUSH_INTERVAL"); flushInterval != "" {
		if _, err := time.ParseDuration(flushInterval); err == nil {
			adapter.Options["flush_interval"] = flushInterval
		}
	}

	if maxRetries := os.Getenv("BETTERSTACK_MAX_RETRIES"); maxRetries != "" {
		if retries, err := strconv.Atoi(maxRetries); err == nil {
			adapter.Options["max_retries"] = retries
		}
	}
}
