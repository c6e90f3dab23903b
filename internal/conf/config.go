package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Search   SearchConfig
	AI       AIConfig
	Analysis AnalysisConfig
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

// SearchConfig selects and configures the search provider
type SearchConfig struct {
	Provider          string `mapstructure:"provider"` // tavily, searxng
	APIHost           string `mapstructure:"api_host"`
	APIKey            string `mapstructure:"api_key"`
	BasicAuthUsername string `mapstructure:"basic_auth_username"`
	BasicAuthPassword string `mapstructure:"basic_auth_password"`
	Timeout           int    `mapstructure:"timeout"`     // seconds
	MaxRetries        int    `mapstructure:"max_retries"` // default 3
}

// AIConfig configures the OpenAI-compatible completion endpoint
type AIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AnalysisConfig holds every pipeline threshold. Zero values fall back to
// the defaults the engine was tuned with.
type AnalysisConfig struct {
	MaxResultsPerQuery int           `mapstructure:"max_results_per_query"` // 10
	MaxUniqueURLs      int           `mapstructure:"max_unique_urls"`       // 15
	MinPageChars       int           `mapstructure:"min_page_chars"`        // 200
	MinSearchResults   int           `mapstructure:"min_search_results"`    // 5
	MinExtractedPages  int           `mapstructure:"min_extracted_pages"`   // 3
	MinReportChars     int           `mapstructure:"min_report_chars"`      // 30000
	QueryDelay         time.Duration `mapstructure:"query_delay"`           // 1s
	PageDelay          time.Duration `mapstructure:"page_delay"`            // 500ms
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
