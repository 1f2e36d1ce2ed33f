package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode       uint32 `yaml:"mode" validate:"required|uint"`
	Dir        string `yaml:"dir" validate:"required|unixPath"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
}

type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Prefix       string        `yaml:"prefix"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Backend string        `yaml:"backend" validate:"in:memory,redis"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
	Redis   RedisConfig   `yaml:"redis"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type AggregationConfig struct {
	Timezone        string        `yaml:"timezone"`
	DefaultFilter   string        `yaml:"defaultFilter"`
	Concurrency     int           `yaml:"concurrency"`
	ChunkTimeout    time.Duration `yaml:"chunkTimeout"`
	UpstreamTimeout time.Duration `yaml:"upstreamTimeout"`
}

type PrefetchSeries struct {
	Source string   `yaml:"source" json:"source"`
	Filter string   `yaml:"filter" json:"filter"`
	Fields []string `yaml:"fields" json:"fields,omitempty"`
}

type PrefetchConfig struct {
	Enabled      bool             `yaml:"enabled"`
	Interval     time.Duration    `yaml:"interval"`
	Series       []PrefetchSeries `yaml:"series"`
	SnapshotPath string           `yaml:"snapshotPath"`
}

type PricesConfig struct {
	BaseURL string            `yaml:"baseUrl"`
	Assets  map[string]string `yaml:"assets"`
}

// RateLimit bounds requests per second against one upstream.
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// ChunkPolicy overrides a source's built-in chunking defaults when non-zero.
type ChunkPolicy struct {
	Threshold   time.Duration `yaml:"threshold"`
	Size        time.Duration `yaml:"size"`
	Concurrency int           `yaml:"concurrency"`
	BatchDelay  time.Duration `yaml:"batchDelay"`
}

type MessagingSourceConfig struct {
	Enabled   bool        `yaml:"enabled"`
	BaseURL   string      `yaml:"baseUrl"`
	Token     string      `yaml:"token"`
	RateLimit RateLimit   `yaml:"rateLimit"`
	Chunking  ChunkPolicy `yaml:"chunking"`
}

type SafeSourceConfig struct {
	Enabled   bool        `yaml:"enabled"`
	BaseURL   string      `yaml:"baseUrl"`
	Address   string      `yaml:"address"`
	RateLimit RateLimit   `yaml:"rateLimit"`
	Chunking  ChunkPolicy `yaml:"chunking"`
}

type GitHubSourceConfig struct {
	Enabled   bool        `yaml:"enabled"`
	BaseURL   string      `yaml:"baseUrl"`
	Token     string      `yaml:"token"`
	Owner     string      `yaml:"owner"`
	Repos     []string    `yaml:"repos"`
	RateLimit RateLimit   `yaml:"rateLimit"`
	Chunking  ChunkPolicy `yaml:"chunking"`
}

type DuneSourceConfig struct {
	Enabled   bool        `yaml:"enabled"`
	BaseURL   string      `yaml:"baseUrl"`
	APIKey    string      `yaml:"apiKey"`
	QueryID   int         `yaml:"queryId"`
	RateLimit RateLimit   `yaml:"rateLimit"`
	Chunking  ChunkPolicy `yaml:"chunking"`
}

type SubgraphSourceConfig struct {
	Enabled   bool        `yaml:"enabled"`
	Endpoint  string      `yaml:"endpoint"`
	RateLimit RateLimit   `yaml:"rateLimit"`
	Chunking  ChunkPolicy `yaml:"chunking"`
}

type SnapshotSourceConfig struct {
	Enabled   bool        `yaml:"enabled"`
	Endpoint  string      `yaml:"endpoint"`
	Space     string      `yaml:"space"`
	RateLimit RateLimit   `yaml:"rateLimit"`
	Chunking  ChunkPolicy `yaml:"chunking"`
}

type SourcesConfig struct {
	Messaging  MessagingSourceConfig `yaml:"messaging"`
	Dao        SafeSourceConfig      `yaml:"dao"`
	GitHub     GitHubSourceConfig    `yaml:"github"`
	Racing     DuneSourceConfig      `yaml:"racing"`
	Domains    SubgraphSourceConfig  `yaml:"domains"`
	Governance SnapshotSourceConfig  `yaml:"governance"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server            `yaml:"webServer"`
	Logger      LoggerConfig      `yaml:"logger"`
	Cache       CacheConfig       `yaml:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Prefetch    PrefetchConfig    `yaml:"prefetch"`
	Prices      PricesConfig      `yaml:"prices"`
	Sources     SourcesConfig     `yaml:"sources"`
}
