package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"metricsdash/internal/structures"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.redis.prefix", "mdash")
	v.SetDefault("aggregation.timezone", "UTC")
	v.SetDefault("aggregation.defaultFilter", "7d")
	v.SetDefault("aggregation.concurrency", 5)
	v.SetDefault("aggregation.chunkTimeout", 10*time.Second)
	v.SetDefault("aggregation.upstreamTimeout", 30*time.Second)
	v.SetDefault("prefetch.interval", 10*time.Minute)
	v.SetDefault("prices.baseUrl", "https://coins.llama.fi")
	v.SetDefault("sources.github.baseUrl", "https://api.github.com")
	v.SetDefault("sources.dao.baseUrl", "https://safe-transaction-mainnet.safe.global")
	v.SetDefault("sources.racing.baseUrl", "https://api.dune.com")
	v.SetDefault("sources.governance.endpoint", "https://hub.snapshot.org/graphql")
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	v.BindEnv("logger.level", "MDASH_LOG_LEVEL")
	v.BindEnv("webServer.port", "MDASH_PORT")
	v.BindEnv("cache.enabled", "MDASH_CACHE_ENABLED")
	v.BindEnv("cache.backend", "MDASH_CACHE_BACKEND")
	v.BindEnv("cache.size", "MDASH_CACHE_SIZE")
	v.BindEnv("cache.ttl", "MDASH_CACHE_TTL")
	v.BindEnv("cache.redis.addr", "MDASH_REDIS_ADDR")
	v.BindEnv("cache.redis.password", "MDASH_REDIS_PASSWORD")
	v.BindEnv("aggregation.timezone", "MDASH_TIMEZONE")
	v.BindEnv("sources.github.token", "GITHUB_TOKEN")
	v.BindEnv("sources.racing.apiKey", "DUNE_API_KEY")
	v.BindEnv("sources.messaging.token", "MESSAGING_API_TOKEN")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "MetricsDashboardDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
