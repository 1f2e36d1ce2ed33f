package providers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gookit/validate"

	"metricsdash/internal/structures"
)

// maxCacheSizeMB bounds cache.size, which is in megabytes; a byte count
// here would ask freecache for terabytes.
const maxCacheSizeMB = 64 * 1024

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate runs the struct tag rules and the cross-field checks tags cannot express.
func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}

	if c.conf.Aggregation.Timezone != "" {
		if _, err := time.LoadLocation(c.conf.Aggregation.Timezone); err != nil {
			return fmt.Errorf("invalid config: aggregation.timezone: %w", err)
		}
	}
	if c.conf.Cache.Size < 0 || c.conf.Cache.Size > maxCacheSizeMB {
		return fmt.Errorf("invalid config: cache.size is in MB and must be within 0..%d, got %d", maxCacheSizeMB, c.conf.Cache.Size)
	}
	if c.conf.Cache.Enabled && c.conf.Cache.Backend == "redis" && c.conf.Cache.Redis.Addr == "" {
		return errors.New("invalid config: cache.redis.addr is required for the redis backend")
	}
	if c.conf.Prefetch.Enabled && c.conf.Prefetch.Interval <= 0 {
		return errors.New("invalid config: prefetch.interval must be positive")
	}
	return nil
}
