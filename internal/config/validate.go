package config

import (
	"fmt"
	"strings"
)

// Validate applies business rules that cleanenv tags cannot express.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q: must be json or text", c.Log.Format)
	}

	if c.Wiki.CacheDir == "" {
		return fmt.Errorf("wiki.cache_dir: must not be empty")
	}
	if c.Wiki.BaseURL == "" {
		return fmt.Errorf("wiki.base_url: must not be empty")
	}

	if c.Database.DSN != "" {
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("database.max_conns %d: must be at least 1", c.Database.MaxConns)
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("database.min_conns %d exceeds max_conns %d", c.Database.MinConns, c.Database.MaxConns)
		}
	}

	return nil
}
