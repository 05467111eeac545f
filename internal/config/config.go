package config

import "time"

// Config is the root application configuration.
type Config struct {
	Wiki     WikiConfig     `yaml:"wiki"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// WikiConfig holds page-source settings: the dump file to scan and the
// directory holding the per-namespace page caches.
type WikiConfig struct {
	DumpFile string `yaml:"dump_file" env:"WIKI_DUMP_FILE"`
	CacheDir string `yaml:"cache_dir" env:"WIKI_CACHE_DIR" env-default:"./cache"`
	BaseURL  string `yaml:"base_url"  env:"WIKI_BASE_URL"  env-default:"https://de.wiktionary.org"`
}

// DatabaseConfig holds PostgreSQL connection settings for the export sink.
// Only cmd/export needs a DSN; the extraction tools run without a database.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
