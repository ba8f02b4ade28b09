// Package configure wires flags and environment variables into the
// configuration builder server.
package configure

import (
	"context"
	"flag"
	"fmt"

	"github.com/CirroBioApps/cirro-configure-workflow/internal/platform/config"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/services/configure"
)

// Config holds the configure command configuration. Environment values are
// read first and flags override them.
type Config struct {
	HTTPAddr string `env:"CIRRO_CONFIGURE_HTTP_ADDR" envDefault:"localhost:8080"`
	DBPath   string `env:"CIRRO_CONFIGURE_DB_PATH"`
	Strict   bool   `env:"CIRRO_CONFIGURE_STRICT"`
}

// ParseConfig parses environment variables and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite draft database path (empty disables autosave)")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "enable strict cross-reference checks at export time")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Run starts the configuration builder server.
func Run(ctx context.Context, cfg Config) error {
	server, err := configure.NewServer(configure.Config{
		HTTPAddr: cfg.HTTPAddr,
		DBPath:   cfg.DBPath,
		Strict:   cfg.Strict,
	})
	if err != nil {
		return fmt.Errorf("init configure server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve configure: %w", err)
	}
	return nil
}
