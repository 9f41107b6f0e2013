// Package envconf fills configuration structs from the process environment.
//
// Values from an optional dotenv file are loaded first (without overriding
// variables that are already set), then the struct is populated through
// envconfig tags:
//
//	type cfg struct {
//		Port uint16        `envconfig:"API_PORT" default:"8080"`
//		DSN  string        `envconfig:"PG_DSN" required:"true"`
//		TTL  time.Duration `envconfig:"SESSION_TTL" default:"24h"`
//	}
package envconf

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const DefaultEnvFile = ".env"

var ErrNilDestination = errors.New("destination is nil")

// Load reads dotenv files (DefaultEnvFile when none are given) and then
// processes dst. Missing dotenv files are ignored.
func Load(dst any, files ...string) error {
	if dst == nil {
		return ErrNilDestination
	}

	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %q: %w", f, err)
		}
	}

	err := envconfig.Process("", dst)
	if err != nil {
		return fmt.Errorf("process env: %w", err)
	}

	return nil
}
