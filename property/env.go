package property

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvKey maps a dotted key to its environment variable name:
// "db.max-conns" with prefix "APP_" becomes "APP_DB_MAX_CONNS".
func EnvKey(prefix, key string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return prefix + strings.ToUpper(r.Replace(key))
}

type env struct {
	prefix string
}

// Env reads the process environment.
func Env(prefix string) Source {
	return env{prefix: prefix}
}

func (e env) Lookup(key string) (string, bool) {
	return os.LookupEnv(EnvKey(e.prefix, key))
}

type dotenv struct {
	values map[string]string
}

// Dotenv reads .env files without touching the process environment. Keys
// match either verbatim or in their environment form. Later files override
// earlier ones.
func Dotenv(files ...string) (Source, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	values, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("property: read dotenv %v: %w", files, err)
	}
	return dotenv{values: values}, nil
}

func (d dotenv) Lookup(key string) (string, bool) {
	if v, ok := d.values[key]; ok {
		return v, true
	}
	v, ok := d.values[EnvKey("", key)]
	return v, ok
}

// LoadDotenv loads .env files into the process environment, keeping
// variables that are already set. Files are loaded in order; a missing file
// is skipped, any other failure is returned.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("property: load dotenv %s: %w", f, err)
		}
	}
	return nil
}
