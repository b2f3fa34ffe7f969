package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader provides typed access to settings with default values.
// Settings come from a YAML file with nested keys flattened to dotted
// form; environment variables override file values (key
// "log.max_size_mb" maps to TAZUNA_LOG_MAX_SIZE_MB).
type Loader struct {
	values map[string]string
}

// EnvPrefix is prepended to the uppercased, underscored key when
// checking the environment.
const EnvPrefix = "TAZUNA_"

// Load reads settings from path. A missing file is not an error: every
// key then falls back to environment variables and defaults.
func Load(path string) (*Loader, error) {
	l := &Loader{values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	flatten("", raw, l.values)
	return l, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(full, v, out)
		case nil:
		default:
			out[full] = fmt.Sprintf("%v", v)
		}
	}
}

// get resolves a key: environment first, then the settings file.
func (l *Loader) get(key string) string {
	envKey := EnvPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return l.values[key]
}

// String retrieves a string setting, returning defaultVal if not set.
func (l *Loader) String(key, defaultVal string) string {
	if val := l.get(key); val != "" {
		return val
	}
	return defaultVal
}

// Int retrieves an integer setting, returning defaultVal if not set or
// invalid.
func (l *Loader) Int(key string, defaultVal int) int {
	if val := l.get(key); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			return v
		}
	}
	return defaultVal
}

// Bool retrieves a boolean setting, returning defaultVal if not set.
// Recognizes "true" as true, anything else as false.
func (l *Loader) Bool(key string, defaultVal bool) bool {
	if val := l.get(key); val != "" {
		return val == "true"
	}
	return defaultVal
}

// Duration retrieves a duration setting in Go duration format
// (e.g. "1h30m", "5s"), returning defaultVal if not set or invalid.
func (l *Loader) Duration(key string, defaultVal time.Duration) time.Duration {
	if val := l.get(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
