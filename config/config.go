package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Validatable is an optional interface that config structs can implement
// to validate themselves before being swapped in.
type Validatable interface {
	Validate() error
}

// LoadTOML loads a TOML config file into a struct of type T.
// If the file does not exist, it returns a copy of the provided defaults.
// Keys that do not map to a field of T are rejected so typos surface
// instead of silently keeping the default.
func LoadTOML[T any](path string, defaults *T) (*T, error) {
	cfg := new(T)
	if defaults != nil {
		*cfg = *defaults
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parsing config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if v, ok := any(cfg).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("validating config %s: %w", path, err)
		}
	}

	return cfg, nil
}
