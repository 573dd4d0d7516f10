// Package di registers every chat component with a samber/do injector.
// Each provider reads its own config section from the shared *config.Loader.
package di

import (
	"fmt"

	"github.com/KOMKZ/go-yogan-chat/config"
	"github.com/samber/do/v2"
	"github.com/spf13/pflag"
)

// DefaultEnvPrefix prefixes environment overrides, e.g. CHAT_JWT__SECRET
const DefaultEnvPrefix = "CHAT"

// ConfigOptions locate the configuration sources
type ConfigOptions struct {
	ConfigPath  string            // directory holding config.yaml and {env}.yaml
	Env         string            // empty: APP_ENV, ENV, then dev
	EnvPrefix   string            // empty: DefaultEnvPrefix
	Defaults    map[string]any    // lowest priority source
	Flags       *pflag.FlagSet    // highest priority source
	FlagMapping map[string]string // flag name -> config key
}

// section decodes one top-level key over def; a missing key leaves def untouched
func section[T any](i do.Injector, key string, def T) (T, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return def, err
	}
	cfg := def
	if err := loader.UnmarshalKey(key, &cfg); err != nil {
		return def, fmt.Errorf("decode %s config: %w", key, err)
	}
	return cfg, nil
}
